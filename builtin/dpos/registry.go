// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/builtin/solidity"
	"github.com/vechain/thor-dpos/thor"
)

// registry keeps validator accounts in the order they first registered.
// Validators are never removed, so only append and traversal are needed.
type registry struct {
	head  *solidity.Address
	tail  *solidity.Address
	count *solidity.Uint256
	next  *solidity.Mapping[thor.Address, thor.Address]
}

func newRegistry(sctx *solidity.Context, headPos, tailPos, countPos thor.Bytes32) *registry {
	return &registry{
		head:  solidity.NewAddress(sctx, headPos),
		tail:  solidity.NewAddress(sctx, tailPos),
		count: solidity.NewUint256(sctx, countPos),
		next:  solidity.NewMapping[thor.Address, thor.Address](sctx, headPos),
	}
}

// Add appends an address to the end of the list. The caller ensures it is not listed yet.
func (r *registry) Add(address thor.Address) error {
	oldTail, err := r.tail.Get()
	if err != nil {
		return err
	}

	if oldTail.IsZero() {
		// the list is currently empty, set this entry to head & tail
		r.head.Set(&address)
	} else if err := r.next.Set(oldTail, address); err != nil {
		return err
	}
	r.tail.Set(&address)

	if ok, err := r.count.Add(uint256.NewInt(1)); err != nil {
		return err
	} else if !ok {
		return errors.New("registry count overflow")
	}
	return nil
}

// Len returns the number of listed addresses.
func (r *registry) Len() (uint64, error) {
	n, err := r.count.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}

// Iter traverses the list in insertion order, calling callback for each address until completion or error.
func (r *registry) Iter(callback func(thor.Address) error) error {
	ptr, err := r.head.Get()
	if err != nil {
		return err
	}

	for !ptr.IsZero() {
		if err := callback(ptr); err != nil {
			return err
		}
		if ptr, err = r.next.Get(ptr); err != nil {
			return err
		}
	}
	return nil
}
