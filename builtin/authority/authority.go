// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package authority

import (
	"encoding/binary"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/builtin/solidity"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

var (
	// ErrCapacityExceeded is returned when a proposed set is longer than the configured capacity.
	ErrCapacityExceeded = errors.New("authority set exceeds capacity")

	logger = log.WithContext("pkg", "authority")

	slotEntries = thor.BytesToBytes32([]byte("entries"))
	slotCount   = thor.BytesToBytes32([]byte("count"))
	slotUpdates = thor.BytesToBytes32([]byte("updates"))
)

type index uint32

func (i index) Bytes() []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(i))
	return b[:]
}

// Authority stores the authority set scheduled for the next session.
// K is the session key type handed to the consensus layer.
type Authority[K any] struct {
	capacity uint32
	entries  *solidity.Mapping[index, K]
	count    *solidity.Uint256
	updates  *solidity.Uint256
}

// New create a new instance.
func New[K any](addr thor.Address, state *state.State, capacity uint32) *Authority[K] {
	ctx := solidity.NewContext(addr, state)
	return &Authority[K]{
		capacity: capacity,
		entries:  solidity.NewMapping[index, K](ctx, slotEntries),
		count:    solidity.NewUint256(ctx, slotCount),
		updates:  solidity.NewUint256(ctx, slotUpdates),
	}
}

// Capacity returns the maximum size of the set.
func (a *Authority[K]) Capacity() uint32 {
	return a.capacity
}

// SetNextAuthorities replaces the scheduled set, keeping the given order.
func (a *Authority[K]) SetNextAuthorities(keys []K) error {
	if uint64(len(keys)) > uint64(a.capacity) {
		return errors.Wrapf(ErrCapacityExceeded, "%d > %d", len(keys), a.capacity)
	}

	prev, err := a.count.Get()
	if err != nil {
		return errors.Wrap(err, "get count")
	}
	for i, key := range keys {
		if err := a.entries.Set(index(i), key); err != nil {
			return errors.Wrap(err, "set entry")
		}
	}
	for i := uint64(len(keys)); i < prev.Uint64(); i++ {
		a.entries.Delete(index(i))
	}
	a.count.Set(uint256.NewInt(uint64(len(keys))))
	if _, err := a.updates.Add(uint256.NewInt(1)); err != nil {
		return errors.Wrap(err, "bump updates")
	}

	logger.Debug("next authorities scheduled", "count", len(keys))
	return nil
}

// Next returns the scheduled set in order.
func (a *Authority[K]) Next() ([]K, error) {
	count, err := a.count.Get()
	if err != nil {
		return nil, errors.Wrap(err, "get count")
	}
	keys := make([]K, 0, count.Uint64())
	for i := uint64(0); i < count.Uint64(); i++ {
		key, err := a.entries.Get(index(i))
		if err != nil {
			return nil, errors.Wrap(err, "get entry")
		}
		keys = append(keys, key)
	}
	return keys, nil
}

// Updates returns how many times the set has been scheduled.
func (a *Authority[K]) Updates() (uint64, error) {
	n, err := a.updates.Get()
	if err != nil {
		return 0, err
	}
	return n.Uint64(), nil
}
