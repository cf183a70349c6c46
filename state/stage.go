// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"io"
	"slices"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/thor-dpos/kv"
	"github.com/vechain/thor-dpos/thor"
)

// Stage abstracts changes not yet written to the underlying store.
type Stage struct {
	db      kv.Store
	changes map[storageKey]rlp.RawValue
}

// Len returns the count of changed slots.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Hash computes a digest of the changed slots only, in key order.
// Each slot is rlp-encoded as a [key, value] pair; a deleted slot has an empty value.
func (s *Stage) Hash() thor.Bytes32 {
	type pair struct {
		Key   []byte
		Value []byte
	}
	pairs := make([]pair, 0, len(s.changes))
	for k, v := range s.changes {
		pairs = append(pairs, pair{k.dbKey(), v})
	}
	slices.SortFunc(pairs, func(a, b pair) int {
		return bytes.Compare(a.Key, b.Key)
	})

	return thor.Blake2bFn(func(w io.Writer) {
		for _, p := range pairs {
			rlp.Encode(w, &p)
		}
	})
}

// Commit writes all changes into the store in one batch.
// Empty values delete the slot.
func (s *Stage) Commit() (thor.Bytes32, error) {
	return s.CommitWith(nil)
}

// CommitWith writes all changes, plus whatever extra puts into the same batch.
func (s *Stage) CommitWith(extra func(kv.Putter) error) (thor.Bytes32, error) {
	batch := s.db.NewBatch()
	for k, v := range s.changes {
		var err error
		if len(v) == 0 {
			err = batch.Delete(k.dbKey())
		} else {
			err = batch.Put(k.dbKey(), v)
		}
		if err != nil {
			return thor.Bytes32{}, &Error{err}
		}
	}
	if extra != nil {
		if err := extra(batch); err != nil {
			return thor.Bytes32{}, &Error{err}
		}
	}
	if err := batch.Write(); err != nil {
		return thor.Bytes32{}, &Error{err}
	}
	return s.Hash(), nil
}
