// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"slices"

	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/thor"
)

type candidate[K SessionKey, B thor.Balance] struct {
	addr  thor.Address
	key   K
	stake B
}

// IsEpochBoundary reports whether the authority set is selected when block n starts.
// Block 0 and block 1 both count as boundaries.
func IsEpochBoundary(n, epochLength uint32) bool {
	return thor.SaturatingSub(n, 1)%epochLength == 0
}

// OnBlockStart selects the next authority set when block n starts on an epoch boundary.
// Validators are ranked by recorded stake, higher first, ties broken by ascending address.
// It returns the selected session keys, or false if n is not a boundary. The ledger is only read.
func (d *DPoS[K, B]) OnBlockStart(n uint32) (bool, []K, error) {
	if !IsEpochBoundary(n, d.cfg.EpochLength) {
		return false, nil, nil
	}

	logger.Debug("selecting authorities", "block", n)

	var candidates []candidate[K, B]
	if err := d.storage.iterValidators(func(addr thor.Address, key K) error {
		stake, err := d.storage.getValidatorStake(addr)
		if err != nil {
			return err
		}
		candidates = append(candidates, candidate[K, B]{addr, key, stake})
		return nil
	}); err != nil {
		return false, nil, errors.Wrap(err, "failed to collect candidates")
	}

	slices.SortFunc(candidates, func(a, b candidate[K, B]) int {
		if a.stake != b.stake {
			if a.stake > b.stake {
				return -1
			}
			return 1
		}
		return a.addr.Compare(b.addr)
	})

	if uint64(len(candidates)) > uint64(d.cfg.MaxAuthorities) {
		candidates = candidates[:d.cfg.MaxAuthorities]
	}
	keys := make([]K, 0, len(candidates))
	for _, c := range candidates {
		keys = append(keys, c.key)
	}

	if err := d.sink.SetNextAuthorities(keys); err != nil {
		return false, nil, errors.Wrap(err, "failed to set next authorities")
	}

	metricEpochSelections().Add(1)
	metricAuthoritySetSize().Set(int64(len(keys)))
	logger.Info("authorities selected", "block", n, "count", len(keys))
	return true, keys, nil
}
