// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"github.com/vechain/thor-dpos/thor"
)

// resolve walks from target through nominations to the validator that ultimately receives the stake.
// Each nominator on the way adds their own recorded stake to incoming, saturating at the maximum.
// Targets that are neither validator nor nominator, and walks longer than thor.MaxDelegationHops,
// are not resolvable.
func (d *DPoS[K, B]) resolve(target thor.Address, incoming B) (thor.Address, B, bool, error) {
	for hop := 0; hop <= thor.MaxDelegationHops; hop++ {
		isValidator, err := d.storage.isValidator(target)
		if err != nil {
			return thor.Address{}, 0, false, err
		}
		if isValidator {
			return target, incoming, true, nil
		}

		nomination, err := d.storage.getNomination(target)
		if err != nil {
			return thor.Address{}, 0, false, err
		}
		if nomination == nil {
			return thor.Address{}, 0, false, nil
		}
		incoming = thor.SaturatingAdd(incoming, nomination.Stake)
		target = nomination.Validator
	}

	logger.Debug("delegation chain too long", "hops", thor.MaxDelegationHops)
	return thor.Address{}, 0, false, nil
}
