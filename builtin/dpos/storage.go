// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/builtin/solidity"
	"github.com/vechain/thor-dpos/thor"
)

var (
	slotValidators      = thor.BytesToBytes32([]byte("validators"))
	slotValidatorStakes = thor.BytesToBytes32([]byte("validator-stakes"))
	slotNominations     = thor.BytesToBytes32([]byte("nominations"))

	slotRegistryHead  = thor.BytesToBytes32([]byte("registry-head"))
	slotRegistryTail  = thor.BytesToBytes32([]byte("registry-tail"))
	slotRegistryCount = thor.BytesToBytes32([]byte("registry-count"))
)

// storage is the stake ledger. It is the only owner of the three maps.
type storage[K SessionKey, B thor.Balance] struct {
	validators      *solidity.Mapping[thor.Address, *validatorEntry[K]]
	validatorStakes *solidity.Mapping[thor.Address, B]
	nominations     *solidity.Mapping[thor.Address, *Nomination[B]]
	registry        *registry
}

func newStorage[K SessionKey, B thor.Balance](sctx *solidity.Context) *storage[K, B] {
	return &storage[K, B]{
		validators:      solidity.NewMapping[thor.Address, *validatorEntry[K]](sctx, slotValidators),
		validatorStakes: solidity.NewMapping[thor.Address, B](sctx, slotValidatorStakes),
		nominations:     solidity.NewMapping[thor.Address, *Nomination[B]](sctx, slotNominations),
		registry:        newRegistry(sctx, slotRegistryHead, slotRegistryTail, slotRegistryCount),
	}
}

func (s *storage[K, B]) isValidator(addr thor.Address) (bool, error) {
	ok, err := s.validators.Exists(addr)
	if err != nil {
		return false, errors.Wrap(err, "failed to check validator")
	}
	return ok, nil
}

func (s *storage[K, B]) isNominator(addr thor.Address) (bool, error) {
	ok, err := s.nominations.Exists(addr)
	if err != nil {
		return false, errors.Wrap(err, "failed to check nomination")
	}
	return ok, nil
}

func (s *storage[K, B]) getValidator(addr thor.Address) (K, bool, error) {
	var key K
	ok, err := s.isValidator(addr)
	if err != nil || !ok {
		return key, false, err
	}
	entry, err := s.validators.Get(addr)
	if err != nil {
		return key, false, errors.Wrap(err, "failed to get validator")
	}
	return entry.SessionKey, true, nil
}

// setValidator inserts or overwrites the session key, listing the account on first insert.
func (s *storage[K, B]) setValidator(addr thor.Address, key K) error {
	listed, err := s.isValidator(addr)
	if err != nil {
		return err
	}
	if err := s.validators.Set(addr, &validatorEntry[K]{SessionKey: key}); err != nil {
		return errors.Wrap(err, "failed to set validator")
	}
	if !listed {
		if err := s.registry.Add(addr); err != nil {
			return errors.Wrap(err, "failed to list validator")
		}
	}
	return nil
}

func (s *storage[K, B]) getValidatorStake(addr thor.Address) (B, error) {
	stake, err := s.validatorStakes.Get(addr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get validator stake")
	}
	return stake, nil
}

func (s *storage[K, B]) setValidatorStake(addr thor.Address, stake B) error {
	if err := s.validatorStakes.Set(addr, stake); err != nil {
		return errors.Wrap(err, "failed to set validator stake")
	}
	return nil
}

// getNomination returns nil if addr has never nominated.
func (s *storage[K, B]) getNomination(addr thor.Address) (*Nomination[B], error) {
	ok, err := s.isNominator(addr)
	if err != nil || !ok {
		return nil, err
	}
	nomination, err := s.nominations.Get(addr)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get nomination")
	}
	return nomination, nil
}

func (s *storage[K, B]) setNomination(addr thor.Address, nomination *Nomination[B]) error {
	if err := s.nominations.Set(addr, nomination); err != nil {
		return errors.Wrap(err, "failed to set nomination")
	}
	return nil
}

// iterValidators visits every registered validator in registration order.
func (s *storage[K, B]) iterValidators(callback func(addr thor.Address, key K) error) error {
	return s.registry.Iter(func(addr thor.Address) error {
		entry, err := s.validators.Get(addr)
		if err != nil {
			return errors.Wrap(err, "failed to get validator")
		}
		return callback(addr, entry.SessionKey)
	})
}
