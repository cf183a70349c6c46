// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/builtin/reverts"
	"github.com/vechain/thor-dpos/builtin/solidity"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

var (
	ErrInsufficientBalance = reverts.New("stake below minimum")
	ErrInvalidNomination   = reverts.New("invalid nomination")
	ErrInvalidRegistration = reverts.New("invalid registration")

	logger = log.WithContext("pkg", "dpos")
)

func SetLogger(l log.Logger) {
	logger = l
}

// DPoS implements the delegated-staking ledger contract.
type DPoS[K SessionKey, B thor.Balance] struct {
	cfg     Config[B]
	storage *storage[K, B]

	escrow Escrow[B]
	sink   AuthoritySink[K]
	events EventSink
}

// New create a new instance bound to the contract storage at addr.
func New[K SessionKey, B thor.Balance](
	addr thor.Address,
	state *state.State,
	cfg Config[B],
	escrow Escrow[B],
	sink AuthoritySink[K],
	events EventSink,
) (*DPoS[K, B], error) {
	sctx := solidity.NewContext(addr, state)

	// debug overrides for testing
	cfg = cfg.withOverrides(sctx)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid dpos config")
	}

	return &DPoS[K, B]{
		cfg:     cfg,
		storage: newStorage[K, B](sctx),
		escrow:  escrow,
		sink:    sink,
		events:  events,
	}, nil
}

// Config returns the constants in effect, overrides applied.
func (d *DPoS[K, B]) Config() Config[B] {
	return d.cfg
}

// PoolAccount returns the account escrowing every stake.
func (d *DPoS[K, B]) PoolAccount() thor.Address {
	return d.cfg.PoolAccount
}

// RegisterValidator escrows stake from caller and records key as caller's session key.
// Registering again overwrites the key and escrows the new stake as well.
func (d *DPoS[K, B]) RegisterValidator(caller thor.Address, key K, stake B) error {
	logger.Debug("register validator", "account", caller, "stake", uint64(stake))

	if stake < d.cfg.MinimumValidatorStake {
		logger.Info("register validator failed", "account", caller, "error", ErrInsufficientBalance)
		return ErrInsufficientBalance
	}

	isNominator, err := d.storage.isNominator(caller)
	if err != nil {
		return err
	}
	if isNominator {
		logger.Info("register validator failed", "account", caller, "error", ErrInvalidRegistration)
		return ErrInvalidRegistration
	}

	if err := d.escrow.Transfer(caller, d.cfg.PoolAccount, stake); err != nil {
		logger.Info("register validator failed", "account", caller, "error", err)
		return err
	}

	if err := d.storage.setValidator(caller, key); err != nil {
		return err
	}

	d.events.Emit(&ValidatorRegistered[K, B]{Account: caller, SessionKey: key, Stake: stake})
	metricRegistrations().Add(1)
	logger.Info("validator registered", "account", caller, "stake", uint64(stake))
	return nil
}

// Nominate escrows stake from caller and backs nominee with it.
// nominee may be a validator or another nominator, in which case the stake follows their nomination.
//
// The resolved validator's stake is set to the cumulative stake along the resolved chain,
// replacing whatever it held before.
func (d *DPoS[K, B]) Nominate(caller, nominee thor.Address, stake B) (err error) {
	logger.Debug("nominate", "nominator", caller, "nominee", nominee, "stake", uint64(stake))
	defer func() {
		if err != nil {
			metricNominations().AddWithLabel(1, map[string]string{"result": "failed"})
			logger.Info("nominate failed", "nominator", caller, "nominee", nominee, "error", err)
		} else {
			metricNominations().AddWithLabel(1, map[string]string{"result": "ok"})
		}
	}()

	if stake < d.cfg.MinimumNominatorStake {
		return ErrInsufficientBalance
	}
	if caller == nominee {
		return ErrInvalidNomination
	}

	nomineeIsValidator, err := d.storage.isValidator(nominee)
	if err != nil {
		return err
	}
	if !nomineeIsValidator {
		nomineeIsNominator, err := d.storage.isNominator(nominee)
		if err != nil {
			return err
		}
		if !nomineeIsNominator {
			return ErrInvalidNomination
		}
	}

	callerIsValidator, err := d.storage.isValidator(caller)
	if err != nil {
		return err
	}
	if callerIsValidator {
		return ErrInvalidNomination
	}

	if err := d.escrow.Transfer(caller, d.cfg.PoolAccount, stake); err != nil {
		return err
	}

	root, cumulative, ok, err := d.resolve(nominee, stake)
	if err != nil {
		return err
	}
	if !ok {
		// the transfer above is rolled back together with the failed call
		return ErrInvalidNomination
	}

	if err := d.storage.setNomination(caller, &Nomination[B]{Validator: root, Stake: stake}); err != nil {
		return err
	}
	if err := d.storage.setValidatorStake(root, cumulative); err != nil {
		return err
	}

	d.events.Emit(&NewNomination[B]{Nominator: caller, Validator: root, Stake: stake})
	logger.Info("nominated", "nominator", caller, "validator", root, "stake", uint64(stake), "total", uint64(cumulative))
	return nil
}

// GetValidator returns the session key of a registered validator.
func (d *DPoS[K, B]) GetValidator(addr thor.Address) (K, bool, error) {
	return d.storage.getValidator(addr)
}

// GetValidatorStake returns the recorded stake of addr, zero if none.
func (d *DPoS[K, B]) GetValidatorStake(addr thor.Address) (B, error) {
	return d.storage.getValidatorStake(addr)
}

// GetNomination returns the nomination made by addr, nil if none.
func (d *DPoS[K, B]) GetNomination(addr thor.Address) (*Nomination[B], error) {
	return d.storage.getNomination(addr)
}

// ValidatorCount returns the number of registered validators.
func (d *DPoS[K, B]) ValidatorCount() (uint64, error) {
	return d.storage.registry.Len()
}

// Validators visits every registered validator in registration order.
func (d *DPoS[K, B]) Validators(callback func(addr thor.Address, key K) error) error {
	return d.storage.iterValidators(callback)
}
