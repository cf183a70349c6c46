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

// PoolID identifies the module whose derived account escrows all stake.
const PoolID = "pal_dpos"

// EpochLengthName is the name of the storage slot that overrides the epoch length when non-zero.
const EpochLengthName = "dpos-epoch-length"

// IsConfigVariable reports whether name is a storage override read by the contract.
func IsConfigVariable(name string) bool {
	return name == EpochLengthName
}

// Config holds the protocol constants fixed at construction.
type Config[B thor.Balance] struct {
	EpochLength           uint32
	MinimumValidatorStake B
	MinimumNominatorStake B
	MaxAuthorities        uint32
	PoolAccount           thor.Address
}

// DefaultConfig returns the constants used by the reference network.
func DefaultConfig[B thor.Balance]() Config[B] {
	return Config[B]{
		EpochLength:           thor.DefaultEpochLength,
		MinimumValidatorStake: thor.BalanceFromUint64[B](thor.DefaultMinimumValidatorStake),
		MinimumNominatorStake: thor.BalanceFromUint64[B](thor.DefaultMinimumNominatorStake),
		MaxAuthorities:        thor.DefaultMaxAuthorities,
		PoolAccount:           thor.DerivePoolAccount(PoolID),
	}
}

// Validate checks the constants are usable.
func (c Config[B]) Validate() error {
	if c.EpochLength == 0 {
		return errors.New("epoch length must be positive")
	}
	if c.MaxAuthorities == 0 {
		return errors.New("max authorities must be positive")
	}
	if c.PoolAccount.IsZero() {
		return errors.New("pool account must be set")
	}
	return nil
}

// withOverrides applies storage debug overrides on top of c.
func (c Config[B]) withOverrides(ctx *solidity.Context) Config[B] {
	epochLength := solidity.NewConfigVariable(EpochLengthName, c.EpochLength)
	epochLength.Override(ctx)
	c.EpochLength = epochLength.Get()
	return c
}
