// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"github.com/holiman/uint256"

	"github.com/vechain/thor-dpos/builtin/dpos"
	"github.com/vechain/thor-dpos/thor"
)

// Amount renders a balance as a decimal string.
type Amount string

func newAmount(v uint64) Amount {
	return Amount(uint256.NewInt(v).Dec())
}

type Validator struct {
	Address    thor.Address `json:"address"`
	SessionKey thor.Bytes32 `json:"sessionKey"`
	Stake      Amount       `json:"stake"`
}

type Stake struct {
	Address thor.Address `json:"address"`
	Stake   Amount       `json:"stake"`
}

type Nomination struct {
	Nominator thor.Address `json:"nominator"`
	Validator thor.Address `json:"validator"`
	Stake     Amount       `json:"stake"`
}

func convertNomination(nominator thor.Address, n *dpos.Nomination[uint64]) *Nomination {
	return &Nomination{
		Nominator: nominator,
		Validator: n.Validator,
		Stake:     newAmount(n.Stake),
	}
}

type Balance struct {
	Address thor.Address `json:"address"`
	Balance Amount       `json:"balance"`
}

type Supply struct {
	Total Amount `json:"total"`
}

type Authorities struct {
	Next    []thor.Bytes32 `json:"next"`
	Updates uint64         `json:"updates"`
}

type Config struct {
	EpochLength           uint32       `json:"epochLength"`
	MinimumValidatorStake Amount       `json:"minimumValidatorStake"`
	MinimumNominatorStake Amount       `json:"minimumNominatorStake"`
	MaxAuthorities        uint32       `json:"maxAuthorities"`
	PoolAccount           thor.Address `json:"poolAccount"`
}

func convertConfig(cfg dpos.Config[uint64]) *Config {
	return &Config{
		EpochLength:           cfg.EpochLength,
		MinimumValidatorStake: newAmount(cfg.MinimumValidatorStake),
		MinimumNominatorStake: newAmount(cfg.MinimumNominatorStake),
		MaxAuthorities:        cfg.MaxAuthorities,
		PoolAccount:           cfg.PoolAccount,
	}
}
