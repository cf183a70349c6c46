// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"github.com/vechain/thor-dpos/thor"
)

// SessionKey is the consensus key a validator publishes for block production.
type SessionKey interface {
	comparable
	Bytes() []byte
}

// Nomination records whom a nominator backs and with how much of their own stake.
// Validator is always the resolved root validator, never an intermediate nominator.
type Nomination[B thor.Balance] struct {
	Validator thor.Address
	Stake     B
}

type validatorEntry[K SessionKey] struct {
	SessionKey K
}

// Event is a notification emitted by a successful command.
type Event interface {
	EventName() string
}

// ValidatorRegistered is emitted when an account registers (or re-registers) as a validator.
type ValidatorRegistered[K SessionKey, B thor.Balance] struct {
	Account    thor.Address `json:"account"`
	SessionKey K            `json:"sessionKey"`
	Stake      B            `json:"stake"`
}

func (ValidatorRegistered[K, B]) EventName() string { return "ValidatorRegistered" }

// NewNomination is emitted when a nomination is stored. Validator is the resolved root.
type NewNomination[B thor.Balance] struct {
	Nominator thor.Address `json:"nominator"`
	Validator thor.Address `json:"validator"`
	Stake     B            `json:"stake"`
}

func (NewNomination[B]) EventName() string { return "NewNomination" }

// EventSink receives notifications of successful commands.
type EventSink interface {
	Emit(Event)
}

// Escrow moves stake out of the caller's free balance.
type Escrow[B thor.Balance] interface {
	Transfer(from, to thor.Address, amount B) error
}

// AuthoritySink accepts the next authority set, most staked first.
type AuthoritySink[K SessionKey] interface {
	SetNextAuthorities(keys []K) error
}
