// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/vechain/thor-dpos/builtin/authority"
	"github.com/vechain/thor-dpos/builtin/currency"
	"github.com/vechain/thor-dpos/builtin/dpos"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

// Ledger is the staking ledger as hosted by this runtime.
type Ledger = dpos.DPoS[thor.Bytes32, uint64]

// Contracts groups the built-in contracts bound to one state.
type Contracts struct {
	State     *state.State
	Ledger    *Ledger
	Currency  *currency.Currency[uint64]
	Authority *authority.Authority[thor.Bytes32]
}

// NewContracts binds the built-in contracts to st. Ledger events go to events.
func NewContracts(st *state.State, cfg dpos.Config[uint64], events dpos.EventSink) (*Contracts, error) {
	c := &Contracts{
		State:     st,
		Currency:  currency.New[uint64](thor.CurrencyContract, st),
		Authority: authority.New[thor.Bytes32](thor.AuthorityContract, st, cfg.MaxAuthorities),
	}
	ledger, err := dpos.New[thor.Bytes32, uint64](thor.DPoSContract, st, cfg, c.Currency, c.Authority, events)
	if err != nil {
		return nil, err
	}
	c.Ledger = ledger
	return c, nil
}
