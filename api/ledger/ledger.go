// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package ledger

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vechain/thor-dpos/api/utils"
	"github.com/vechain/thor-dpos/runtime"
	"github.com/vechain/thor-dpos/thor"
)

// Ledger serves read access to the committed stake ledger.
type Ledger struct {
	rt *runtime.Runtime
}

func New(rt *runtime.Runtime) *Ledger {
	return &Ledger{rt}
}

func (l *Ledger) handleGetConfig(w http.ResponseWriter, _ *http.Request) error {
	var cfg *Config
	if err := l.rt.View(func(c *runtime.Contracts) error {
		cfg = convertConfig(c.Ledger.Config())
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, cfg)
}

func (l *Ledger) handleGetValidators(w http.ResponseWriter, _ *http.Request) error {
	validators := make([]*Validator, 0)
	if err := l.rt.View(func(c *runtime.Contracts) error {
		return c.Ledger.Validators(func(addr thor.Address, key thor.Bytes32) error {
			stake, err := c.Ledger.GetValidatorStake(addr)
			if err != nil {
				return err
			}
			validators = append(validators, &Validator{Address: addr, SessionKey: key, Stake: newAmount(stake)})
			return nil
		})
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, validators)
}

func (l *Ledger) handleGetValidator(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	var validator *Validator
	if err := l.rt.View(func(c *runtime.Contracts) error {
		key, ok, err := c.Ledger.GetValidator(addr)
		if err != nil || !ok {
			return err
		}
		stake, err := c.Ledger.GetValidatorStake(addr)
		if err != nil {
			return err
		}
		validator = &Validator{Address: addr, SessionKey: key, Stake: newAmount(stake)}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, validator)
}

func (l *Ledger) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	var stake uint64
	if err := l.rt.View(func(c *runtime.Contracts) error {
		stake, err = c.Ledger.GetValidatorStake(addr)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Stake{Address: addr, Stake: newAmount(stake)})
}

func (l *Ledger) handleGetNomination(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	var nomination *Nomination
	if err := l.rt.View(func(c *runtime.Contracts) error {
		n, err := c.Ledger.GetNomination(addr)
		if err != nil || n == nil {
			return err
		}
		nomination = convertNomination(addr, n)
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, nomination)
}

func (l *Ledger) handleGetBalance(w http.ResponseWriter, req *http.Request) error {
	addr, err := utils.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return err
	}

	var balance uint64
	if err := l.rt.View(func(c *runtime.Contracts) error {
		balance, err = c.Currency.BalanceOf(addr)
		return err
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Balance{Address: addr, Balance: newAmount(balance)})
}

func (l *Ledger) handleGetSupply(w http.ResponseWriter, _ *http.Request) error {
	var supply Supply
	if err := l.rt.View(func(c *runtime.Contracts) error {
		total, err := c.Currency.TotalSupply()
		if err != nil {
			return err
		}
		supply.Total = Amount(total.Dec())
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &supply)
}

func (l *Ledger) handleGetAuthorities(w http.ResponseWriter, _ *http.Request) error {
	var authorities Authorities
	if err := l.rt.View(func(c *runtime.Contracts) error {
		next, err := c.Authority.Next()
		if err != nil {
			return err
		}
		updates, err := c.Authority.Updates()
		if err != nil {
			return err
		}
		authorities = Authorities{Next: append(make([]thor.Bytes32, 0, len(next)), next...), Updates: updates}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &authorities)
}

func (l *Ledger) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/config").
		Methods(http.MethodGet).
		Name("ledger_get_config").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetConfig))
	sub.Path("/validators").
		Methods(http.MethodGet).
		Name("ledger_get_validators").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetValidators))
	sub.Path("/validators/{address}").
		Methods(http.MethodGet).
		Name("ledger_get_validator").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetValidator))
	sub.Path("/stakes/{address}").
		Methods(http.MethodGet).
		Name("ledger_get_stake").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetStake))
	sub.Path("/nominations/{address}").
		Methods(http.MethodGet).
		Name("ledger_get_nomination").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetNomination))
	sub.Path("/balances/{address}").
		Methods(http.MethodGet).
		Name("ledger_get_balance").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetBalance))
	sub.Path("/supply").
		Methods(http.MethodGet).
		Name("ledger_get_supply").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetSupply))
	sub.Path("/authorities").
		Methods(http.MethodGet).
		Name("ledger_get_authorities").
		HandlerFunc(utils.WrapHandlerFunc(l.handleGetAuthorities))
}
