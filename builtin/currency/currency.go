// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package currency

import (
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/builtin/reverts"
	"github.com/vechain/thor-dpos/builtin/solidity"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

var (
	ErrInsufficientFunds = reverts.New("insufficient funds")

	logger = log.WithContext("pkg", "currency")

	slotBalances    = thor.BytesToBytes32([]byte("balances"))
	slotTotalSupply = thor.BytesToBytes32([]byte("total-supply"))
)

// Currency keeps free balances of accounts and moves funds between them.
type Currency[B thor.Balance] struct {
	balances    *solidity.Mapping[thor.Address, B]
	totalSupply *solidity.Uint256
}

// New create a new instance.
func New[B thor.Balance](addr thor.Address, state *state.State) *Currency[B] {
	ctx := solidity.NewContext(addr, state)
	return &Currency[B]{
		balances:    solidity.NewMapping[thor.Address, B](ctx, slotBalances),
		totalSupply: solidity.NewUint256(ctx, slotTotalSupply),
	}
}

// BalanceOf returns the free balance of addr.
func (c *Currency[B]) BalanceOf(addr thor.Address) (B, error) {
	balance, err := c.balances.Get(addr)
	if err != nil {
		return 0, errors.Wrap(err, "get balance")
	}
	return balance, nil
}

// TotalSupply returns the sum of every amount ever credited by Mint.
func (c *Currency[B]) TotalSupply() (*uint256.Int, error) {
	return c.totalSupply.Get()
}

// Mint credits amount to addr out of nothing. The balance saturates at the maximum,
// and only the part actually credited is added to the total supply.
func (c *Currency[B]) Mint(addr thor.Address, amount B) error {
	balance, err := c.BalanceOf(addr)
	if err != nil {
		return err
	}
	updated := thor.SaturatingAdd(balance, amount)
	if err := c.balances.Set(addr, updated); err != nil {
		return errors.Wrap(err, "set balance")
	}
	minted := updated - balance
	if _, err := c.totalSupply.Add(uint256.NewInt(uint64(minted))); err != nil {
		return errors.Wrap(err, "add total supply")
	}
	logger.Debug("minted", "account", addr, "amount", uint64(minted))
	return nil
}

// Transfer moves amount from one account to another.
// It fails with ErrInsufficientFunds and leaves both balances untouched if from cannot cover amount.
func (c *Currency[B]) Transfer(from, to thor.Address, amount B) error {
	fromBalance, err := c.BalanceOf(from)
	if err != nil {
		return err
	}
	if fromBalance < amount {
		return ErrInsufficientFunds
	}
	if err := c.balances.Set(from, fromBalance-amount); err != nil {
		return errors.Wrap(err, "debit")
	}

	toBalance, err := c.BalanceOf(to)
	if err != nil {
		return err
	}
	if err := c.balances.Set(to, thor.SaturatingAdd(toBalance, amount)); err != nil {
		return errors.Wrap(err, "credit")
	}
	return nil
}
