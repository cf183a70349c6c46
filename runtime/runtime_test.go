// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"crypto/ecdsa"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/thor-dpos/builtin/currency"
	"github.com/vechain/thor-dpos/builtin/dpos"
	"github.com/vechain/thor-dpos/builtin/solidity"
	"github.com/vechain/thor-dpos/lvldb"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

type testAccount struct {
	key  *ecdsa.PrivateKey
	addr thor.Address
}

func newAccount(t *testing.T) testAccount {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	return testAccount{key: key, addr: thor.Address(crypto.PubkeyToAddress(key.PublicKey))}
}

func (a testAccount) sign(t *testing.T, rt *Runtime, call *Call) *Call {
	sig, err := rt.Signing().Sign(call, crypto.FromECDSA(a.key))
	require.NoError(t, err)
	return call.WithSignature(sig)
}

var testGenesisID = thor.Blake2b([]byte("test genesis"))

func testConfig() dpos.Config[uint64] {
	cfg := dpos.DefaultConfig[uint64]()
	cfg.EpochLength = 2
	return cfg
}

// newTestRuntime initialises a store with the given endowments; prepare may seed more state.
func newTestRuntime(t *testing.T, endowments map[thor.Address]uint64, prepare func(*Contracts)) (*Runtime, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	st := state.New(db)
	c, err := NewContracts(st, testConfig(), discardEvents{})
	require.NoError(t, err)
	for addr, amount := range endowments {
		require.NoError(t, c.Currency.Mint(addr, amount))
	}
	if prepare != nil {
		prepare(c)
	}
	_, err = Init(db, testGenesisID, st.Stage(), 0, false)
	require.NoError(t, err)

	rt, err := New(db, testConfig())
	require.NoError(t, err)
	return rt, db
}

func balanceOf(t *testing.T, rt *Runtime, addr thor.Address) uint64 {
	var balance uint64
	require.NoError(t, rt.View(func(c *Contracts) (err error) {
		balance, err = c.Currency.BalanceOf(addr)
		return
	}))
	return balance
}

func TestNewRequiresGenesis(t *testing.T) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	defer db.Close()

	_, err = New(db, testConfig())
	assert.Error(t, err)

	id, err := GenesisID(db)
	require.NoError(t, err)
	assert.True(t, id.IsZero())
}

func TestExecuteBlock(t *testing.T) {
	v := newAccount(t)
	a := newAccount(t)
	rt, _ := newTestRuntime(t, map[thor.Address]uint64{v.addr: 10_000, a.addr: 20_000}, nil)

	block, receipts, err := rt.ExecuteBlock([]*Call{
		v.sign(t, rt, NewRegisterValidator(thor.Bytes32{0xaa}, 10_000, 0)),
		a.sign(t, rt, NewNominate(v.addr, 20_000, 0)),
	}, 1)
	require.NoError(t, err)
	assert.Equal(t, uint32(1), block.Number)
	assert.True(t, block.AuthoritiesUpdated)
	assert.Equal(t, uint32(2), block.Calls)
	assert.Equal(t, uint32(0), block.Reverted)

	require.Len(t, receipts, 2)
	assert.False(t, receipts[0].Reverted)
	assert.Equal(t, v.addr, receipts[0].Origin)
	require.Len(t, receipts[0].Events, 1)
	assert.Equal(t, "ValidatorRegistered", receipts[0].Events[0].Name)
	require.Len(t, receipts[1].Events, 1)
	assert.Equal(t, "NewNomination", receipts[1].Events[0].Name)

	require.NoError(t, rt.View(func(c *Contracts) error {
		stake, err := c.Ledger.GetValidatorStake(v.addr)
		require.NoError(t, err)
		assert.Equal(t, uint64(20_000), stake)

		// selection at block 1 ran before the registration
		next, err := c.Authority.Next()
		require.NoError(t, err)
		assert.Empty(t, next)
		return nil
	}))

	block, _, err = rt.ExecuteBlock(nil, 2)
	require.NoError(t, err)
	assert.False(t, block.AuthoritiesUpdated)

	block, _, err = rt.ExecuteBlock(nil, 3)
	require.NoError(t, err)
	assert.True(t, block.AuthoritiesUpdated)
	require.NoError(t, rt.View(func(c *Contracts) error {
		next, err := c.Authority.Next()
		require.NoError(t, err)
		assert.Equal(t, []thor.Bytes32{{0xaa}}, next)
		return nil
	}))
	assert.Equal(t, uint32(3), rt.BestBlock())
}

func TestRevertedCallKeepsFunds(t *testing.T) {
	v := newAccount(t)
	a := newAccount(t)
	rt, _ := newTestRuntime(t, map[thor.Address]uint64{v.addr: 5_000, a.addr: 20_000}, nil)

	_, receipts, err := rt.ExecuteBlock([]*Call{
		v.sign(t, rt, NewRegisterValidator(thor.Bytes32{0xaa}, 10_000, 0)),
		a.sign(t, rt, NewNominate(v.addr, 10_000, 0)),
		a.sign(t, rt, NewNominate(a.addr, 10_000, 1)),
	}, 1)
	require.NoError(t, err)

	require.Len(t, receipts, 3)
	for _, receipt := range receipts {
		assert.True(t, receipt.Reverted)
		assert.Empty(t, receipt.Events)
	}
	assert.Equal(t, currency.ErrInsufficientFunds.Error(), receipts[0].Reason)
	assert.Equal(t, dpos.ErrInvalidNomination.Error(), receipts[1].Reason)
	assert.Equal(t, dpos.ErrInvalidNomination.Error(), receipts[2].Reason)

	assert.Equal(t, uint64(5_000), balanceOf(t, rt, v.addr))
	assert.Equal(t, uint64(20_000), balanceOf(t, rt, a.addr))
}

func TestFailedResolutionRollsBackTransfer(t *testing.T) {
	x := thor.BytesToAddress([]byte("x"))
	y := thor.BytesToAddress([]byte("y"))
	c := newAccount(t)

	// x and y nominate each other, which no command can produce
	rt, _ := newTestRuntime(t, map[thor.Address]uint64{c.addr: 10_000}, func(contracts *Contracts) {
		nominations := solidity.NewMapping[thor.Address, *dpos.Nomination[uint64]](
			solidity.NewContext(thor.DPoSContract, contracts.State),
			thor.BytesToBytes32([]byte("nominations")),
		)
		require.NoError(t, nominations.Set(x, &dpos.Nomination[uint64]{Validator: y, Stake: 10_000}))
		require.NoError(t, nominations.Set(y, &dpos.Nomination[uint64]{Validator: x, Stake: 10_000}))
	})

	_, receipts, err := rt.ExecuteBlock([]*Call{c.sign(t, rt, NewNominate(x, 10_000, 0))}, 1)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.True(t, receipts[0].Reverted)
	assert.Equal(t, dpos.ErrInvalidNomination.Error(), receipts[0].Reason)

	assert.Equal(t, uint64(10_000), balanceOf(t, rt, c.addr))
	assert.Equal(t, uint64(0), balanceOf(t, rt, rt.Config().PoolAccount))
	require.NoError(t, rt.View(func(contracts *Contracts) error {
		nomination, err := contracts.Ledger.GetNomination(c.addr)
		require.NoError(t, err)
		assert.Nil(t, nomination)
		return nil
	}))
}

func TestUnauthorizedCall(t *testing.T) {
	rt, _ := newTestRuntime(t, nil, nil)

	sig := make([]byte, 65)
	sig[64] = 5
	call := NewRegisterValidator(thor.Bytes32{1}, 10_000, 0).WithSignature(sig)

	_, receipts, err := rt.ExecuteBlock([]*Call{call}, 1)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.True(t, receipts[0].Reverted)
	assert.Equal(t, ErrUnauthorized.Error(), receipts[0].Reason)
	assert.True(t, receipts[0].Origin.IsZero())
}

func TestDuplicateCall(t *testing.T) {
	v := newAccount(t)
	rt, _ := newTestRuntime(t, map[thor.Address]uint64{v.addr: 100_000}, nil)
	call := v.sign(t, rt, NewRegisterValidator(thor.Bytes32{1}, 10_000, 0))

	_, receipts, err := rt.ExecuteBlock([]*Call{call, call}, 1)
	require.NoError(t, err)
	assert.False(t, receipts[0].Reverted)
	assert.True(t, receipts[1].Reverted)
	assert.Equal(t, ErrDuplicateCall.Error(), receipts[1].Reason)

	_, receipts, err = rt.ExecuteBlock([]*Call{call}, 2)
	require.NoError(t, err)
	assert.True(t, receipts[0].Reverted)
	assert.Equal(t, ErrDuplicateCall.Error(), receipts[0].Reason)

	assert.Equal(t, uint64(90_000), balanceOf(t, rt, v.addr))

	// the stored receipt is still the one of the first execution
	receipt, err := rt.GetReceipt(call.ID(v.addr))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint32(1), receipt.Block)
	assert.False(t, receipt.Reverted)
	assert.Len(t, receipt.Events, 1)
}

// malleate returns the other valid ECDSA encoding (r, N-s, v^1) of sig.
func malleate(sig []byte) []byte {
	n := crypto.S256().Params().N
	s := new(big.Int).Sub(n, new(big.Int).SetBytes(sig[32:64]))
	out := append([]byte(nil), sig...)
	s.FillBytes(out[32:64])
	out[64] ^= 1
	return out
}

func TestMalleatedSignatureReplay(t *testing.T) {
	v := newAccount(t)
	rt, _ := newTestRuntime(t, map[thor.Address]uint64{v.addr: 100_000}, nil)
	call := v.sign(t, rt, NewRegisterValidator(thor.Bytes32{1}, 10_000, 0))
	replay := call.WithSignature(malleate(call.Signature()))
	assert.NotEqual(t, call.Hash(), replay.Hash())

	_, receipts, err := rt.ExecuteBlock([]*Call{call}, 1)
	require.NoError(t, err)
	require.False(t, receipts[0].Reverted)

	_, receipts, err = rt.ExecuteBlock([]*Call{replay}, 2)
	require.NoError(t, err)
	require.Len(t, receipts, 1)
	assert.True(t, receipts[0].Reverted)
	assert.Equal(t, ErrUnauthorized.Error(), receipts[0].Reason)

	assert.Equal(t, uint64(90_000), balanceOf(t, rt, v.addr))
	receipt, err := rt.GetReceipt(call.ID(v.addr))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.False(t, receipt.Reverted)
}

func TestCallID(t *testing.T) {
	a := newAccount(t)
	b := newAccount(t)
	rt, _ := newTestRuntime(t, nil, nil)

	call := a.sign(t, rt, NewNominate(thor.Address{1}, 10_000, 7))
	other := call.WithSignature(malleate(call.Signature()))
	assert.Equal(t, call.ID(a.addr), other.ID(a.addr))
	assert.NotEqual(t, call.ID(a.addr), call.ID(b.addr))
	assert.NotEqual(t, call.ID(a.addr), NewNominate(thor.Address{1}, 10_000, 8).ID(a.addr))
}

func TestPersistence(t *testing.T) {
	v := newAccount(t)
	rt, db := newTestRuntime(t, map[thor.Address]uint64{v.addr: 10_000}, nil)
	call := v.sign(t, rt, NewRegisterValidator(thor.Bytes32{1}, 10_000, 0))

	_, _, err := rt.ExecuteBlock([]*Call{call}, 42)
	require.NoError(t, err)

	reopened, err := New(db, testConfig())
	require.NoError(t, err)
	assert.Equal(t, uint32(1), reopened.BestBlock())

	block, err := reopened.GetBlock(1)
	require.NoError(t, err)
	require.NotNil(t, block)
	assert.Equal(t, uint64(42), block.Timestamp)

	genesis, err := reopened.GetBlock(0)
	require.NoError(t, err)
	require.NotNil(t, genesis)

	missing, err := reopened.GetBlock(2)
	require.NoError(t, err)
	assert.Nil(t, missing)

	receipt, err := reopened.GetReceipt(call.ID(v.addr))
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, v.addr, receipt.Origin)
	assert.False(t, receipt.Reverted)

	receipt, err = reopened.GetReceipt(thor.Bytes32{})
	require.NoError(t, err)
	assert.Nil(t, receipt)

	id, err := GenesisID(db)
	require.NoError(t, err)
	assert.Equal(t, testGenesisID, id)
}

func TestCallHashing(t *testing.T) {
	a := newAccount(t)
	rt, _ := newTestRuntime(t, nil, nil)

	unsigned := NewNominate(thor.Address{1}, 10_000, 7)
	signed := a.sign(t, rt, unsigned)
	assert.Equal(t, unsigned.SigningHash(), signed.SigningHash())
	assert.NotEqual(t, unsigned.Hash(), signed.Hash())
	assert.NotEqual(t, unsigned.SigningHash(), NewNominate(thor.Address{1}, 10_000, 8).SigningHash())

	data, err := rlp.EncodeToBytes(signed)
	require.NoError(t, err)
	var decoded Call
	require.NoError(t, rlp.DecodeBytes(data, &decoded))
	assert.Equal(t, signed.Hash(), decoded.Hash())
	assert.Equal(t, OpNominate, decoded.Op())
	assert.Equal(t, uint64(7), decoded.Nonce())

	origin, err := rt.Signing().Signer(&decoded)
	require.NoError(t, err)
	assert.Equal(t, a.addr, origin)
}
