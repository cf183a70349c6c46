// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/thor-dpos/builtin/authority"
	"github.com/vechain/thor-dpos/builtin/currency"
	"github.com/vechain/thor-dpos/kv"
	"github.com/vechain/thor-dpos/lvldb"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Emit(ev Event) {
	r.events = append(r.events, ev)
}

type testEnv struct {
	state     *state.State
	currency  *currency.Currency[uint64]
	authority *authority.Authority[thor.Bytes32]
	events    *eventRecorder
	dpos      *DPoS[thor.Bytes32, uint64]
}

func newEnv(db kv.Store, cfg Config[uint64]) (*testEnv, error) {
	st := state.New(db)
	env := &testEnv{
		state:     st,
		currency:  currency.New[uint64](thor.CurrencyContract, st),
		authority: authority.New[thor.Bytes32](thor.AuthorityContract, st, cfg.MaxAuthorities),
		events:    &eventRecorder{},
	}
	d, err := New[thor.Bytes32, uint64](thor.DPoSContract, st, cfg, env.currency, env.authority, env.events)
	if err != nil {
		return nil, err
	}
	env.dpos = d
	return env, nil
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithConfig(t, DefaultConfig[uint64]())
}

func newTestEnvWithConfig(t *testing.T, cfg Config[uint64]) *testEnv {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	env, err := newEnv(db, cfg)
	require.NoError(t, err)
	return env
}

func account(name string) thor.Address {
	return thor.BytesToAddress([]byte(name))
}

func sessionKey(addr thor.Address) thor.Bytes32 {
	return thor.Blake2b(addr.Bytes())
}

type TestFunc func(t *testing.T)

type TestSequence struct {
	env *testEnv

	funcs []TestFunc
	mu    sync.Mutex
}

func NewSequence(env *testEnv) *TestSequence {
	return &TestSequence{funcs: make([]TestFunc, 0), env: env}
}

func (st *TestSequence) AddFunc(f TestFunc) *TestSequence {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.funcs = append(st.funcs, f)
	return st
}

func (st *TestSequence) Fund(addr thor.Address, amount uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.currency.Mint(addr, amount); err != nil {
			t.Fatalf("failed to fund %s: %v", addr, err)
		}
	})
}

func (st *TestSequence) RegisterValidator(addr thor.Address, stake uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.dpos.RegisterValidator(addr, sessionKey(addr), stake); err != nil {
			t.Fatalf("failed to register validator %s: %v", addr, err)
		}
		t.Logf("registered validator %s", addr.String())
	})
}

func (st *TestSequence) Nominate(nominator, nominee thor.Address, stake uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if err := st.env.dpos.Nominate(nominator, nominee, stake); err != nil {
			t.Fatalf("failed to nominate %s by %s: %v", nominee, nominator, err)
		}
		t.Logf("%s nominated %s", nominator.String(), nominee.String())
	})
}

func (st *TestSequence) OnBlockStart(block uint32) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		if _, _, err := st.env.dpos.OnBlockStart(block); err != nil {
			t.Fatalf("failed to start block %d: %v", block, err)
		}
	})
}

func (st *TestSequence) AssertStake(addr thor.Address, expected uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		stake, err := st.env.dpos.GetValidatorStake(addr)
		require.NoError(t, err)
		assert.Equal(t, expected, stake, "stake of %s", addr)
	})
}

func (st *TestSequence) AssertNomination(nominator, validator thor.Address, stake uint64) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		nomination, err := st.env.dpos.GetNomination(nominator)
		require.NoError(t, err)
		require.NotNil(t, nomination, "nomination of %s", nominator)
		assert.Equal(t, Nomination[uint64]{Validator: validator, Stake: stake}, *nomination)
	})
}

func (st *TestSequence) AssertAuthorities(expected ...thor.Address) *TestSequence {
	return st.AddFunc(func(t *testing.T) {
		next, err := st.env.authority.Next()
		require.NoError(t, err)
		keys := make([]thor.Bytes32, 0, len(expected))
		for _, addr := range expected {
			keys = append(keys, sessionKey(addr))
		}
		assert.Equal(t, keys, next)
	})
}

func (st *TestSequence) Run(t *testing.T) {
	st.mu.Lock()
	defer st.mu.Unlock()

	for _, f := range st.funcs {
		f(t)
	}
}
