// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/vechain/thor-dpos/lvldb"
	"github.com/vechain/thor-dpos/thor"
)

func TestIsEpochBoundary(t *testing.T) {
	tests := []struct {
		block uint32
		want  bool
	}{
		{0, true},
		{1, true},
		{2, false},
		{32, false},
		{33, true},
		{34, false},
		{64, false},
		{65, true},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEpochBoundary(tt.block, 32), "block %d", tt.block)
	}
}

func TestEpochBoundaryProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.Uint32Range(1, ^uint32(0)).Draw(t, "n")
		epoch := rapid.Uint32Range(1, 1024).Draw(t, "epoch")
		if IsEpochBoundary(n, epoch) != ((n-1)%epoch == 0) {
			t.Fatalf("boundary mismatch at block %d epoch %d", n, epoch)
		}
	})
}

func TestOnBlockStartOffBoundary(t *testing.T) {
	env := newTestEnv(t)
	v := account("validator")
	NewSequence(env).Fund(v, 10_000).RegisterValidator(v, 10_000).Run(t)

	for _, n := range []uint32{2, 3, 31, 32, 34} {
		fired, keys, err := env.dpos.OnBlockStart(n)
		require.NoError(t, err)
		assert.False(t, fired)
		assert.Nil(t, keys)
	}

	updates, err := env.authority.Updates()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), updates)
}

func TestOnBlockStartRanking(t *testing.T) {
	env := newTestEnv(t)
	v1 := account("validator-1")
	v2 := account("validator-2")
	v3 := account("validator-3")
	idle := account("validator-idle")
	a := account("nominator-a")
	b := account("nominator-b")
	c := account("nominator-c")

	NewSequence(env).
		Fund(v1, 10_000).Fund(v2, 10_000).Fund(v3, 10_000).Fund(idle, 10_000).
		Fund(a, 10_000).Fund(b, 30_000).Fund(c, 20_000).
		RegisterValidator(idle, 10_000).
		RegisterValidator(v1, 10_000).
		RegisterValidator(v2, 10_000).
		RegisterValidator(v3, 10_000).
		Nominate(a, v1, 10_000).
		Nominate(b, v2, 30_000).
		Nominate(c, v3, 20_000).
		OnBlockStart(33).
		AssertAuthorities(v2, v3, v1, idle).
		Run(t)
}

func TestOnBlockStartDoesNotMutateLedger(t *testing.T) {
	env := newTestEnv(t)
	v := account("validator")
	a := account("nominator-a")
	NewSequence(env).
		Fund(v, 10_000).Fund(a, 10_000).
		RegisterValidator(v, 10_000).
		Nominate(a, v, 10_000).
		Run(t)

	ledger := func() []any {
		stake, err := env.dpos.GetValidatorStake(v)
		require.NoError(t, err)
		nomination, err := env.dpos.GetNomination(a)
		require.NoError(t, err)
		key, ok, err := env.dpos.GetValidator(v)
		require.NoError(t, err)
		return []any{stake, nomination, key, ok}
	}
	before := ledger()
	fired, _, err := env.dpos.OnBlockStart(1)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Equal(t, before, ledger())
}

func TestOnBlockStartTieBreak(t *testing.T) {
	env := newTestEnv(t)
	low := thor.BytesToAddress([]byte{0x01})
	mid := thor.BytesToAddress([]byte{0x02})
	high := thor.BytesToAddress([]byte{0x03})

	// registration order differs from address order
	NewSequence(env).
		Fund(high, 10_000).Fund(low, 10_000).Fund(mid, 10_000).
		RegisterValidator(high, 10_000).
		RegisterValidator(low, 10_000).
		RegisterValidator(mid, 10_000).
		OnBlockStart(1).
		AssertAuthorities(low, mid, high).
		Run(t)
}

func TestOnBlockStartTruncates(t *testing.T) {
	cfg := DefaultConfig[uint64]()
	cfg.MaxAuthorities = 2
	env := newTestEnvWithConfig(t, cfg)

	v1 := account("validator-1")
	v2 := account("validator-2")
	v3 := account("validator-3")
	a := account("nominator-a")
	b := account("nominator-b")

	NewSequence(env).
		Fund(v1, 10_000).Fund(v2, 10_000).Fund(v3, 10_000).
		Fund(a, 15_000).Fund(b, 25_000).
		RegisterValidator(v1, 10_000).
		RegisterValidator(v2, 10_000).
		RegisterValidator(v3, 10_000).
		Nominate(a, v3, 15_000).
		Nominate(b, v1, 25_000).
		OnBlockStart(0).
		AssertAuthorities(v1, v3).
		Run(t)
}

func TestOnBlockStartEmptyRegistry(t *testing.T) {
	env := newTestEnv(t)
	fired, keys, err := env.dpos.OnBlockStart(1)
	require.NoError(t, err)
	assert.True(t, fired)
	assert.Empty(t, keys)
}

func TestAuthoritySetProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		db, err := lvldb.NewMem()
		require.NoError(t, err)
		defer db.Close()

		cfg := DefaultConfig[uint64]()
		cfg.MaxAuthorities = rapid.Uint32Range(1, 8).Draw(t, "maxAuthorities")
		env, err := newEnv(db, cfg)
		require.NoError(t, err)

		count := rapid.IntRange(0, 20).Draw(t, "validators")
		stakes := make(map[thor.Bytes32]uint64, count)
		for i := 0; i < count; i++ {
			v := thor.BytesToAddress([]byte{'v', byte(i)})
			require.NoError(t, env.currency.Mint(v, 10_000))
			require.NoError(t, env.dpos.RegisterValidator(v, sessionKey(v), 10_000))
			stakes[sessionKey(v)] = 0

			if rapid.Bool().Draw(t, "nominated") {
				n := thor.BytesToAddress([]byte{'n', byte(i)})
				stake := rapid.Uint64Range(10_000, 1_000_000).Draw(t, "stake")
				require.NoError(t, env.currency.Mint(n, stake))
				require.NoError(t, env.dpos.Nominate(n, v, stake))
				stakes[sessionKey(v)] = stake
			}
		}

		fired, keys, err := env.dpos.OnBlockStart(1)
		require.NoError(t, err)
		require.True(t, fired)

		want := count
		if want > int(cfg.MaxAuthorities) {
			want = int(cfg.MaxAuthorities)
		}
		if len(keys) != want {
			t.Fatalf("got %d authorities, want %d", len(keys), want)
		}
		for i := 1; i < len(keys); i++ {
			if stakes[keys[i-1]] < stakes[keys[i]] {
				t.Fatalf("authority %d has less stake than authority %d", i-1, i)
			}
		}

		next, err := env.authority.Next()
		require.NoError(t, err)
		assert.Equal(t, keys, next)
	})
}
