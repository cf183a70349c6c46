// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLRU(t *testing.T) {
	_, err := NewLRU[int, int](0)
	assert.Error(t, err)

	c, err := NewLRU[int, int](2)
	require.NoError(t, err)

	loads := 0
	loader := func(key int) (int, error) {
		loads++
		return key * 10, nil
	}

	v, err := c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	v, err = c.GetOrLoad(1, loader)
	require.NoError(t, err)
	assert.Equal(t, 10, v)
	assert.Equal(t, 1, loads)

	_, _ = c.GetOrLoad(2, loader)
	_, _ = c.GetOrLoad(3, loader)
	assert.Equal(t, 2, c.Len())
	_, ok := c.Get(1)
	assert.False(t, ok, "least recently used entry should be evicted")

	_, err = c.GetOrLoad(4, func(int) (int, error) { return 0, errors.New("boom") })
	assert.Error(t, err)
	_, ok = c.Get(4)
	assert.False(t, ok)
}

func TestStats(t *testing.T) {
	c, err := NewLRU[string, string](4)
	require.NoError(t, err)
	assert.Equal(t, float64(0), c.Stats().HitRate())

	c.Add("a", "1")
	c.Get("a")
	c.Get("a")
	c.Get("a")
	c.Get("b")

	hit, miss := c.Stats().Counts()
	assert.Equal(t, int64(3), hit)
	assert.Equal(t, int64(1), miss)
	assert.Equal(t, 0.75, c.Stats().HitRate())
}
