// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSaturatingAdd(t *testing.T) {
	tests := []struct {
		a, b, want uint64
	}{
		{0, 0, 0},
		{1, 2, 3},
		{math.MaxUint64 - 1, 1, math.MaxUint64},
		{math.MaxUint64, 1, math.MaxUint64},
		{math.MaxUint64, math.MaxUint64, math.MaxUint64},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SaturatingAdd(tt.a, tt.b), "%d + %d", tt.a, tt.b)
	}

	assert.Equal(t, uint8(255), SaturatingAdd[uint8](200, 100))
	assert.Equal(t, uint16(300), SaturatingAdd[uint16](200, 100))
}

func TestSaturatingSub(t *testing.T) {
	assert.Equal(t, uint32(0), SaturatingSub[uint32](0, 1))
	assert.Equal(t, uint32(31), SaturatingSub[uint32](32, 1))
	assert.Equal(t, uint64(0), SaturatingSub[uint64](5, 10))
}

func TestMaxBalance(t *testing.T) {
	assert.Equal(t, uint8(math.MaxUint8), MaxBalance[uint8]())
	assert.Equal(t, uint64(math.MaxUint64), MaxBalance[uint64]())
}

func TestBalanceFromUint64(t *testing.T) {
	assert.Equal(t, uint64(10_000), BalanceFromUint64[uint64](10_000))
	assert.Equal(t, uint16(10_000), BalanceFromUint64[uint16](10_000))
	assert.Equal(t, uint8(math.MaxUint8), BalanceFromUint64[uint8](10_000))
	assert.Equal(t, uint32(math.MaxUint32), BalanceFromUint64[uint32](math.MaxUint64))
}
