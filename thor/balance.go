// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Balance is the set of unsigned fixed-width integers usable as stake and
// currency amounts. All of them are rlp-encodable.
type Balance interface {
	~uint8 | ~uint16 | ~uint32 | ~uint64
}

// MaxBalance returns the largest value representable by B.
func MaxBalance[B Balance]() B {
	return ^B(0)
}

// SaturatingAdd returns a+b, clamped at the maximum value of B.
func SaturatingAdd[B Balance](a, b B) B {
	sum := a + b
	if sum < a {
		return MaxBalance[B]()
	}
	return sum
}

// SaturatingSub returns a-b, clamped at zero.
func SaturatingSub[B Balance](a, b B) B {
	if b > a {
		return 0
	}
	return a - b
}

// BalanceFromUint64 converts v to B, clamped at the maximum value of B.
func BalanceFromUint64[B Balance](v uint64) B {
	if limit := uint64(MaxBalance[B]()); v > limit {
		return MaxBalance[B]()
	}
	return B(v)
}
