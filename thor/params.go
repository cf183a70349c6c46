// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package thor

// Default protocol constants, used when genesis does not override them.
const (
	DefaultEpochLength           uint32 = 32
	DefaultMinimumValidatorStake uint64 = 10_000
	DefaultMinimumNominatorStake uint64 = 10_000
	DefaultMaxAuthorities        uint32 = 32

	// MaxDelegationHops bounds the walk from a nominee to its root validator.
	MaxDelegationHops = 16

	BlockInterval uint64 = 6 // seconds between two consecutive solo blocks
)

// Builtin contract addresses. Each owns its own storage namespace in state.
var (
	DPoSContract      = BytesToAddress([]byte("DPoS"))
	CurrencyContract  = BytesToAddress([]byte("Currency"))
	AuthorityContract = BytesToAddress([]byte("Authority"))
)

// DerivePoolAccount derives the account that holds escrowed stake from a
// module identifier, e.g. "pal_dpos".
func DerivePoolAccount(moduleID string) Address {
	h := Keccak256([]byte("modl"), []byte(moduleID))
	return BytesToAddress(h[12:])
}
