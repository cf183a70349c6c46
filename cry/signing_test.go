// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/thor-dpos/thor"
)

type signable struct {
	payload []byte
	sig     []byte
}

func (s *signable) SigningHash() thor.Bytes32 { return thor.Blake2b(s.payload) }
func (s *signable) Signature() []byte         { return s.sig }
func (s *signable) Hash() thor.Bytes32        { return thor.Blake2b(s.payload, s.sig) }

func TestSigning(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want := thor.Address(crypto.PubkeyToAddress(key.PublicKey))

	signing := NewSigning(thor.Blake2b([]byte("genesis")))
	target := &signable{payload: []byte("payload")}
	target.sig, err = signing.Sign(target, crypto.FromECDSA(key))
	require.NoError(t, err)

	signer, err := signing.Signer(target)
	require.NoError(t, err)
	assert.Equal(t, want, signer)

	// cached path
	signer, err = signing.Signer(target)
	require.NoError(t, err)
	assert.Equal(t, want, signer)

	// another chain recovers a different account
	other := NewSigning(thor.Blake2b([]byte("other genesis")))
	signer, err = other.Signer(target)
	require.NoError(t, err)
	assert.NotEqual(t, want, signer)
}

func TestSigningErrors(t *testing.T) {
	signing := NewSigning(thor.Bytes32{})

	_, err := signing.Sign(&signable{payload: []byte("x")}, []byte{1, 2, 3})
	assert.Error(t, err)

	_, err = signing.Signer(&signable{payload: []byte("x"), sig: []byte{1, 2, 3}})
	assert.Error(t, err)
}

func TestSignerRejectsHighS(t *testing.T) {
	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	signing := NewSigning(thor.Blake2b([]byte("genesis")))
	target := &signable{payload: []byte("payload")}
	target.sig, err = signing.Sign(target, crypto.FromECDSA(key))
	require.NoError(t, err)

	// (r, N-s, v^1) recovers the same key but is not canonical
	n := crypto.S256().Params().N
	s := new(big.Int).Sub(n, new(big.Int).SetBytes(target.sig[32:64]))
	flipped := append([]byte(nil), target.sig...)
	s.FillBytes(flipped[32:64])
	flipped[64] ^= 1

	_, err = signing.Signer(&signable{payload: target.payload, sig: flipped})
	assert.Error(t, err)

	flipped = append([]byte(nil), target.sig...)
	flipped[64] = 27
	_, err = signing.Signer(&signable{payload: target.payload, sig: flipped})
	assert.Error(t, err)
}
