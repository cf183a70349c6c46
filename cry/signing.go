// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package cry

import (
	"math/big"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/cache"
	"github.com/vechain/thor-dpos/thor"
)

var signerCacheSize = 1024

// Signable interface of signable object.
type Signable interface {
	SigningHash() thor.Bytes32
	Signature() []byte

	Hash() thor.Bytes32
}

// Signing to sign a signable object or extract signer.
type Signing struct {
	genesisID thor.Bytes32
	cache     *cache.LRU[thor.Bytes32, thor.Address]
}

// NewSigning create a signing object.
// The 'genesisID' is to prevent cross-chain replay attack.
func NewSigning(genesisID thor.Bytes32) *Signing {
	c, _ := cache.NewLRU[thor.Bytes32, thor.Address](signerCacheSize)
	return &Signing{
		genesisID,
		c,
	}
}

// xor signing hash with genesis id
func (s *Signing) maskHash(signingHash *thor.Bytes32) {
	for i := range signingHash {
		signingHash[i] ^= s.genesisID[i]
	}
}

// Sign sign the target with given private key.
func (s *Signing) Sign(target Signable, privateKey []byte) ([]byte, error) {
	signingHash := target.SigningHash()
	s.maskHash(&signingHash)

	priv, err := crypto.ToECDSA(privateKey)
	if err != nil {
		return nil, errors.Wrap(err, "invalid private key")
	}
	return crypto.Sign(signingHash[:], priv)
}

// Signer extract signer from signed target.
func (s *Signing) Signer(target Signable) (thor.Address, error) {
	return s.cache.GetOrLoad(target.Hash(), func(thor.Bytes32) (thor.Address, error) {
		sig := target.Signature()
		if err := validateSignature(sig); err != nil {
			return thor.Address{}, err
		}
		signingHash := target.SigningHash()
		s.maskHash(&signingHash)

		pub, err := crypto.SigToPub(signingHash[:], sig)
		if err != nil {
			return thor.Address{}, err
		}
		return thor.Address(crypto.PubkeyToAddress(*pub)), nil
	})
}

// validateSignature rejects malformed signatures and the upper range of s values,
// so every origin has exactly one valid signature per signing hash.
func validateSignature(sig []byte) error {
	if len(sig) != crypto.SignatureLength {
		return errors.New("invalid signature length")
	}
	r := new(big.Int).SetBytes(sig[:32])
	s := new(big.Int).SetBytes(sig[32:64])
	if !crypto.ValidateSignatureValues(sig[64], r, s, true) {
		return errors.New("invalid signature values")
	}
	return nil
}
