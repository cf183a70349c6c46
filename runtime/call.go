// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"io"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/thor"
)

// Op selects the ledger command a call invokes.
type Op uint8

const (
	OpRegisterValidator Op = iota + 1
	OpNominate
)

func (op Op) String() string {
	switch op {
	case OpRegisterValidator:
		return "registerValidator"
	case OpNominate:
		return "nominate"
	default:
		return "unknown"
	}
}

// Call is a signed request to run one ledger command on behalf of its signer.
type Call struct {
	body callBody
}

type callBody struct {
	Op         Op
	Nominee    thor.Address
	SessionKey thor.Bytes32
	Stake      uint64
	Nonce      uint64
	Signature  []byte
}

// NewRegisterValidator builds an unsigned validator registration.
func NewRegisterValidator(key thor.Bytes32, stake uint64, nonce uint64) *Call {
	return &Call{body: callBody{Op: OpRegisterValidator, SessionKey: key, Stake: stake, Nonce: nonce}}
}

// NewNominate builds an unsigned nomination.
func NewNominate(nominee thor.Address, stake uint64, nonce uint64) *Call {
	return &Call{body: callBody{Op: OpNominate, Nominee: nominee, Stake: stake, Nonce: nonce}}
}

// Op returns the command.
func (c *Call) Op() Op { return c.body.Op }

// Nominee returns the nominee of a nomination.
func (c *Call) Nominee() thor.Address { return c.body.Nominee }

// SessionKey returns the session key of a registration.
func (c *Call) SessionKey() thor.Bytes32 { return c.body.SessionKey }

// Stake returns the stake to escrow.
func (c *Call) Stake() uint64 { return c.body.Stake }

// Nonce returns the caller chosen nonce that makes otherwise equal calls distinct.
func (c *Call) Nonce() uint64 { return c.body.Nonce }

// Signature returns the signature.
func (c *Call) Signature() []byte {
	return append([]byte(nil), c.body.Signature...)
}

// WithSignature create a new call object with signature set.
func (c *Call) WithSignature(sig []byte) *Call {
	newCall := Call{body: c.body}
	newCall.body.Signature = append([]byte(nil), sig...)
	return &newCall
}

// SigningHash returns hash of the call excluding the signature.
func (c *Call) SigningHash() thor.Bytes32 {
	return thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, []any{
			c.body.Op,
			c.body.Nominee,
			c.body.SessionKey,
			c.body.Stake,
			c.body.Nonce,
		})
	})
}

// ID returns the identifier of the call sent by origin. It ignores the signature bytes,
// so the same signed content from the same origin always has the same id.
func (c *Call) ID(origin thor.Address) thor.Bytes32 {
	return thor.Blake2b(c.SigningHash().Bytes(), origin.Bytes())
}

// Hash returns the hash of the whole call, signature included.
func (c *Call) Hash() thor.Bytes32 {
	return thor.Blake2bFn(func(w io.Writer) {
		rlp.Encode(w, &c.body)
	})
}

// EncodeRLP implements rlp.Encoder.
func (c *Call) EncodeRLP(w io.Writer) error {
	return rlp.Encode(w, &c.body)
}

// DecodeRLP implements rlp.Decoder.
func (c *Call) DecodeRLP(s *rlp.Stream) error {
	var body callBody
	if err := s.Decode(&body); err != nil {
		return err
	}
	*c = Call{body: body}
	return nil
}

// Validate checks the call is well formed before it gets queued.
func (c *Call) Validate() error {
	switch c.body.Op {
	case OpRegisterValidator, OpNominate:
	default:
		return errors.Errorf("unknown op %d", c.body.Op)
	}
	if len(c.body.Signature) != 65 {
		return errors.New("invalid signature length")
	}
	return nil
}
