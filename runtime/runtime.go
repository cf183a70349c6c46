// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/builtin/dpos"
	"github.com/vechain/thor-dpos/builtin/reverts"
	"github.com/vechain/thor-dpos/cry"
	"github.com/vechain/thor-dpos/kv"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/state"
	"github.com/vechain/thor-dpos/thor"
)

var (
	ErrUnauthorized  = reverts.New("unauthorized")
	ErrDuplicateCall = reverts.New("call already executed")

	logger = log.WithContext("pkg", "runtime")
)

const (
	blockBucket   = kv.Bucket("b")
	receiptBucket = kv.Bucket("r")
	metaBucket    = kv.Bucket("m")
)

var (
	bestBlockKey = []byte("best")
	genesisKey   = []byte("genesis")
)

// Block summarises one executed block. ChangesHash digests the storage slots the block changed.
type Block struct {
	Number             uint32
	ChangesHash        thor.Bytes32
	Timestamp          uint64
	Calls              uint32
	Reverted           uint32
	AuthoritiesUpdated bool
}

// Runtime hosts the ledger: it runs the per-block hook, then every call of the block,
// each atomically, and commits the result to the store.
type Runtime struct {
	mu      sync.RWMutex
	db      kv.Store
	cfg     dpos.Config[uint64]
	signing *cry.Signing
	best    uint32
}

// New create a runtime on top of a store initialised by genesis.
func New(db kv.Store, cfg dpos.Config[uint64]) (*Runtime, error) {
	genesisID, err := metaBucket.Get(db, genesisKey)
	if err != nil {
		if db.IsNotFound(err) {
			return nil, errors.New("genesis not initialised")
		}
		return nil, errors.Wrap(err, "read genesis id")
	}
	best, err := loadBestBlock(db)
	if err != nil {
		return nil, err
	}
	return &Runtime{
		db:      db,
		cfg:     cfg,
		signing: cry.NewSigning(thor.BytesToBytes32(genesisID)),
		best:    best,
	}, nil
}

// Init records the genesis block. It is called once when the store is created.
func Init(db kv.Store, genesisID thor.Bytes32, stage *state.Stage, timestamp uint64, authoritiesUpdated bool) (*Block, error) {
	block := &Block{Timestamp: timestamp, AuthoritiesUpdated: authoritiesUpdated}
	block.ChangesHash = stage.Hash()
	if _, err := stage.CommitWith(func(p kv.Putter) error {
		if err := metaBucket.Put(p, genesisKey, genesisID.Bytes()); err != nil {
			return err
		}
		return saveBlock(p, block)
	}); err != nil {
		return nil, errors.Wrap(err, "commit genesis")
	}
	return block, nil
}

// GenesisID returns the id stored by Init, zero if the store is not initialised.
func GenesisID(db kv.Getter) (thor.Bytes32, error) {
	data, err := metaBucket.Get(db, genesisKey)
	if err != nil {
		if db.IsNotFound(err) {
			return thor.Bytes32{}, nil
		}
		return thor.Bytes32{}, err
	}
	return thor.BytesToBytes32(data), nil
}

// Signing returns the signer recovery bound to this chain.
func (r *Runtime) Signing() *cry.Signing {
	return r.signing
}

// Config returns the ledger constants.
func (r *Runtime) Config() dpos.Config[uint64] {
	return r.cfg
}

// BestBlock returns the number of the last committed block.
func (r *Runtime) BestBlock() uint32 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.best
}

// View runs fn against the committed state. Nothing fn writes is kept.
func (r *Runtime) View(fn func(c *Contracts) error) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, err := NewContracts(state.New(r.db), r.cfg, discardEvents{})
	if err != nil {
		return err
	}
	return fn(c)
}

// ExecuteBlock runs the next block with the given calls and commits it.
// Failed calls are reverted and reported in their receipts. Any other failure aborts the block
// without committing anything.
func (r *Runtime) ExecuteBlock(calls []*Call, timestamp uint64) (*Block, []*Receipt, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	startTime := time.Now()
	number := r.best + 1
	st := state.New(r.db)
	journal := &eventJournal{}
	contracts, err := NewContracts(st, r.cfg, journal)
	if err != nil {
		return nil, nil, err
	}

	updated, _, err := contracts.Ledger.OnBlockStart(number)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "block %d start", number)
	}

	block := &Block{
		Number:             number,
		Timestamp:          timestamp,
		Calls:              uint32(len(calls)),
		AuthoritiesUpdated: updated,
	}
	seen := make(map[thor.Bytes32]bool, len(calls))
	receipts := make([]*Receipt, 0, len(calls))
	stored := make([]*Receipt, 0, len(calls))
	for _, call := range calls {
		receipt, duplicate, err := r.executeCall(contracts, journal, call, number, seen)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "block %d call %s", number, call.Hash())
		}
		if receipt.Reverted {
			block.Reverted++
		}
		receipts = append(receipts, receipt)
		// the first receipt of a call is the one kept
		if !duplicate {
			stored = append(stored, receipt)
		}
	}

	stage := st.Stage()
	block.ChangesHash = stage.Hash()
	if _, err := stage.CommitWith(func(p kv.Putter) error {
		for _, receipt := range stored {
			data, err := rlp.EncodeToBytes(receipt)
			if err != nil {
				return err
			}
			if err := receiptBucket.Put(p, receipt.CallID.Bytes(), data); err != nil {
				return err
			}
		}
		return saveBlock(p, block)
	}); err != nil {
		return nil, nil, errors.Wrapf(err, "commit block %d", number)
	}
	r.best = number

	metricBlockDuration().Observe(time.Since(startTime).Milliseconds())
	metricBestBlock().Set(int64(number))
	logger.Debug("block executed", "number", number, "calls", len(calls), "reverted", block.Reverted, "authoritiesUpdated", updated)
	return block, receipts, nil
}

// executeCall runs call inside a checkpoint. Calls are identified by signing hash and origin,
// so a call already executed, in this block or an earlier one, is reported as a duplicate.
func (r *Runtime) executeCall(c *Contracts, journal *eventJournal, call *Call, number uint32, seen map[thor.Bytes32]bool) (*Receipt, bool, error) {
	receipt := &Receipt{CallID: call.Hash(), Block: number}

	revert := func(err error) *Receipt {
		receipt.Reverted = true
		receipt.Reason = err.Error()
		metricCalls().AddWithLabel(1, map[string]string{"op": call.Op().String(), "result": "reverted"})
		logger.Debug("call reverted", "id", receipt.CallID, "op", call.Op(), "reason", err)
		return receipt
	}

	origin, err := r.signing.Signer(call)
	if err != nil {
		return revert(ErrUnauthorized), false, nil
	}
	id := call.ID(origin)
	receipt.CallID = id
	receipt.Origin = origin

	if seen[id] {
		return revert(ErrDuplicateCall), true, nil
	}
	has, err := r.db.Has(receiptBucket.Key(id.Bytes()))
	if err != nil {
		return nil, false, err
	}
	if has {
		return revert(ErrDuplicateCall), true, nil
	}
	seen[id] = true

	checkpoint := c.State.NewCheckpoint()
	mark := journal.Len()

	switch call.Op() {
	case OpRegisterValidator:
		err = c.Ledger.RegisterValidator(origin, call.SessionKey(), call.Stake())
	case OpNominate:
		err = c.Ledger.Nominate(origin, call.Nominee(), call.Stake())
	default:
		err = reverts.New("unknown op")
	}
	if err != nil {
		c.State.RevertTo(checkpoint)
		journal.Truncate(mark)
		if !reverts.IsRevertErr(err) {
			return nil, false, err
		}
		return revert(err), false, nil
	}

	if receipt.Events, err = journal.Since(mark); err != nil {
		return nil, false, errors.Wrap(err, "encode events")
	}
	metricCalls().AddWithLabel(1, map[string]string{"op": call.Op().String(), "result": "ok"})
	return receipt, false, nil
}

// GetReceipt returns the receipt of an executed call by its id, nil if unknown.
func (r *Runtime) GetReceipt(id thor.Bytes32) (*Receipt, error) {
	data, err := receiptBucket.Get(r.db, id.Bytes())
	if err != nil {
		if r.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var receipt Receipt
	if err := rlp.DecodeBytes(data, &receipt); err != nil {
		return nil, errors.Wrap(err, "decode receipt")
	}
	return &receipt, nil
}

// GetBlock returns the summary of block n, nil if not executed yet.
func (r *Runtime) GetBlock(n uint32) (*Block, error) {
	data, err := blockBucket.Get(r.db, blockKey(n))
	if err != nil {
		if r.db.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	var block Block
	if err := rlp.DecodeBytes(data, &block); err != nil {
		return nil, errors.Wrap(err, "decode block")
	}
	return &block, nil
}

func blockKey(n uint32) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

func saveBlock(p kv.Putter, block *Block) error {
	data, err := rlp.EncodeToBytes(block)
	if err != nil {
		return err
	}
	if err := blockBucket.Put(p, blockKey(block.Number), data); err != nil {
		return err
	}
	best, err := rlp.EncodeToBytes(block.Number)
	if err != nil {
		return err
	}
	return metaBucket.Put(p, bestBlockKey, best)
}

func loadBestBlock(db kv.Getter) (uint32, error) {
	data, err := metaBucket.Get(db, bestBlockKey)
	if err != nil {
		return 0, errors.Wrap(err, "read best block")
	}
	var best uint32
	if err := rlp.DecodeBytes(data, &best); err != nil {
		return 0, errors.Wrap(err, "decode best block")
	}
	return best, nil
}
