// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package solo

import (
	"context"
	"time"

	"github.com/vechain/thor-dpos/co"
	"github.com/vechain/thor-dpos/log"
	"github.com/vechain/thor-dpos/runtime"
)

var logger = log.WithContext("pkg", "solo")

type Options struct {
	// BlockInterval is the number of seconds between blocks.
	BlockInterval uint64
	// MaxCalls caps the calls taken from the pool per block. Zero takes all.
	MaxCalls int
}

// Solo produces blocks on a fixed interval from the calls in the pool.
type Solo struct {
	rt      *runtime.Runtime
	pool    *runtime.Pool
	options Options
	now     func() time.Time
}

// New returns Solo instance
func New(rt *runtime.Runtime, pool *runtime.Pool, options Options) *Solo {
	if options.BlockInterval == 0 {
		options.BlockInterval = 1
	}
	return &Solo{
		rt:      rt,
		pool:    pool,
		options: options,
		now:     time.Now,
	}
}

// Run produces blocks until ctx is done.
func (s *Solo) Run(ctx context.Context) {
	var goes co.Goes
	defer goes.Wait()

	logger.Info("prepared to produce blocks", "interval", s.options.BlockInterval)
	goes.GoContext(ctx, s.loop)
}

func (s *Solo) loop(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("stopping block production")
			return
		case <-ticker.C:
			if uint64(s.now().Unix())%s.options.BlockInterval != 0 {
				continue
			}
			if _, err := s.Pack(); err != nil {
				logger.Error("failed to produce block", "err", err)
			}
		}
	}
}

// Pack executes the next block with the pending calls.
// If the block fails, the calls go back to the pool for the next attempt.
func (s *Solo) Pack() (*runtime.Block, error) {
	calls := s.pool.Drain(s.options.MaxCalls)
	block, receipts, err := s.rt.ExecuteBlock(calls, uint64(s.now().Unix()))
	if err != nil {
		s.pool.Restore(calls)
		for _, call := range calls {
			logger.Warn("call returned to pool", "hash", call.Hash(), "op", call.Op())
		}
		return nil, err
	}

	logger.Info("📦 new block",
		"number", block.Number,
		"calls", len(receipts),
		"reverted", block.Reverted,
		"authoritiesUpdated", block.AuthoritiesUpdated,
		"changesHash", block.ChangesHash.AbbrevString(),
	)
	return block, nil
}
