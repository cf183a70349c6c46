// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/thor-dpos/cry"
	"github.com/vechain/thor-dpos/thor"
)

// DefaultPoolLimit is the number of pending calls a pool holds unless told otherwise.
const DefaultPoolLimit = 10000

var (
	errKnownCall = errors.New("known call")
	errPoolFull  = errors.New("call pool is full")
)

func IsErrKnownCall(err error) bool {
	return errors.Is(err, errKnownCall)
}

func IsErrPoolFull(err error) bool {
	return errors.Is(err, errPoolFull)
}

// Pool keeps calls waiting for the next block, in arrival order.
type Pool struct {
	signing *cry.Signing
	limit   int

	mu      sync.Mutex
	pending []*poolEntry
	known   map[thor.Bytes32]struct{}
}

type poolEntry struct {
	call *Call
	id   thor.Bytes32
}

// NewPool create a pool accepting at most limit pending calls.
func NewPool(signing *cry.Signing, limit int) *Pool {
	if limit <= 0 {
		limit = DefaultPoolLimit
	}
	return &Pool{
		signing: signing,
		limit:   limit,
		known:   make(map[thor.Bytes32]struct{}),
	}
}

// Add validates call and queues it. It returns the recovered origin.
// Calls are deduplicated by ID, so a resent call with another signature encoding is still known.
func (p *Pool) Add(call *Call) (thor.Address, error) {
	if err := call.Validate(); err != nil {
		return thor.Address{}, errors.Wrap(err, "bad call")
	}
	origin, err := p.signing.Signer(call)
	if err != nil {
		return thor.Address{}, ErrUnauthorized
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	id := call.ID(origin)
	if _, ok := p.known[id]; ok {
		return thor.Address{}, errKnownCall
	}
	if len(p.pending) >= p.limit {
		return thor.Address{}, errPoolFull
	}
	p.known[id] = struct{}{}
	p.pending = append(p.pending, &poolEntry{call, id})
	metricPoolSize().Set(int64(len(p.pending)))

	logger.Debug("call queued", "id", id, "op", call.Op(), "origin", origin)
	return origin, nil
}

// Len returns the number of pending calls.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.pending)
}

// Drain removes and returns up to max pending calls, oldest first. max <= 0 drains everything.
func (p *Pool) Drain(max int) []*Call {
	p.mu.Lock()
	defer p.mu.Unlock()

	n := len(p.pending)
	if max > 0 && max < n {
		n = max
	}
	calls := make([]*Call, 0, n)
	for _, entry := range p.pending[:n] {
		calls = append(calls, entry.call)
		delete(p.known, entry.id)
	}
	p.pending = append([]*poolEntry(nil), p.pending[n:]...)
	metricPoolSize().Set(int64(len(p.pending)))
	return calls
}

// Restore puts calls taken by Drain back at the head of the pool, keeping their order.
// Calls already known again are skipped, and the limit is not applied.
func (p *Pool) Restore(calls []*Call) {
	entries := make([]*poolEntry, 0, len(calls))
	for _, call := range calls {
		origin, err := p.signing.Signer(call)
		if err != nil {
			continue
		}
		entries = append(entries, &poolEntry{call, call.ID(origin)})
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	restored := entries[:0]
	for _, entry := range entries {
		if _, ok := p.known[entry.id]; ok {
			continue
		}
		p.known[entry.id] = struct{}{}
		restored = append(restored, entry)
	}
	p.pending = append(restored, p.pending...)
	metricPoolSize().Set(int64(len(p.pending)))
}
