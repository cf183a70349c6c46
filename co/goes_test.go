// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package co_test

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/thor-dpos/co"
)

func TestGoes(t *testing.T) {
	var goes co.Goes
	var n atomic.Int32

	for range 10 {
		goes.Go(func() { n.Add(1) })
	}
	goes.Wait()
	assert.Equal(t, int32(10), n.Load())
}

func TestGoesDone(t *testing.T) {
	var goes co.Goes
	ctx, cancel := context.WithCancel(context.Background())

	goes.GoContext(ctx, func(ctx context.Context) {
		<-ctx.Done()
	})

	done := goes.Done()
	select {
	case <-done:
		t.Fatal("done before cancel")
	case <-time.After(10 * time.Millisecond):
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("not done after cancel")
	}
}
