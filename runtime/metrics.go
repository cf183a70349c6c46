// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import "github.com/vechain/thor-dpos/metrics"

var (
	metricBlockDuration = metrics.LazyLoadHistogram("runtime_block_execution_duration_ms", metrics.Bucket10s)
	metricBestBlock     = metrics.LazyLoadGauge("runtime_best_block")
	metricCalls         = metrics.LazyLoadCounterVec("runtime_calls_count", []string{"op", "result"})
	metricPoolSize      = metrics.LazyLoadGauge("runtime_pool_size")
)
