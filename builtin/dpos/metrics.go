// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package dpos

import "github.com/vechain/thor-dpos/metrics"

var (
	metricRegistrations    = metrics.LazyLoadCounter("dpos_validator_registrations_count")
	metricNominations      = metrics.LazyLoadCounterVec("dpos_nominations_count", []string{"result"})
	metricEpochSelections  = metrics.LazyLoadCounter("dpos_epoch_selections_count")
	metricAuthoritySetSize = metrics.LazyLoadGauge("dpos_authority_set_size")
)
