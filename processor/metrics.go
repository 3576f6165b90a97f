// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"time"

	"github.com/vechain/fresa/metrics"
)

const (
	resultCommitted = "committed"
	resultReverted  = "reverted"
	resultError     = "error"
)

var (
	metricInstructions        = metrics.LazyLoadCounterVec("instructions_total", []string{"kind", "result"})
	metricInstructionDuration = metrics.LazyLoadHistogram("instruction_duration_ms", metrics.BucketInstruction)
	metricLockRetries         = metrics.LazyLoadCounter("instruction_lock_retries_total")
	metricPoolTotalStaked     = metrics.LazyLoadGaugeVec("pool_total_staked", []string{"pool"})
)

func metricsObserve(kind Kind, result string, start time.Time) {
	if metrics.NoOp() {
		return
	}
	metricInstructions().AddWithLabel(1, map[string]string{"kind": string(kind), "result": result})
	metricInstructionDuration().Observe(time.Since(start).Milliseconds())
}

// metricsPools publishes the total staked of the pools touched by a committed instruction.
func metricsPools(env *Env) {
	if metrics.NoOp() {
		return
	}
	for _, id := range env.pools {
		p, err := env.staker.GetPool(id)
		if err != nil {
			continue
		}
		metricPoolTotalStaked().SetWithLabel(int64(p.TotalStaked()), map[string]string{"pool": id.String()})
	}
}
