// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reward

import (
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/vechain/fresa/fresa"
)

// ErrOverflow is returned when a reward does not fit in 64 bits.
var ErrOverflow = errors.New("reward overflow")

// Terms are the pool parameters a reward is computed from.
type Terms struct {
	Rate         uint64 // reward units per staked unit per lock period
	LockDuration uint64 // seconds
}

// Strategy computes the reward a principal earns over [from, to] for a position whose
// lock window started at start. Rewards over adjacent intervals add up, so a position
// can be settled at every mutation.
//
// Activation returns when principal added at time at starts earning. Strategies paying
// whole periods hold it back to the next period boundary, otherwise a top-up made just
// before a boundary would earn the full period.
type Strategy interface {
	Accrue(principal uint64, terms Terms, start, from, to uint64) (uint64, error)
	Activation(terms Terms, start, at uint64) uint64
}

// ByName returns the strategy configured by name.
func ByName(name string, tiered fresa.TieredAccrual) (Strategy, error) {
	switch name {
	case fresa.AccrualPeriodic:
		return Periodic{}, nil
	case fresa.AccrualLinear:
		return Linear{}, nil
	case fresa.AccrualTiered:
		if err := tiered.Validate(); err != nil {
			return nil, err
		}
		return &Tiered{tiered}, nil
	}
	return nil, fmt.Errorf("unknown accrual strategy %q", name)
}

// Periodic pays rate per staked unit for every whole lock period elapsed since start.
// Partial periods earn nothing. A pool without lock duration earns nothing.
type Periodic struct{}

func (Periodic) Accrue(principal uint64, terms Terms, start, from, to uint64) (uint64, error) {
	if terms.LockDuration == 0 || to <= from {
		return 0, nil
	}
	periods := Periods(start, to, terms.LockDuration) - Periods(start, from, terms.LockDuration)
	return mul(principal, terms.Rate, periods, 1)
}

func (Periodic) Activation(terms Terms, start, at uint64) uint64 {
	return nextBoundary(start, at, terms.LockDuration)
}

// Tiered pays a rate picked by principal size for every whole lock period elapsed since
// start. Periods ending after BoostAfter seconds into the lock window are multiplied.
// The pool reward rate is not used.
type Tiered struct {
	fresa.TieredAccrual
}

func (t *Tiered) Accrue(principal uint64, terms Terms, start, from, to uint64) (uint64, error) {
	l := terms.LockDuration
	if l == 0 || to <= from {
		return 0, nil
	}
	kFrom, kTo := Periods(start, from, l), Periods(start, to, l)
	if kTo == kFrom {
		return 0, nil
	}
	// period k is boosted when k*l > BoostAfter
	boosted := uint64(0)
	if first := max(kFrom, t.BoostAfter/l); kTo > first {
		boosted = kTo - first
	}
	factor := uint256.NewInt(boosted)
	factor.Mul(factor, uint256.NewInt(t.BoostMultiplier))
	factor.Add(factor, uint256.NewInt(kTo-kFrom-boosted))
	if !factor.IsUint64() {
		return 0, ErrOverflow
	}
	return mul(principal, t.RateBPS(principal), factor.Uint64(), fresa.BasisPoints)
}

func (t *Tiered) Activation(terms Terms, start, at uint64) uint64 {
	return nextBoundary(start, at, terms.LockDuration)
}

// Periods returns the whole lock periods between start and now.
func Periods(start, now, lockDuration uint64) uint64 {
	if lockDuration == 0 || now <= start {
		return 0
	}
	return (now - start) / lockDuration
}

// nextBoundary returns the first period boundary of the window started at start not before at.
func nextBoundary(start, at, lockDuration uint64) uint64 {
	if lockDuration == 0 || at <= start {
		return at
	}
	elapsed := at - start
	if elapsed%lockDuration == 0 {
		return at
	}
	next := start + (elapsed/lockDuration+1)*lockDuration
	if next < at {
		// wrapped, the principal never activates in range
		return math.MaxUint64
	}
	return next
}

// Linear pays rate per staked unit per lock period, pro rata to the elapsed seconds.
// The division truncates at every settlement.
type Linear struct{}

func (Linear) Accrue(principal uint64, terms Terms, _, from, to uint64) (uint64, error) {
	if terms.LockDuration == 0 || to <= from {
		return 0, nil
	}
	return mul(principal, terms.Rate, to-from, terms.LockDuration)
}

func (Linear) Activation(_ Terms, _, at uint64) uint64 { return at }

// mul returns a*b*c/d truncated, failing when the result exceeds 64 bits.
func mul(a, b, c, d uint64) (uint64, error) {
	x := uint256.NewInt(a)
	x.Mul(x, uint256.NewInt(b))
	x.Mul(x, uint256.NewInt(c))
	if d > 1 {
		x.Div(x, uint256.NewInt(d))
	}
	if !x.IsUint64() {
		return 0, ErrOverflow
	}
	return x.Uint64(), nil
}

// Share returns value*part/whole truncated. part must not exceed whole.
func Share(value, part, whole uint64) uint64 {
	if whole == 0 {
		return 0
	}
	x := uint256.NewInt(value)
	x.Mul(x, uint256.NewInt(part))
	x.Div(x, uint256.NewInt(whole))
	return x.Uint64()
}
