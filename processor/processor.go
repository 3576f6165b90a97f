// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package processor executes instructions against the ledger state.
// Each instruction runs on a fresh state under locks on the keys it may write, and commits as
// one batch or not at all.
package processor

import (
	"context"
	"encoding/binary"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/vechain/fresa/co"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/log"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/staker/reward"
	"github.com/vechain/fresa/state"
)

var logger = log.WithContext("pkg", "processor")

// Sink receives committed receipts.
type Sink interface {
	Write(receipt *Receipt) error
}

type Option func(*Processor)

// WithClock sets the source of instruction times, in unix seconds.
func WithClock(clock func() uint64) Option {
	return func(p *Processor) { p.clock = clock }
}

// WithSink sets the receiver of committed receipts.
func WithSink(sink Sink) Option {
	return func(p *Processor) { p.sink = sink }
}

// Processor dispatches instructions. It is safe for concurrent use.
type Processor struct {
	stater   *state.Stater
	cfg      fresa.Config
	strategy reward.Strategy
	locks    *keyLocks
	clock    func() uint64
	sink     Sink
	seq      atomic.Uint64
}

// New creates a processor over the stater.
func New(stater *state.Stater, cfg fresa.Config, opts ...Option) (*Processor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "config")
	}
	strategy, err := reward.ByName(cfg.Accrual, cfg.Tiered)
	if err != nil {
		return nil, err
	}
	p := &Processor{
		stater:   stater,
		cfg:      cfg,
		strategy: strategy,
		locks:    newKeyLocks(),
		clock:    func() uint64 { return uint64(time.Now().Unix()) },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// View runs fn on a read only environment over the committed state.
func (p *Processor) View(fn func(env *Env) error) error {
	return fn(p.newEnv(p.clock()))
}

// Execute runs the instruction. A rejected instruction returns a reverted receipt and changes
// nothing. The error is reserved for storage faults and context cancellation.
func (p *Processor) Execute(ctx context.Context, in *Instruction) (*Receipt, error) {
	start := time.Now()
	now := p.clock()
	receipt := &Receipt{
		ID:     fresa.DeriveID("receipt", binary.BigEndian.AppendUint64(in.Hash().Bytes(), now), p.seq.Add(1)),
		Kind:   in.Kind,
		Caller: in.Caller,
		Time:   now,
	}

	h, ok := handlers[in.Kind]
	if !ok {
		p.revert(receipt, reverts.Newf(reverts.InvalidParameter, "unknown instruction %q", in.Kind))
		metricsObserve(in.Kind, resultReverted, start)
		return receipt, nil
	}

	env, release, err := p.lock(ctx, h, in, now)
	if err != nil {
		return p.fail(receipt, err, start)
	}
	defer release()

	out, err := h.handle(env, in)
	if err != nil {
		return p.fail(receipt, err, start)
	}
	if err := p.stater.Commit(env.state.Stage()); err != nil {
		return p.fail(receipt, err, start)
	}

	receipt.Output = out
	receipt.Events = env.events
	receipt.Transfers = env.ledger.Transfers()
	if p.sink != nil {
		if err := p.sink.Write(receipt); err != nil {
			logger.Warn("failed to write receipt", "id", receipt.ID.AbbrevString(), "err", err)
		}
	}
	metricsObserve(in.Kind, resultCommitted, start)
	metricsPools(env)
	logger.Debug("instruction committed", "kind", in.Kind, "caller", in.Caller, "events", len(env.events))
	return receipt, nil
}

// ExecuteBatch runs the instructions concurrently. Receipts are returned in input order.
// Instructions of a batch touching the same keys run in no particular order.
func (p *Processor) ExecuteBatch(ctx context.Context, ins []*Instruction) ([]*Receipt, error) {
	receipts := make([]*Receipt, len(ins))
	errs := make([]error, len(ins))
	co.Parallel(func(queue co.Enqueue) {
		for i, in := range ins {
			queue(func() {
				receipts[i], errs[i] = p.Execute(ctx, in)
			})
		}
	})
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return receipts, nil
}

// lock acquires the keys of the instruction and returns the environment to run it in.
// Keys depend on state, for example the referrer of a withdrawn account, so they are computed
// again once held and the set grows until it covers them.
func (p *Processor) lock(ctx context.Context, h handler, in *Instruction, now uint64) (*Env, func(), error) {
	want, err := h.locks(p.newEnv(now), in)
	if err != nil {
		return nil, nil, err
	}
	for {
		held := normalizeKeys(want)
		release, err := p.locks.Acquire(ctx, held)
		if err != nil {
			return nil, nil, err
		}
		env := p.newEnv(now)
		want, err = h.locks(env, in)
		if err != nil {
			release()
			return nil, nil, err
		}
		if covers(held, want) {
			return env, release, nil
		}
		release()
		want = append(want, held...)
		metricLockRetries().Add(1)
		logger.Debug("instruction keys changed, relocking", "kind", in.Kind, "caller", in.Caller)
	}
}

func (p *Processor) newEnv(now uint64) *Env {
	return newEnv(p.stater.NewState(), p.cfg, p.strategy, now)
}

func (p *Processor) revert(receipt *Receipt, err *reverts.ErrRevert) {
	receipt.Reverted = true
	receipt.Error = err.Error()
	receipt.ErrorKind = err.Kind().String()
	logger.Info("instruction reverted", "kind", receipt.Kind, "caller", receipt.Caller, "err", err)
}

func (p *Processor) fail(receipt *Receipt, err error, start time.Time) (*Receipt, error) {
	var revert *reverts.ErrRevert
	if errors.As(err, &revert) {
		p.revert(receipt, revert)
		metricsObserve(receipt.Kind, resultReverted, start)
		return receipt, nil
	}
	metricsObserve(receipt.Kind, resultError, start)
	return nil, errors.WithMessagef(err, "execute %v", receipt.Kind)
}
