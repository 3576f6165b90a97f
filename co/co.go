// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds goroutine helpers.
package co

import (
	"runtime"
	"sync"
)

// Goes to run and manage life-cycle of go routines.
type Goes struct {
	wg sync.WaitGroup
}

// Go run f in go routine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait wait for all go routines started by 'Go' done.
func (g *Goes) Wait() {
	g.wg.Wait()
}

// Done returns a channel closed once all go routines started by 'Go' are done.
func (g *Goes) Done() <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.wg.Wait()
	}()
	return done
}

// Enqueue queues a work to the workers of Parallel.
type Enqueue func(work func())

// Parallel runs the works enqueued by cb on one worker per CPU, and returns when all are done.
func Parallel(cb func(Enqueue)) {
	ParallelN(runtime.NumCPU(), cb)
}

// ParallelN is Parallel with n workers.
func ParallelN(n int, cb func(Enqueue)) {
	if n < 1 {
		n = 1
	}
	var goes Goes
	defer goes.Wait()

	ch := make(chan func(), n*2)
	defer close(ch)
	for range n {
		goes.Go(func() {
			for work := range ch {
				work()
			}
		})
	}
	cb(func(work func()) { ch <- work })
}
