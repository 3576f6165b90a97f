// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"context"
	"slices"
	"sync"
)

// keyLocks hands out exclusive locks on string keys.
// A set of keys is always acquired in sorted order, so two holders can not deadlock.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	sem  chan struct{}
	refs int
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

func (l *keyLocks) ref(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()

	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{sem: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	return kl
}

func (l *keyLocks) unref(key string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if kl := l.locks[key]; kl != nil {
		if kl.refs--; kl.refs == 0 {
			delete(l.locks, key)
		}
	}
}

// Acquire locks all keys and returns the function releasing them.
// On context cancellation the keys already held are released and the context error is returned.
func (l *keyLocks) Acquire(ctx context.Context, keys []string) (func(), error) {
	keys = normalizeKeys(keys)

	held := make([]string, 0, len(keys))
	for _, key := range keys {
		kl := l.ref(key)
		select {
		case kl.sem <- struct{}{}:
			held = append(held, key)
		case <-ctx.Done():
			l.unref(key)
			l.release(held)
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() { once.Do(func() { l.release(held) }) }, nil
}

func (l *keyLocks) get(key string) *keyLock {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.locks[key]
}

func (l *keyLocks) release(keys []string) {
	for i := len(keys) - 1; i >= 0; i-- {
		<-l.get(keys[i]).sem
		l.unref(keys[i])
	}
}

// normalizeKeys sorts and dedups keys.
func normalizeKeys(keys []string) []string {
	keys = slices.Clone(keys)
	slices.Sort(keys)
	return slices.Compact(keys)
}

// covers returns whether every key of want is in the sorted set held.
func covers(held, want []string) bool {
	for _, k := range want {
		if _, found := slices.BinarySearch(held, k); !found {
			return false
		}
	}
	return true
}
