// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sync"

	"github.com/pkg/errors"

	"github.com/vechain/fresa/cache"
	"github.com/vechain/fresa/kv"
)

const recordsBucket = kv.Bucket("r")

// Stater is the state creator and committer.
type Stater struct {
	store kv.Store
	cache *cache.LRU
	mu    sync.RWMutex // orders cache fills against commits
}

type cached struct {
	val []byte
}

// NewStater create a new stater. cacheSize <= 0 disables the read cache.
func NewStater(db kv.Store, cacheSize int) *Stater {
	s := &Stater{store: recordsBucket.NewStore(db)}
	if cacheSize > 0 {
		s.cache, _ = cache.NewLRU(cacheSize)
	}
	return s
}

// NewState create a new state object over committed records.
func (s *Stater) NewState() *State {
	return New(s.load)
}

func (s *Stater) load(key []byte) ([]byte, error) {
	if s.cache == nil {
		return s.read(key)
	}
	if v, ok := s.cache.Get(string(key)); ok {
		return v.(cached).val, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	v, err := s.cache.GetOrLoad(string(key), func(any) (any, error) {
		val, err := s.read(key)
		if err != nil {
			return nil, err
		}
		return cached{val}, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(cached).val, nil
}

func (s *Stater) read(key []byte) ([]byte, error) {
	val, err := s.store.Get(key)
	if err != nil {
		if s.store.IsNotFound(err) {
			return nil, nil
		}
		return nil, errors.Wrap(err, "read record")
	}
	return val, nil
}

// Commit writes the stage in one atomic batch.
func (s *Stater) Commit(stage *Stage) error {
	if stage.Len() == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	bulk := s.store.Bulk()
	if err := stage.writeTo(bulk); err != nil {
		return &Error{err}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}

	if s.cache != nil {
		for k, v := range stage.changes {
			s.cache.Add(k, cached{v})
		}
	}
	return nil
}

// Iterate walks the committed records of a space in key order, until fn returns false.
func (s *Stater) Iterate(space string, fn func(id, val []byte) bool) error {
	prefix := RecordKey(space, nil)
	iter := kv.Bucket(prefix).NewStore(s.store).Iterate(kv.Range{})
	defer iter.Release()

	for iter.Next() {
		if !fn(iter.Key(), iter.Value()) {
			break
		}
	}
	return iter.Error()
}
