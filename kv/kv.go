// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

// Getter wraps methods for getting kvs.
type Getter interface {
	// Get value for given key.
	// An error returned if key not found. It can be checked via IsNotFound.
	Get(key []byte) ([]byte, error)
	Has(key []byte) (bool, error)
	IsNotFound(err error) bool
}

// Putter wraps methods for putting kvs.
type Putter interface {
	Put(key, val []byte) error
	Delete(key []byte) error
}

// GetPutter wraps methods for getting/putting kvs.
type GetPutter interface {
	Getter
	Putter
}

// Snapshot is a consistent read-only view of a store.
type Snapshot interface {
	Getter
	Release()
}

// Bulk collects writes and applies them in one atomic write.
type Bulk interface {
	Putter
	// EnableAutoFlush allows the bulk to be flushed in several writes when it grows large.
	// A bulk with auto flush enabled is no longer atomic.
	EnableAutoFlush()
	Write() error
}

// Range is the key range [Start, Limit).
type Range struct {
	Start []byte
	Limit []byte
}

// Iterator iterates kvs in a range.
type Iterator interface {
	First() bool
	Last() bool
	Next() bool
	Prev() bool
	Key() []byte
	Value() []byte
	Release()
	Error() error
}

// Store is a kv store with snapshot, bulk and iteration support.
type Store interface {
	Getter
	Putter

	Snapshot() Snapshot
	Bulk() Bulk
	Iterate(r Range) Iterator
}
