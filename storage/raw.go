// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

// Raw is a single typed record.
type Raw[V any] struct {
	context *Context
	space   string
	id      []byte
}

func NewRaw[V any](context *Context, space string, id []byte) *Raw[V] {
	return &Raw[V]{context: context, space: space, id: id}
}

func (r *Raw[V]) Get() (value V, err error) {
	_, err = r.context.state.DecodeRecord(r.space, r.id, &value)
	return
}

func (r *Raw[V]) Upsert(value V) error {
	return r.context.state.EncodeRecord(r.space, r.id, value)
}

// Counter is a per-key sequence, the first Next returns 0.
type Counter[K Key] struct {
	next *Mapping[K, uint64]
}

func NewCounter[K Key](context *Context, space string) *Counter[K] {
	return &Counter[K]{next: NewMapping[K, uint64](context, space)}
}

// Next returns the current sequence number of the key and advances it.
func (c *Counter[K]) Next(key K) (uint64, error) {
	n, err := c.next.Get(key)
	if err != nil {
		return 0, err
	}
	if err := c.next.Upsert(key, n+1); err != nil {
		return 0, err
	}
	return n, nil
}
