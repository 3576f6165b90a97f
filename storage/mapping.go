// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"github.com/pkg/errors"
)

type Key interface {
	Bytes() []byte
}

// Mapping is a typed key/value table stored in its own space.
// Values are rlp encoded. Get on a missing key returns the zero value of V.
type Mapping[K Key, V any] struct {
	context *Context
	space   string
}

func NewMapping[K Key, V any](context *Context, space string) *Mapping[K, V] {
	return &Mapping[K, V]{context: context, space: space}
}

func (m *Mapping[K, V]) Get(key K) (value V, err error) {
	_, err = m.context.state.DecodeRecord(m.space, key.Bytes(), &value)
	return
}

// Exists returns whether a value is stored for the key.
func (m *Mapping[K, V]) Exists(key K) (bool, error) {
	raw, err := m.context.state.Get(m.space, key.Bytes())
	if err != nil {
		return false, err
	}
	return len(raw) > 0, nil
}

// Insert stores a value for a key which must not exist yet.
func (m *Mapping[K, V]) Insert(key K, value V) error {
	exists, err := m.Exists(key)
	if err != nil {
		return err
	}
	if exists {
		return errors.Errorf("%s: key %x already exists", m.space, key.Bytes())
	}
	return m.context.state.EncodeRecord(m.space, key.Bytes(), value)
}

// Update replaces the value of an existing key.
func (m *Mapping[K, V]) Update(key K, value V) error {
	exists, err := m.Exists(key)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("%s: key %x does not exist", m.space, key.Bytes())
	}
	return m.context.state.EncodeRecord(m.space, key.Bytes(), value)
}

// Upsert stores the value regardless of the key existence.
func (m *Mapping[K, V]) Upsert(key K, value V) error {
	return m.context.state.EncodeRecord(m.space, key.Bytes(), value)
}
