// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/lvldb"
	"github.com/vechain/fresa/state"
)

type body struct {
	Owner    fresa.Address
	Amount   uint64
	Referrer *fresa.Address `rlp:"nil"`
}

func newContext(t *testing.T) *Context {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(state.NewStater(db, 0).NewState())
}

func TestMapping(t *testing.T) {
	m := NewMapping[fresa.Bytes32, *body](newContext(t), "test")
	key := fresa.Blake2b([]byte("key"))

	got, err := m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got)

	referrer := fresa.BytesToAddress([]byte("ref"))
	value := &body{Owner: fresa.BytesToAddress([]byte("owner")), Amount: 10, Referrer: &referrer}
	require.NoError(t, m.Insert(key, value))
	assert.Error(t, m.Insert(key, value))

	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Equal(t, value, got)

	value.Referrer = nil
	value.Amount = 0
	require.NoError(t, m.Update(key, value))
	got, err = m.Get(key)
	require.NoError(t, err)
	assert.Nil(t, got.Referrer)
	assert.Zero(t, got.Amount)

	assert.Error(t, m.Update(fresa.Blake2b([]byte("missing")), value))
}

func TestMappingScalar(t *testing.T) {
	m := NewMapping[fresa.Address, uint64](newContext(t), "balances")
	addr := fresa.BytesToAddress([]byte("a"))

	v, err := m.Get(addr)
	require.NoError(t, err)
	assert.Zero(t, v)

	require.NoError(t, m.Upsert(addr, 42))
	v, err = m.Get(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	exists, err := m.Exists(addr)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestCounter(t *testing.T) {
	sctx := newContext(t)
	c := NewCounter[fresa.Address](sctx, "nonce")
	a := fresa.BytesToAddress([]byte("a"))
	b := fresa.BytesToAddress([]byte("b"))

	for i := uint64(0); i < 3; i++ {
		n, err := c.Next(a)
		require.NoError(t, err)
		assert.Equal(t, i, n)
	}
	n, err := c.Next(b)
	require.NoError(t, err)
	assert.Zero(t, n)

	raw := NewRaw[uint64](sctx, "nonce", a.Bytes())
	v, err := raw.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(3), v)
}
