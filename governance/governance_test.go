// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package governance

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/lvldb"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/state"
	"github.com/vechain/fresa/storage"
)

var (
	poolID = fresa.Blake2b([]byte("pool"))
	alice  = fresa.BytesToAddress([]byte("alice"))
	bob    = fresa.BytesToAddress([]byte("bob"))
	carol  = fresa.BytesToAddress([]byte("carol"))
)

// stakedAt is when every fakeStakes position was opened.
const stakedAt = 5

type fakeStakes map[fresa.Address]uint64

func (f fakeStakes) StakeBefore(pool fresa.Bytes32, owner fresa.Address, t uint64) (uint64, error) {
	if pool != poolID || t <= stakedAt {
		return 0, nil
	}
	return f[owner], nil
}

func (f fakeStakes) Exists(pool fresa.Bytes32) (bool, error) {
	return pool == poolID, nil
}

func newService(t *testing.T, stakes fakeStakes) *Service {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(storage.NewContext(state.NewStater(db, 0).NewState()), stakes)
}

func TestVoteWeightedByStake(t *testing.T) {
	svc := newService(t, fakeStakes{alice: 300, bob: 200, carol: 150})

	id, err := svc.Submit(alice, poolID, "raise reward rate", 10)
	require.NoError(t, err)

	w, err := svc.Vote(alice, id, true)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), w)
	_, err = svc.Vote(bob, id, false)
	require.NoError(t, err)
	_, err = svc.Vote(carol, id, false)
	require.NoError(t, err)

	p, err := svc.Get(id)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), p.VotesFor)
	assert.Equal(t, uint64(350), p.VotesAgainst)
	assert.Equal(t, uint64(3), p.Voters)
	assert.False(t, p.Approved())
}

func TestVoteOnce(t *testing.T) {
	svc := newService(t, fakeStakes{alice: 1})
	id, err := svc.Submit(alice, poolID, "x", 10)
	require.NoError(t, err)

	_, err = svc.Vote(alice, id, true)
	require.NoError(t, err)
	_, err = svc.Vote(alice, id, true)
	assert.ErrorIs(t, err, reverts.ErrInvalidParameter)
}

func TestVoteFailures(t *testing.T) {
	svc := newService(t, fakeStakes{alice: 1})

	_, err := svc.Vote(alice, fresa.Blake2b([]byte("missing")), true)
	assert.ErrorIs(t, err, reverts.ErrNotFound)

	id, err := svc.Submit(alice, poolID, "x", 10)
	require.NoError(t, err)
	_, err = svc.Vote(bob, id, true)
	assert.ErrorIs(t, err, reverts.ErrInvalidParameter, "voters need stake")

	// proposed in the second the stake was opened
	early, err := svc.Submit(alice, poolID, "y", stakedAt)
	require.NoError(t, err)
	_, err = svc.Vote(alice, early, true)
	assert.ErrorIs(t, err, reverts.ErrInvalidParameter)
}

func TestSubmitFailures(t *testing.T) {
	svc := newService(t, fakeStakes{})

	_, err := svc.Submit(alice, poolID, "", 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidParameter)

	_, err = svc.Submit(alice, poolID, strings.Repeat("a", MaxDescriptionLength+1), 0)
	assert.ErrorIs(t, err, reverts.ErrInvalidParameter)

	_, err = svc.Submit(alice, fresa.Blake2b([]byte("other")), "x", 0)
	assert.ErrorIs(t, err, reverts.ErrNotFound)

	a, err := svc.Submit(alice, poolID, "x", 0)
	require.NoError(t, err)
	b, err := svc.Submit(alice, poolID, "x", 0)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}
