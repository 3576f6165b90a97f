// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/fresa/custody"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/lvldb"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/staker/reward"
	"github.com/vechain/fresa/staker/stake"
	"github.com/vechain/fresa/state"
	"github.com/vechain/fresa/storage"
)

const (
	week   = uint64(604800)
	supply = uint64(1_000_000_000_000000)
)

var (
	authority = fresa.BytesToAddress([]byte("authority"))
	alice     = fresa.BytesToAddress([]byte("alice"))
	bob       = fresa.BytesToAddress([]byte("bob"))
	carol     = fresa.BytesToAddress([]byte("carol"))
)

type StakerTest struct {
	t       *testing.T
	staker  *Staker
	ledger  *custody.Ledger
	state   *state.State
	now     uint64
	lastErr error
}

func newTest(t *testing.T, modify ...func(*fresa.Config)) *StakerTest {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := fresa.DefaultConfig()
	for _, m := range modify {
		m(&cfg)
	}
	strategy, err := reward.ByName(cfg.Accrual, cfg.Tiered)
	require.NoError(t, err)

	st := state.NewStater(db, 0).NewState()
	sctx := storage.NewContext(st)
	ledger := custody.New(sctx)

	_, err = ledger.InitializeMint(authority, supply, cfg.MintDecimals, 0)
	require.NoError(t, err)

	return &StakerTest{
		t:      t,
		staker: New(sctx, ledger, cfg, strategy),
		ledger: ledger,
		state:  st,
		now:    1_700_000_000,
	}
}

// Fund transfers tokens from the mint authority to each holder.
func (ts *StakerTest) Fund(amount uint64, holders ...fresa.Address) *StakerTest {
	for _, h := range holders {
		require.NoError(ts.t, ts.ledger.Transfer(authority, h, amount))
	}
	return ts
}

func (ts *StakerTest) Advance(seconds uint64) *StakerTest {
	ts.now += seconds
	return ts
}

func (ts *StakerTest) NewPool(rate, lock int64) fresa.Bytes32 {
	id, err := ts.staker.InitializePool(authority, rate, lock, ts.now)
	require.NoError(ts.t, err)
	return id
}

func (ts *StakerTest) FundPool(poolID fresa.Bytes32, amount uint64) *StakerTest {
	require.NoError(ts.t, ts.staker.FundPool(authority, poolID, amount))
	return ts
}

func (ts *StakerTest) Stake(owner fresa.Address, poolID fresa.Bytes32, amount uint64, referrer *fresa.Address) *StakeResult {
	res, err := ts.staker.Stake(owner, poolID, amount, referrer, ts.now)
	require.NoError(ts.t, err)
	return res
}

func (ts *StakerTest) Withdraw(owner fresa.Address, poolID fresa.Bytes32, amount uint64) *WithdrawResult {
	res, err := ts.staker.Withdraw(owner, Target{Pool: poolID}, amount, ts.now)
	require.NoError(ts.t, err)
	return res
}

func (ts *StakerTest) ClaimReward(owner fresa.Address, poolID fresa.Bytes32) *WithdrawResult {
	res, err := ts.staker.ClaimReward(owner, Target{Pool: poolID}, ts.now)
	require.NoError(ts.t, err)
	return res
}

// Try runs op and keeps its error for AssertRevert.
func (ts *StakerTest) Try(op func(s *Staker, now uint64) error) *StakerTest {
	ts.lastErr = op(ts.staker, ts.now)
	return ts
}

func (ts *StakerTest) AssertRevert(kind reverts.Kind) *StakerTest {
	got, ok := reverts.KindOf(ts.lastErr)
	assert.True(ts.t, ok, "expected %v revert, got %v", kind, ts.lastErr)
	assert.Equal(ts.t, kind, got)
	return ts
}

func (ts *StakerTest) AssertBalance(addr fresa.Address, expected uint64) *StakerTest {
	bal, err := ts.ledger.BalanceOf(addr)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, expected, bal, "balance of %v", addr)
	return ts
}

func (ts *StakerTest) AssertStake(poolID fresa.Bytes32, owner fresa.Address, expected uint64) *StakerTest {
	amount, err := ts.staker.StakeOf(poolID, owner)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, expected, amount, "stake of %v", owner)
	return ts
}

// AssertTotalStaked checks total staked against the expected value and the sum of the owners' stakes.
func (ts *StakerTest) AssertTotalStaked(poolID fresa.Bytes32, expected uint64, owners ...fresa.Address) *StakerTest {
	p, err := ts.staker.GetPool(poolID)
	require.NoError(ts.t, err)
	assert.Equal(ts.t, expected, p.TotalStaked())

	var sum uint64
	for _, o := range owners {
		amount, err := ts.staker.StakeOf(poolID, o)
		require.NoError(ts.t, err)
		sum += amount
	}
	assert.Equal(ts.t, p.TotalStaked(), sum, "total staked equals the sum of stakes")

	bal, err := ts.ledger.BalanceOf(custody.PoolAccount(poolID))
	require.NoError(ts.t, err)
	assert.GreaterOrEqual(ts.t, bal, p.TotalStaked(), "custody covers total staked")
	return ts
}

func (ts *StakerTest) Account(poolID fresa.Bytes32, owner fresa.Address) *stake.Account {
	acc, err := ts.staker.GetStake(stake.ID(poolID, owner))
	require.NoError(ts.t, err)
	return acc
}
