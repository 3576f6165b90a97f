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
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/staker/stake"
)

func TestStaker_EndToEnd(t *testing.T) {
	ts := newTest(t).Fund(1_000_000000, alice)
	poolID := ts.NewPool(10, int64(week))
	ts.FundPool(poolID, 100_000_000000)

	res := ts.Stake(alice, poolID, 500_000000, nil)
	assert.True(t, res.Opened)
	ts.AssertTotalStaked(poolID, 500_000000, alice)

	ts.Advance(week)
	w := ts.Withdraw(alice, poolID, 250_000000)

	assert.Equal(t, uint64(250_000000), w.Principal)
	assert.Equal(t, uint64(250_000000*10), w.Reward)
	assert.Equal(t, w.Reward, w.Paid)
	ts.AssertStake(poolID, alice, 250_000000).
		AssertTotalStaked(poolID, 250_000000, alice).
		AssertBalance(alice, 500_000000+250_000000+250_000000*10)
	assert.Zero(t, w.Deferred)
}

func TestStaker_LockEnforced(t *testing.T) {
	ts := newTest(t).Fund(1_000, alice)
	poolID := ts.NewPool(1, int64(week))
	ts.Stake(alice, poolID, 1_000, nil)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Withdraw(alice, Target{Pool: poolID}, 1_000, now)
		return err
	}).AssertRevert(reverts.Locked)

	ts.Advance(week - 1).Try(func(s *Staker, now uint64) error {
		_, err := s.Withdraw(alice, Target{Pool: poolID}, 1_000, now)
		return err
	}).AssertRevert(reverts.Locked)

	// unfunded pool returns the principal and owes the reward of one period
	w := ts.Advance(1).Withdraw(alice, poolID, 1_000)
	assert.Zero(t, w.Reward)
	assert.Equal(t, uint64(1_000), w.Deferred)
	ts.AssertBalance(alice, 1_000).AssertTotalStaked(poolID, 0, alice)

	ts.FundPool(poolID, 1_000)
	w = ts.ClaimReward(alice, poolID)
	assert.Equal(t, uint64(1_000), w.Reward)
	assert.Zero(t, w.Deferred)
	ts.AssertBalance(alice, 2_000).AssertTotalStaked(poolID, 0, alice)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.ClaimReward(alice, Target{Pool: poolID}, now)
		return err
	}).AssertRevert(reverts.NotFound)
}

func TestStaker_WithdrawFromUnfundedPool(t *testing.T) {
	ts := newTest(t).Fund(1_000_000000, alice)
	poolID := ts.NewPool(10, int64(week))
	id := ts.Stake(alice, poolID, 500_000000, &bob).Account.ID()

	ts.Advance(week)
	w := ts.Withdraw(alice, poolID, 250_000000)
	assert.Equal(t, uint64(250_000000), w.Principal)
	assert.Zero(t, w.Reward)
	assert.Equal(t, uint64(250_000000*10), w.Deferred)
	ts.AssertBalance(alice, 750_000000).AssertTotalStaked(poolID, 250_000000, alice)

	// a partly funded pool pays what it holds
	ts.FundPool(poolID, 1_000_000000)
	w = ts.Withdraw(alice, poolID, 250_000000)
	assert.Equal(t, uint64(1_000_000000), w.Reward)
	assert.Equal(t, uint64(50_000000), w.Referral)
	assert.Equal(t, uint64(4_000_000000), w.Deferred)
	ts.AssertBalance(alice, 1_000_000000+950_000000).
		AssertBalance(bob, 50_000000).
		AssertTotalStaked(poolID, 0, alice)

	pending, err := ts.staker.PendingReward(id, ts.now)
	require.NoError(t, err)
	assert.Equal(t, uint64(4_000_000000), pending)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.ClaimReward(alice, Target{Pool: poolID}, now)
		return err
	}).AssertRevert(reverts.InsufficientBalance)

	ts.FundPool(poolID, 4_000_000000)
	w = ts.ClaimReward(alice, poolID)
	assert.Equal(t, uint64(4_000_000000), w.Reward)
	ts.AssertBalance(custody.PoolAccount(poolID), 0)
}

func TestStaker_TopUpBeforeBoundary(t *testing.T) {
	ts := newTest(t).Fund(1_000_000, alice)
	poolID := ts.NewPool(1, 100)
	ts.FundPool(poolID, 10_000_000)

	ts.Stake(alice, poolID, 1_000, nil)
	ts.Advance(99).Stake(alice, poolID, 999_000, nil)
	w := ts.Advance(1).Withdraw(alice, poolID, 1_000_000)

	assert.Equal(t, uint64(1_000_000), w.Principal)
	assert.Equal(t, uint64(1_000), w.Reward, "only the first stake spanned the boundary")
}

func TestStaker_TieredAccrual(t *testing.T) {
	ts := newTest(t, func(c *fresa.Config) { c.Accrual = fresa.AccrualTiered }).Fund(20_000_000000, alice)
	poolID := ts.NewPool(1, int64(week))
	ts.FundPool(poolID, 100_000_000000)

	ts.Stake(alice, poolID, 2_000_000000, nil)
	ts.Advance(6 * week)
	w := ts.Withdraw(alice, poolID, 2_000_000000)
	// 12% per week, weeks 5 and 6 doubled
	assert.Equal(t, uint64(2_000_000000*1200*8/10_000), w.Reward)
}

func TestStaker_WithdrawMoreThanStaked(t *testing.T) {
	ts := newTest(t).Fund(1_000, alice)
	poolID := ts.NewPool(0, 0)
	ts.Stake(alice, poolID, 600, nil)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Withdraw(alice, Target{Pool: poolID}, 601, now)
		return err
	}).AssertRevert(reverts.InsufficientStake)

	ts.AssertStake(poolID, alice, 600).
		AssertTotalStaked(poolID, 600, alice).
		AssertBalance(alice, 400)
}

func TestStaker_NoDoublePay(t *testing.T) {
	ts := newTest(t).Fund(1_000_000, alice)
	poolID := ts.NewPool(5, 100)
	ts.FundPool(poolID, 1_000_000_000)
	ts.Stake(alice, poolID, 1_000_000, nil)

	ts.Advance(300)
	var paid uint64
	for _, amount := range []uint64{300_000, 300_000, 400_000} {
		paid += ts.Withdraw(alice, poolID, amount).Reward
	}
	assert.Equal(t, uint64(1_000_000*5*3), paid)

	_, err := ts.staker.GetStake(stake.ID(poolID, alice))
	assert.ErrorIs(t, err, reverts.ErrNotFound)
}

func TestStaker_Referral(t *testing.T) {
	ts := newTest(t).Fund(10_001, alice)
	poolID := ts.NewPool(1, 10)
	ts.FundPool(poolID, 1_000_000)

	ts.Stake(alice, poolID, 4_000, &bob)
	ts.Stake(alice, poolID, 6_000, &carol)
	ts.Stake(alice, poolID, 1, nil)
	assert.Equal(t, &bob, ts.Account(poolID, alice).Referrer(), "referrer survives top-ups")

	ts.Advance(10)
	w := ts.Withdraw(alice, poolID, 10_001)
	assert.Equal(t, uint64(10_001), w.Reward)
	assert.Equal(t, uint64(500), w.Referral, "5% of the paid reward")
	assert.Equal(t, uint64(9_501), w.Paid)
	assert.Equal(t, &bob, w.Referrer)
	ts.AssertBalance(bob, 500).AssertBalance(carol, 0)
}

func TestStaker_ReferrerPolicyConfigurable(t *testing.T) {
	ts := newTest(t, func(c *fresa.Config) { c.LockReferrer = false }).Fund(10_000, alice)
	poolID := ts.NewPool(1, 10)

	ts.Stake(alice, poolID, 1, &bob)
	ts.Stake(alice, poolID, 1, &carol)
	assert.Equal(t, &carol, ts.Account(poolID, alice).Referrer())
}

func TestStaker_ResetStartOnTopUp(t *testing.T) {
	ts := newTest(t, func(c *fresa.Config) { c.ResetStartOnTopUp = true }).Fund(10_000, alice)
	poolID := ts.NewPool(1, int64(week))

	ts.Stake(alice, poolID, 1, nil)
	ts.Advance(week - 1)
	ts.Stake(alice, poolID, 1, nil)
	ts.Advance(1)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Withdraw(alice, Target{Pool: poolID}, 2, now)
		return err
	}).AssertRevert(reverts.Locked)
}

func TestStaker_StakeFailures(t *testing.T) {
	ts := newTest(t).Fund(100, alice)
	poolID := ts.NewPool(1, 1)
	before := ts.state.Stage().Keys()

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Stake(alice, fresa.Blake2b([]byte("missing")), 1, nil, now)
		return err
	}).AssertRevert(reverts.NotFound)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Stake(alice, poolID, 0, nil, now)
		return err
	}).AssertRevert(reverts.InvalidParameter)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Stake(alice, poolID, 101, nil, now)
		return err
	}).AssertRevert(reverts.InsufficientBalance)

	// the failed stakes left no account and no pool liability behind
	ts.AssertStake(poolID, alice, 0).AssertTotalStaked(poolID, 0).AssertBalance(alice, 100)
	assert.Equal(t, before, ts.state.Stage().Keys())
}

func TestStaker_WithdrawByStakeID(t *testing.T) {
	ts := newTest(t).Fund(100, alice)
	poolID := ts.NewPool(0, 0)
	id := ts.Stake(alice, poolID, 100, nil).Account.ID()

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Withdraw(bob, Target{StakeID: &id}, 1, now)
		return err
	}).AssertRevert(reverts.Unauthorized)

	other := ts.NewPool(0, 0)
	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.Withdraw(alice, Target{Pool: other, StakeID: &id}, 1, now)
		return err
	}).AssertRevert(reverts.InvalidParameter)

	res, err := ts.staker.Withdraw(alice, Target{StakeID: &id}, 100, ts.now)
	require.NoError(t, err)
	assert.Equal(t, uint64(100), res.Principal)
}

func TestStaker_FundPoolUnauthorized(t *testing.T) {
	ts := newTest(t).Fund(100, alice)
	poolID := ts.NewPool(0, 0)

	ts.Try(func(s *Staker, _ uint64) error {
		return s.FundPool(alice, poolID, 10)
	}).AssertRevert(reverts.Unauthorized)

	ts.Try(func(s *Staker, _ uint64) error {
		return s.FundPool(authority, poolID, 0)
	}).AssertRevert(reverts.InvalidParameter)

	ts.FundPool(poolID, 10)
	reserve, err := ts.staker.Reserve(poolID)
	require.NoError(t, err)
	assert.Equal(t, uint64(10), reserve)
}

func TestStaker_FirstStakeBonus(t *testing.T) {
	ts := newTest(t, func(c *fresa.Config) { c.FirstStakeBonus = 100_000000 }).Fund(1_000, alice)
	poolID := ts.NewPool(0, 0)

	res := ts.Stake(alice, poolID, 1_000, nil)
	assert.Equal(t, uint64(100_000000), res.Bonus)
	ts.AssertBalance(alice, 100_000000)

	res = ts.Stake(alice, poolID, 1_000, nil)
	assert.Zero(t, res.Bonus, "bonus only on opening")
}

func TestStaker_ForceWithdraw(t *testing.T) {
	ts := newTest(t).Fund(1_000, alice)
	poolID := ts.NewPool(10, int64(week))
	ts.Stake(alice, poolID, 1_000, nil)

	ts.Advance(10)
	res, err := ts.staker.ForceWithdraw(alice, Target{Pool: poolID}, 400, ts.now)
	require.NoError(t, err)
	assert.Equal(t, uint64(200), res.Penalty)
	assert.Equal(t, uint64(200), res.Principal)

	ts.AssertBalance(alice, 200).
		AssertStake(poolID, alice, 600).
		AssertTotalStaked(poolID, 600, alice).
		AssertBalance(custody.PoolAccount(poolID), 600)

	m, err := ts.ledger.Mint()
	require.NoError(t, err)
	assert.Equal(t, supply-200, m.Supply)
}

func TestStaker_PendingReward(t *testing.T) {
	ts := newTest(t).Fund(1_000, alice)
	poolID := ts.NewPool(2, 100)
	id := ts.Stake(alice, poolID, 1_000, nil).Account.ID()

	ts.Advance(250)
	pending, err := ts.staker.PendingReward(id, ts.now)
	require.NoError(t, err)
	assert.Equal(t, uint64(1_000*2*2), pending)

	// the query does not settle anything
	assert.Zero(t, ts.Account(poolID, alice).AccruedReward())
}

func TestStaker_InitializePoolInvalid(t *testing.T) {
	ts := newTest(t)

	ts.Try(func(s *Staker, now uint64) error {
		_, err := s.InitializePool(authority, -1, 0, now)
		return err
	}).AssertRevert(reverts.InvalidParameter)

	_, err := ts.staker.GetPool(fresa.Blake2b([]byte("missing")))
	assert.ErrorIs(t, err, reverts.ErrNotFound)
}
