// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vechain/fresa/custody"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/lvldb"
	"github.com/vechain/fresa/staker/stake"
	"github.com/vechain/fresa/state"
)

const week = uint64(604800)

var (
	authority = fresa.BytesToAddress([]byte("authority"))
	alice     = fresa.BytesToAddress([]byte("alice"))
	bob       = fresa.BytesToAddress([]byte("bob"))
)

type memSink struct {
	mu       sync.Mutex
	receipts []*Receipt
}

func (s *memSink) Write(r *Receipt) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.receipts = append(s.receipts, r)
	return nil
}

func (s *memSink) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.receipts)
}

type testProcessor struct {
	t    *testing.T
	p    *Processor
	sink *memSink
	now  atomic.Uint64
}

func newTestProcessor(t *testing.T, modify ...func(*fresa.Config)) *testProcessor {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := fresa.DefaultConfig()
	for _, m := range modify {
		m(&cfg)
	}
	tp := &testProcessor{t: t, sink: &memSink{}}
	tp.now.Store(1_700_000_000)
	tp.p, err = New(state.NewStater(db, 128), cfg, WithClock(tp.now.Load), WithSink(tp.sink))
	require.NoError(t, err)
	return tp
}

func (tp *testProcessor) exec(kind Kind, caller fresa.Address, payload any) *Receipt {
	in, err := NewInstruction(kind, caller, payload)
	require.NoError(tp.t, err)
	r, err := tp.p.Execute(context.Background(), in)
	require.NoError(tp.t, err)
	return r
}

func (tp *testProcessor) mustExec(kind Kind, caller fresa.Address, payload any) *Receipt {
	r := tp.exec(kind, caller, payload)
	require.False(tp.t, r.Reverted, "%v reverted: %v", kind, r.Error)
	return r
}

// setup creates the token, a funded pool and gives each holder some tokens.
func (tp *testProcessor) setup(rate, lock int64, reserve uint64, holders ...fresa.Address) fresa.Bytes32 {
	tp.mustExec(KindInitializeToken, authority, &InitializeToken{TotalSupply: 1_000_000_000_000000})
	poolID := tp.mustExec(KindInitializePool, authority, &InitializePool{RewardRate: rate, LockDuration: lock}).Output.(*PoolOutput).Pool
	if reserve > 0 {
		tp.mustExec(KindFundPool, authority, &FundPool{Pool: poolID, Amount: reserve})
	}
	for _, h := range holders {
		tp.mustExec(KindTransfer, authority, &Transfer{To: h, Amount: 1_000_000000})
	}
	return poolID
}

func (tp *testProcessor) balance(addr fresa.Address) (bal uint64) {
	require.NoError(tp.t, tp.p.View(func(env *Env) (err error) {
		bal, err = env.Ledger().BalanceOf(addr)
		return
	}))
	return
}

func (tp *testProcessor) totalStaked(poolID fresa.Bytes32) (total uint64) {
	require.NoError(tp.t, tp.p.View(func(env *Env) error {
		p, err := env.Staker().GetPool(poolID)
		if err != nil {
			return err
		}
		total = p.TotalStaked()
		return nil
	}))
	return
}

func TestExecuteEndToEnd(t *testing.T) {
	tp := newTestProcessor(t)
	poolID := tp.setup(10, int64(week), 10_000_000000, alice)

	r := tp.mustExec(KindStake, alice, &Stake{Pool: poolID, Amount: 500_000000})
	out := r.Output.(*StakeOutput)
	assert.True(t, out.Opened)
	assert.Equal(t, stake.ID(poolID, alice), out.StakeID)
	assert.Equal(t, []custody.Transfer{{From: alice, To: custody.PoolAccount(poolID), Amount: 500_000000}}, r.Transfers)
	require.Len(t, r.Events, 1)
	assert.Equal(t, EventStaked, r.Events[0].Name)

	r = tp.exec(KindWithdraw, alice, &Withdraw{Pool: poolID, Amount: 500_000000})
	assert.True(t, r.Reverted)
	assert.Equal(t, "Locked", r.ErrorKind)

	tp.now.Add(week)
	r = tp.mustExec(KindWithdraw, alice, &Withdraw{Pool: poolID, Amount: 250_000000})
	w := r.Output.(*WithdrawOutput)
	assert.Equal(t, uint64(250_000000), w.Principal)
	assert.Equal(t, uint64(250_000000*10), w.Reward)
	assert.Equal(t, uint64(250_000000), w.Remaining)
	assert.Equal(t, uint64(250_000000), tp.totalStaked(poolID))
	assert.Equal(t, uint64(1_000_000000-250_000000+250_000000*10), tp.balance(alice))
}

func TestRevertedInstructionLeavesNoTrace(t *testing.T) {
	tp := newTestProcessor(t)
	poolID := tp.setup(10, int64(week), 0, alice)
	committed := tp.sink.Len()

	r := tp.exec(KindStake, alice, &Stake{Pool: poolID, Amount: 2_000_000000})
	assert.True(t, r.Reverted)
	assert.Equal(t, "InsufficientBalance", r.ErrorKind)
	assert.Empty(t, r.Events)
	assert.Empty(t, r.Transfers)

	assert.Equal(t, committed, tp.sink.Len())
	assert.Equal(t, uint64(1_000_000000), tp.balance(alice))
	assert.Zero(t, tp.totalStaked(poolID))
	require.NoError(t, tp.p.View(func(env *Env) error {
		_, err := env.Staker().GetStake(stake.ID(poolID, alice))
		assert.Error(t, err)
		return nil
	}))
}

func TestExecuteInvalidInstruction(t *testing.T) {
	tp := newTestProcessor(t)

	r, err := tp.p.Execute(context.Background(), &Instruction{Kind: "lottery", Caller: alice})
	require.NoError(t, err)
	assert.True(t, r.Reverted)
	assert.Equal(t, "InvalidParameter", r.ErrorKind)

	r, err = tp.p.Execute(context.Background(), &Instruction{Kind: KindStake, Caller: alice, Payload: []byte(`{"amount":"x"}`)})
	require.NoError(t, err)
	assert.True(t, r.Reverted)
	assert.Equal(t, "InvalidParameter", r.ErrorKind)

	r = tp.exec(KindInitializeToken, alice, &InitializeToken{TotalSupply: 1})
	assert.False(t, r.Reverted)
	r = tp.exec(KindInitializeToken, bob, &InitializeToken{TotalSupply: 1})
	assert.True(t, r.Reverted)
	assert.Equal(t, "InvalidParameter", r.ErrorKind)
}

func TestExecuteCanceled(t *testing.T) {
	tp := newTestProcessor(t)
	release, err := tp.p.locks.Acquire(context.Background(), []string{acctKey(alice)})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in, err := NewInstruction(KindInitializePool, alice, &InitializePool{RewardRate: 1, LockDuration: 1})
	require.NoError(t, err)
	_, err = tp.p.Execute(ctx, in)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestConcurrentStakes(t *testing.T) {
	tp := newTestProcessor(t)
	poolA := tp.setup(1, 100, 0, alice, bob)
	poolB := tp.mustExec(KindInitializePool, bob, &InitializePool{RewardRate: 1, LockDuration: 100}).Output.(*PoolOutput).Pool

	var ins []*Instruction
	for i := range 20 {
		a, err := NewInstruction(KindStake, alice, &Stake{Pool: poolA, Amount: uint64(i + 1)})
		require.NoError(t, err)
		b, err := NewInstruction(KindStake, bob, &Stake{Pool: poolB, Amount: uint64(i + 1)})
		require.NoError(t, err)
		ins = append(ins, a, b)
	}
	receipts, err := tp.p.ExecuteBatch(context.Background(), ins)
	require.NoError(t, err)
	for i, r := range receipts {
		assert.False(t, r.Reverted, "receipt %d: %s", i, r.Error)
		assert.Equal(t, ins[i].Kind, r.Kind)
	}

	assert.Equal(t, uint64(210), tp.totalStaked(poolA))
	assert.Equal(t, uint64(210), tp.totalStaked(poolB))
	assert.Equal(t, uint64(1_000_000000-210), tp.balance(alice))
	assert.Equal(t, uint64(1_000_000000-210), tp.balance(bob))
}

func TestConcurrentStakesSamePool(t *testing.T) {
	tp := newTestProcessor(t)
	var owners []fresa.Address
	for i := range 16 {
		owners = append(owners, fresa.BytesToAddress(fmt.Appendf(nil, "owner-%d", i)))
	}
	poolID := tp.setup(1, 100, 0, owners...)

	var wg sync.WaitGroup
	for _, o := range owners {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 5 {
				r := tp.exec(KindStake, o, &Stake{Pool: poolID, Amount: 10})
				assert.False(t, r.Reverted, r.Error)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(16*5*10), tp.totalStaked(poolID))
	assert.Equal(t, uint64(16*5*10), tp.balance(custody.PoolAccount(poolID)))
}

func TestReferralAndGovernance(t *testing.T) {
	tp := newTestProcessor(t)
	poolID := tp.setup(10, int64(week), 10_000_000000, alice, bob)

	tp.mustExec(KindStake, alice, &Stake{Pool: poolID, Amount: 100_000000, Referrer: &bob})
	tp.mustExec(KindStake, bob, &Stake{Pool: poolID, Amount: 50_000000})

	tp.now.Add(1)
	prop := tp.mustExec(KindSubmitProposal, alice, &SubmitProposal{Pool: poolID, Description: "double the rate"}).Output.(*ProposalOutput).Proposal
	assert.Equal(t, uint64(100_000000), tp.mustExec(KindVote, alice, &Vote{Proposal: prop, Support: true}).Output.(*VoteOutput).Weight)
	tp.mustExec(KindVote, bob, &Vote{Proposal: prop, Support: false})
	r := tp.exec(KindVote, bob, &Vote{Proposal: prop, Support: false})
	assert.True(t, r.Reverted)

	tp.now.Add(week)
	bobBefore := tp.balance(bob)
	r = tp.mustExec(KindWithdraw, alice, &Withdraw{Pool: poolID, Amount: 100_000000})
	w := r.Output.(*WithdrawOutput)
	assert.Equal(t, uint64(1_000_000000), w.Reward)
	assert.Equal(t, uint64(50_000000), w.Referral)
	assert.Equal(t, uint64(950_000000), w.Paid)
	assert.Equal(t, bobBefore+50_000000, tp.balance(bob))

	names := make([]string, 0, len(r.Events))
	for _, ev := range r.Events {
		names = append(names, ev.Name)
	}
	assert.Equal(t, []string{EventWithdrawn, EventRewardPaid, EventReferralPaid}, names)
}

func TestForceWithdraw(t *testing.T) {
	tp := newTestProcessor(t)
	poolID := tp.setup(10, int64(week), 0, alice)
	tp.mustExec(KindStake, alice, &Stake{Pool: poolID, Amount: 1000})

	r := tp.mustExec(KindForceWithdraw, alice, &Withdraw{Pool: poolID, Amount: 1000})
	w := r.Output.(*WithdrawOutput)
	assert.Equal(t, uint64(500), w.Penalty)
	assert.Equal(t, uint64(500), w.Principal)
	assert.Zero(t, tp.totalStaked(poolID))
	assert.Equal(t, uint64(1_000_000000-500), tp.balance(alice))
}

func TestWithdrawFromUnfundedPoolDefersReward(t *testing.T) {
	tp := newTestProcessor(t)
	poolID := tp.setup(10, int64(week), 0, alice)
	tp.mustExec(KindStake, alice, &Stake{Pool: poolID, Amount: 500_000000})

	tp.now.Add(week)
	r := tp.mustExec(KindWithdraw, alice, &Withdraw{Pool: poolID, Amount: 250_000000})
	w := r.Output.(*WithdrawOutput)
	assert.Equal(t, uint64(250_000000), w.Principal)
	assert.Zero(t, w.Reward)
	assert.Equal(t, uint64(250_000000*10), w.Deferred)
	assert.Equal(t, uint64(1_000_000000-250_000000), tp.balance(alice))
	require.Len(t, r.Events, 2)
	assert.Equal(t, EventRewardDeferred, r.Events[1].Name)

	r = tp.exec(KindClaimReward, alice, &ClaimReward{Pool: poolID})
	assert.True(t, r.Reverted)
	assert.Equal(t, "InsufficientBalance", r.ErrorKind)

	tp.mustExec(KindFundPool, authority, &FundPool{Pool: poolID, Amount: 10_000_000000})
	r = tp.mustExec(KindClaimReward, alice, &ClaimReward{Pool: poolID})
	w = r.Output.(*WithdrawOutput)
	assert.Equal(t, uint64(500_000000*10), w.Reward)
	assert.Zero(t, w.Principal)
	assert.Equal(t, uint64(250_000000), w.Remaining)
	assert.Equal(t, uint64(250_000000), tp.totalStaked(poolID))
	assert.Equal(t, uint64(1_000_000000-250_000000+500_000000*10), tp.balance(alice))
}

func TestClaimAfterClose(t *testing.T) {
	tp := newTestProcessor(t)
	poolID := tp.setup(1, 100, 0, alice)
	tp.mustExec(KindStake, alice, &Stake{Pool: poolID, Amount: 1_000})

	tp.now.Add(100)
	tp.mustExec(KindWithdraw, alice, &Withdraw{Pool: poolID, Amount: 1_000})
	tp.mustExec(KindFundPool, authority, &FundPool{Pool: poolID, Amount: 400})

	id := stake.ID(poolID, alice)
	w := tp.mustExec(KindClaimReward, alice, &ClaimReward{StakeID: &id}).Output.(*WithdrawOutput)
	assert.Equal(t, uint64(400), w.Reward)
	assert.Equal(t, uint64(600), w.Deferred)

	r := tp.exec(KindClaimReward, bob, &ClaimReward{StakeID: &id})
	assert.Equal(t, "Unauthorized", r.ErrorKind)
}

func TestVoteTokensOnlyOnce(t *testing.T) {
	tp := newTestProcessor(t)
	poolID := tp.setup(0, 0, 0, alice)
	tp.mustExec(KindStake, alice, &Stake{Pool: poolID, Amount: 100})

	tp.now.Add(1)
	prop := tp.mustExec(KindSubmitProposal, alice, &SubmitProposal{Pool: poolID, Description: "x"}).Output.(*ProposalOutput).Proposal
	tp.mustExec(KindVote, alice, &Vote{Proposal: prop, Support: true})

	// the same tokens move to bob and are staked again
	tp.mustExec(KindWithdraw, alice, &Withdraw{Pool: poolID, Amount: 100})
	tp.mustExec(KindTransfer, alice, &Transfer{To: bob, Amount: 100})
	tp.mustExec(KindStake, bob, &Stake{Pool: poolID, Amount: 100})

	r := tp.exec(KindVote, bob, &Vote{Proposal: prop, Support: true})
	assert.True(t, r.Reverted)
	assert.Equal(t, "InvalidParameter", r.ErrorKind)

	require.NoError(t, tp.p.View(func(env *Env) error {
		p, err := env.Governance().Get(prop)
		require.NoError(t, err)
		assert.Equal(t, uint64(100), p.VotesFor)
		assert.Equal(t, uint64(1), p.Voters)
		return nil
	}))
}
