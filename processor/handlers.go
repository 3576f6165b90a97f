// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"github.com/vechain/fresa/custody"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/staker/stake"
)

const mintKey = "mint"

func acctKey(addr fresa.Address) string { return "acct/" + addr.String() }
func poolKey(id fresa.Bytes32) string   { return "pool/" + id.String() }
func proposalKey(id fresa.Bytes32) string {
	return "proposal/" + id.String()
}

// poolKeys covers the pool record, its stake accounts and its custody balance.
func poolKeys(id fresa.Bytes32) []string {
	return []string{poolKey(id), acctKey(custody.PoolAccount(id))}
}

// handler executes one kind of instruction.
// locks returns the keys guarding every record handle may write, computed against env.
type handler interface {
	locks(env *Env, in *Instruction) ([]string, error)
	handle(env *Env, in *Instruction) (any, error)
}

type typedHandler[T any] struct {
	lockFn   func(env *Env, caller fresa.Address, p *T) ([]string, error)
	handleFn func(env *Env, caller fresa.Address, p *T) (any, error)
}

func (h typedHandler[T]) locks(env *Env, in *Instruction) ([]string, error) {
	p, err := decodePayload[T](in)
	if err != nil {
		return nil, err
	}
	return h.lockFn(env, in.Caller, p)
}

func (h typedHandler[T]) handle(env *Env, in *Instruction) (any, error) {
	p, err := decodePayload[T](in)
	if err != nil {
		return nil, err
	}
	return h.handleFn(env, in.Caller, p)
}

var handlers = map[Kind]handler{
	KindInitializeToken: typedHandler[InitializeToken]{lockInitializeToken, handleInitializeToken},
	KindInitializePool:  typedHandler[InitializePool]{lockCaller[InitializePool], handleInitializePool},
	KindFundPool:        typedHandler[FundPool]{lockFundPool, handleFundPool},
	KindStake:           typedHandler[Stake]{lockStake, handleStake},
	KindWithdraw:        typedHandler[Withdraw]{lockWithdraw, handleWithdraw},
	KindForceWithdraw:   typedHandler[Withdraw]{lockForceWithdraw, handleForceWithdraw},
	KindClaimReward:     typedHandler[ClaimReward]{lockClaimReward, handleClaimReward},
	KindTransfer:        typedHandler[Transfer]{lockTransfer, handleTransfer},
	KindSubmitProposal:  typedHandler[SubmitProposal]{lockCaller[SubmitProposal], handleSubmitProposal},
	KindVote:            typedHandler[Vote]{lockVote, handleVote},
}

// Outputs.
type (
	PoolOutput struct {
		Pool fresa.Bytes32 `json:"pool"`
	}
	FundOutput struct {
		Reserve uint64 `json:"reserve"`
	}
	StakeOutput struct {
		StakeID fresa.Bytes32 `json:"stakeId"`
		Amount  uint64        `json:"amount"`
		Opened  bool          `json:"opened"`
		Bonus   uint64        `json:"bonus"`
	}
	WithdrawOutput struct {
		StakeID   fresa.Bytes32 `json:"stakeId"`
		Principal uint64        `json:"principal"`
		Reward    uint64        `json:"reward"`
		Paid      uint64        `json:"paid"`
		Deferred  uint64        `json:"deferred"`
		Referral  uint64        `json:"referral"`
		Penalty   uint64        `json:"penalty"`
		Forfeited uint64        `json:"forfeited"`
		Remaining uint64        `json:"remaining"`
	}
	ProposalOutput struct {
		Proposal fresa.Bytes32 `json:"proposal"`
	}
	VoteOutput struct {
		Weight uint64 `json:"weight"`
	}
)

func lockCaller[T any](_ *Env, caller fresa.Address, _ *T) ([]string, error) {
	return []string{acctKey(caller)}, nil
}

func lockInitializeToken(_ *Env, caller fresa.Address, _ *InitializeToken) ([]string, error) {
	return []string{mintKey, acctKey(caller)}, nil
}

func handleInitializeToken(env *Env, caller fresa.Address, p *InitializeToken) (any, error) {
	m, err := env.ledger.InitializeMint(caller, p.TotalSupply, env.cfg.MintDecimals, env.now)
	if err != nil {
		return nil, err
	}
	env.emit(EventTokenInitialized, m.ID, caller, p.TotalSupply)
	return m, nil
}

func handleInitializePool(env *Env, caller fresa.Address, p *InitializePool) (any, error) {
	id, err := env.staker.InitializePool(caller, p.RewardRate, p.LockDuration, env.now)
	if err != nil {
		return nil, err
	}
	env.emit(EventPoolInitialized, id, caller, 0)
	return &PoolOutput{Pool: id}, nil
}

func lockFundPool(_ *Env, caller fresa.Address, p *FundPool) ([]string, error) {
	return append(poolKeys(p.Pool), acctKey(caller)), nil
}

func handleFundPool(env *Env, caller fresa.Address, p *FundPool) (any, error) {
	if err := env.staker.FundPool(caller, p.Pool, p.Amount); err != nil {
		return nil, err
	}
	reserve, err := env.staker.Reserve(p.Pool)
	if err != nil {
		return nil, err
	}
	env.emit(EventPoolFunded, p.Pool, caller, p.Amount)
	return &FundOutput{Reserve: reserve}, nil
}

func lockStake(env *Env, caller fresa.Address, p *Stake) ([]string, error) {
	keys := append(poolKeys(p.Pool), acctKey(caller))
	if env.cfg.FirstStakeBonus > 0 {
		keys = append(keys, mintKey)
	}
	return keys, nil
}

func handleStake(env *Env, caller fresa.Address, p *Stake) (any, error) {
	res, err := env.staker.Stake(caller, p.Pool, p.Amount, p.Referrer, env.now)
	if err != nil {
		return nil, err
	}
	env.touch(p.Pool)
	env.emit(EventStaked, p.Pool, caller, p.Amount)
	if res.Bonus > 0 {
		env.emit(EventStakeBonus, p.Pool, caller, res.Bonus)
	}
	return &StakeOutput{
		StakeID: res.Account.ID(),
		Amount:  res.Account.Amount(),
		Opened:  res.Opened,
		Bonus:   res.Bonus,
	}, nil
}

// lockWithdraw resolves the target account to lock its pool and its referrer.
// An unresolvable target locks only the caller and the named pool, handle reverts on it.
func lockWithdraw(env *Env, caller fresa.Address, p *Withdraw) ([]string, error) {
	return lockStakeAccount(env, caller, p.Pool, p.StakeID, env.staker.GetStake)
}

func lockStakeAccount(
	env *Env,
	caller fresa.Address,
	poolID fresa.Bytes32,
	stakeID *fresa.Bytes32,
	get func(fresa.Bytes32) (*stake.Account, error),
) ([]string, error) {
	id := stake.ID(poolID, caller)
	if stakeID != nil {
		id = *stakeID
	}
	keys := []string{acctKey(caller)}
	acc, err := get(id)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return append(keys, poolKeys(poolID)...), nil
		}
		return nil, err
	}
	keys = append(keys, poolKeys(acc.Pool())...)
	if ref := acc.Referrer(); ref != nil {
		keys = append(keys, acctKey(*ref))
	}
	return keys, nil
}

func handleWithdraw(env *Env, caller fresa.Address, p *Withdraw) (any, error) {
	res, err := env.staker.Withdraw(caller, staker.Target{Pool: p.Pool, StakeID: p.StakeID}, p.Amount, env.now)
	if err != nil {
		return nil, err
	}
	poolID := res.Account.Pool()
	env.touch(poolID)
	env.emit(EventWithdrawn, poolID, caller, res.Principal)
	emitReward(env, caller, res)
	return withdrawOutput(res), nil
}

// lockClaimReward also resolves positions closed with reward still owed.
func lockClaimReward(env *Env, caller fresa.Address, p *ClaimReward) ([]string, error) {
	return lockStakeAccount(env, caller, p.Pool, p.StakeID, env.staker.GetClaimableStake)
}

func handleClaimReward(env *Env, caller fresa.Address, p *ClaimReward) (any, error) {
	res, err := env.staker.ClaimReward(caller, staker.Target{Pool: p.Pool, StakeID: p.StakeID}, env.now)
	if err != nil {
		return nil, err
	}
	env.touch(res.Account.Pool())
	emitReward(env, caller, res)
	return withdrawOutput(res), nil
}

func emitReward(env *Env, caller fresa.Address, res *staker.WithdrawResult) {
	poolID := res.Account.Pool()
	if res.Paid > 0 {
		env.emit(EventRewardPaid, poolID, caller, res.Paid)
	}
	if res.Referral > 0 {
		env.emit(EventReferralPaid, poolID, *res.Referrer, res.Referral)
	}
	if res.Deferred > 0 {
		env.emit(EventRewardDeferred, poolID, caller, res.Deferred)
	}
}

// lockForceWithdraw adds the mint, the penalty burn changes its supply.
func lockForceWithdraw(env *Env, caller fresa.Address, p *Withdraw) ([]string, error) {
	keys, err := lockWithdraw(env, caller, p)
	if err != nil {
		return nil, err
	}
	return append(keys, mintKey), nil
}

func handleForceWithdraw(env *Env, caller fresa.Address, p *Withdraw) (any, error) {
	res, err := env.staker.ForceWithdraw(caller, staker.Target{Pool: p.Pool, StakeID: p.StakeID}, p.Amount, env.now)
	if err != nil {
		return nil, err
	}
	poolID := res.Account.Pool()
	env.touch(poolID)
	env.emit(EventForceWithdrawn, poolID, caller, res.Principal)
	if res.Penalty > 0 {
		env.emit(EventPenaltyBurned, poolID, caller, res.Penalty)
	}
	return withdrawOutput(res), nil
}

func withdrawOutput(res *staker.WithdrawResult) *WithdrawOutput {
	return &WithdrawOutput{
		StakeID:   res.Account.ID(),
		Principal: res.Principal,
		Reward:    res.Reward,
		Paid:      res.Paid,
		Deferred:  res.Deferred,
		Referral:  res.Referral,
		Penalty:   res.Penalty,
		Forfeited: res.Forfeited,
		Remaining: res.Account.Amount(),
	}
}

func lockTransfer(_ *Env, caller fresa.Address, p *Transfer) ([]string, error) {
	return []string{acctKey(caller), acctKey(p.To)}, nil
}

func handleTransfer(env *Env, caller fresa.Address, p *Transfer) (any, error) {
	if p.Amount == 0 {
		return nil, reverts.New(reverts.InvalidParameter, "zero amount")
	}
	if err := env.ledger.Transfer(caller, p.To, p.Amount); err != nil {
		return nil, err
	}
	return nil, nil
}

func handleSubmitProposal(env *Env, caller fresa.Address, p *SubmitProposal) (any, error) {
	id, err := env.governance.Submit(caller, p.Pool, p.Description, env.now)
	if err != nil {
		return nil, err
	}
	env.emit(EventProposalSubmitted, id, caller, 0)
	return &ProposalOutput{Proposal: id}, nil
}

func lockVote(env *Env, _ fresa.Address, p *Vote) ([]string, error) {
	keys := []string{proposalKey(p.Proposal)}
	prop, err := env.governance.Get(p.Proposal)
	if err != nil {
		if reverts.IsRevertErr(err) {
			return keys, nil
		}
		return nil, err
	}
	return append(keys, poolKey(prop.Pool)), nil
}

func handleVote(env *Env, caller fresa.Address, p *Vote) (any, error) {
	weight, err := env.governance.Vote(caller, p.Proposal, p.Support)
	if err != nil {
		return nil, err
	}
	env.emit(EventVoted, p.Proposal, caller, weight)
	return &VoteOutput{Weight: weight}, nil
}
