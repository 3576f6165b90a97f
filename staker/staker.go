// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package staker

import (
	"github.com/pkg/errors"

	"github.com/vechain/fresa/custody"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/log"
	"github.com/vechain/fresa/staker/pool"
	"github.com/vechain/fresa/staker/referral"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/staker/reward"
	"github.com/vechain/fresa/staker/stake"
	"github.com/vechain/fresa/storage"
)

var logger = log.WithContext("pkg", "staker")

// Staker owns pools and stake accounts and moves tokens through custody.
// Every mutating method takes the authenticated caller and is atomic: on error, nothing it
// changed remains in the state.
type Staker struct {
	sctx     *storage.Context
	custody  custody.Custody
	pools    *pool.Service
	stakes   *stake.Service
	referral referral.Policy

	firstStakeBonus     uint64
	emergencyPenaltyBPS uint64
}

// New create a new instance over the state of sctx.
func New(sctx *storage.Context, c custody.Custody, cfg fresa.Config, strategy reward.Strategy) *Staker {
	return &Staker{
		sctx:    sctx,
		custody: c,
		pools:   pool.New(sctx),
		stakes: stake.New(sctx, strategy, stake.Policy{
			ResetStartOnTopUp: cfg.ResetStartOnTopUp,
			LockReferrer:      cfg.LockReferrer,
		}),
		referral:            referral.Policy{ShareBPS: cfg.ReferralShareBPS},
		firstStakeBonus:     cfg.FirstStakeBonus,
		emergencyPenaltyBPS: cfg.EmergencyPenaltyBPS,
	}
}

// atomic runs fn inside a state checkpoint, reverting everything fn did if it fails.
func (s *Staker) atomic(fn func() error) error {
	st := s.sctx.State()
	cp := st.NewCheckpoint()
	if err := fn(); err != nil {
		st.RevertTo(cp)
		return err
	}
	return nil
}

//
// Getters - no state change
//

// GetPool returns the pool or a NotFound revert.
func (s *Staker) GetPool(id fresa.Bytes32) (*pool.Pool, error) {
	return s.pools.GetExisting(id)
}

// GetStake returns a live stake account by id.
func (s *Staker) GetStake(id fresa.Bytes32) (*stake.Account, error) {
	return s.stakes.GetLive(id)
}

// GetClaimableStake returns a live stake account, or a closed one still owed reward.
func (s *Staker) GetClaimableStake(id fresa.Bytes32) (*stake.Account, error) {
	return s.stakes.GetClaimable(id)
}

// StakeOf returns the live principal of owner in the pool, 0 if none.
func (s *Staker) StakeOf(poolID fresa.Bytes32, owner fresa.Address) (uint64, error) {
	acc, err := s.stakes.Get(stake.ID(poolID, owner))
	if err != nil || acc == nil {
		return 0, err
	}
	return acc.Amount(), nil
}

// StakeBefore returns the principal owner held in the pool at the end of the second before t.
func (s *Staker) StakeBefore(poolID fresa.Bytes32, owner fresa.Address, t uint64) (uint64, error) {
	return s.stakes.AmountBefore(stake.ID(poolID, owner), t)
}

// PendingReward returns the reward the account has earned up to now and not been paid.
func (s *Staker) PendingReward(id fresa.Bytes32, now uint64) (uint64, error) {
	acc, err := s.stakes.GetClaimable(id)
	if err != nil {
		return 0, err
	}
	p, err := s.pools.GetExisting(acc.Pool())
	if err != nil {
		return 0, err
	}
	return s.stakes.Pending(acc, p.Terms(), now)
}

// Reserve returns the pool custody balance available for rewards.
func (s *Staker) Reserve(poolID fresa.Bytes32) (uint64, error) {
	p, err := s.pools.GetExisting(poolID)
	if err != nil {
		return 0, err
	}
	return s.reserve(poolID, p)
}

func (s *Staker) reserve(poolID fresa.Bytes32, p *pool.Pool) (uint64, error) {
	bal, err := s.custody.BalanceOf(custody.PoolAccount(poolID))
	if err != nil {
		return 0, err
	}
	if bal < p.TotalStaked() {
		return 0, errors.Errorf("pool %v custody %d below total staked %d", poolID, bal, p.TotalStaked())
	}
	return bal - p.TotalStaked(), nil
}

//
// Setters - state change
//

// InitializePool creates a pool with the caller as authority.
func (s *Staker) InitializePool(caller fresa.Address, rewardRate, lockDuration int64, now uint64) (id fresa.Bytes32, err error) {
	err = s.atomic(func() error {
		id, err = s.pools.Add(caller, rewardRate, lockDuration, now)
		return err
	})
	if err != nil {
		return fresa.Bytes32{}, err
	}
	logger.Debug("pool initialized", "pool", id.AbbrevString(), "authority", caller, "rate", rewardRate, "lock", lockDuration)
	return id, nil
}

// FundPool moves tokens from the pool authority into the pool reward reserve.
func (s *Staker) FundPool(caller fresa.Address, poolID fresa.Bytes32, amount uint64) error {
	return s.atomic(func() error {
		p, err := s.pools.GetExisting(poolID)
		if err != nil {
			return err
		}
		if p.Authority() != caller {
			return reverts.New(reverts.Unauthorized, "only the pool authority can fund the pool")
		}
		if amount == 0 {
			return reverts.New(reverts.InvalidParameter, "zero amount")
		}
		return s.custody.Transfer(caller, custody.PoolAccount(poolID), amount)
	})
}

// StakeResult is the outcome of a stake.
type StakeResult struct {
	Account *stake.Account
	Opened  bool   // a new position was opened
	Bonus   uint64 // minted to the staker on opening
}

// Stake moves amount from the caller into pool custody, opening or topping up the caller's position.
func (s *Staker) Stake(caller fresa.Address, poolID fresa.Bytes32, amount uint64, referrer *fresa.Address, now uint64) (*StakeResult, error) {
	if referrer != nil && referrer.IsZero() {
		referrer = nil
	}

	var res *StakeResult
	err := s.atomic(func() error {
		p, err := s.pools.GetExisting(poolID)
		if err != nil {
			return err
		}
		acc, opened, err := s.stakes.Deposit(poolID, p.Terms(), caller, amount, referrer, now)
		if err != nil {
			return err
		}
		if err := s.custody.Transfer(caller, custody.PoolAccount(poolID), amount); err != nil {
			return err
		}
		if err := s.pools.AddStaked(poolID, p, amount); err != nil {
			return err
		}

		res = &StakeResult{Account: acc, Opened: opened}
		if opened && s.firstStakeBonus > 0 {
			if err := s.custody.MintTo(caller, s.firstStakeBonus); err != nil {
				return err
			}
			res.Bonus = s.firstStakeBonus
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("staked", "pool", poolID.AbbrevString(), "owner", caller, "amount", amount, "opened", res.Opened)
	return res, nil
}

// Target selects a stake account: by id, or the caller's position in a pool.
type Target struct {
	Pool    fresa.Bytes32
	StakeID *fresa.Bytes32
}

// WithdrawResult is the outcome of a withdrawal.
type WithdrawResult struct {
	Account   *stake.Account
	Principal uint64
	Reward    uint64         // gross reward for the withdrawn portion
	Paid      uint64         // reward paid to the owner
	Deferred  uint64         // reward left accrued, the reserve could not cover it
	Referral  uint64         // reward paid to the referrer
	Referrer  *fresa.Address // set when Referral > 0
	Penalty   uint64         // burned by an emergency withdrawal
	Forfeited uint64         // reward given up by an emergency withdrawal
}

// Withdraw returns amount of principal plus its share of the accrued reward to the owner once the
// lock window has elapsed. The referrer, if any, receives its share of the reward. The principal
// is always returned. Reward above the pool reserve stays accrued and can be claimed once the
// pool is funded again.
func (s *Staker) Withdraw(caller fresa.Address, target Target, amount uint64, now uint64) (*WithdrawResult, error) {
	var res *WithdrawResult
	err := s.atomic(func() error {
		acc, err := s.resolve(caller, target, s.stakes.GetLive)
		if err != nil {
			return err
		}
		p, err := s.pools.GetExisting(acc.Pool())
		if err != nil {
			return err
		}
		reserve, err := s.reserve(acc.Pool(), p)
		if err != nil {
			return err
		}

		w, err := s.stakes.Withdraw(acc, p.Terms(), amount, reserve, now)
		if err != nil {
			return err
		}
		if err := s.pools.SubStaked(acc.Pool(), p, amount); err != nil {
			return err
		}
		res, err = s.payout(caller, acc, w)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("withdrawn", "stake", res.Account.ID().AbbrevString(), "principal", res.Principal, "reward", res.Reward, "deferred", res.Deferred)
	return res, nil
}

// ClaimReward pays the accrued reward of an unlocked position without touching its principal.
// Positions closed while the reserve was short stay claimable until fully paid.
func (s *Staker) ClaimReward(caller fresa.Address, target Target, now uint64) (*WithdrawResult, error) {
	var res *WithdrawResult
	err := s.atomic(func() error {
		acc, err := s.resolve(caller, target, s.stakes.GetClaimable)
		if err != nil {
			return err
		}
		p, err := s.pools.GetExisting(acc.Pool())
		if err != nil {
			return err
		}
		reserve, err := s.reserve(acc.Pool(), p)
		if err != nil {
			return err
		}
		w, err := s.stakes.Claim(acc, p.Terms(), reserve, now)
		if err != nil {
			return err
		}
		res, err = s.payout(caller, acc, w)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("reward claimed", "stake", res.Account.ID().AbbrevString(), "reward", res.Reward, "deferred", res.Deferred)
	return res, nil
}

// payout moves the withdrawn principal and the referral split of the reward out of pool custody.
func (s *Staker) payout(caller fresa.Address, acc *stake.Account, w *stake.Withdrawal) (*WithdrawResult, error) {
	split := s.referral.Split(w.Reward, acc.Referrer())
	poolAccount := custody.PoolAccount(acc.Pool())
	if err := s.custody.Transfer(poolAccount, caller, w.Principal+split.Staker); err != nil {
		return nil, err
	}
	if split.To != nil {
		if err := s.custody.Transfer(poolAccount, *split.To, split.Referrer); err != nil {
			return nil, err
		}
	}
	return &WithdrawResult{
		Account:   acc,
		Principal: w.Principal,
		Reward:    w.Reward,
		Paid:      split.Staker,
		Deferred:  w.Deferred,
		Referral:  split.Referrer,
		Referrer:  split.To,
	}, nil
}

// ForceWithdraw returns principal before the lock window has elapsed. The accrued reward of the
// position is forfeited and a penalty on the principal is burned.
func (s *Staker) ForceWithdraw(caller fresa.Address, target Target, amount uint64, now uint64) (*WithdrawResult, error) {
	var res *WithdrawResult
	err := s.atomic(func() error {
		acc, err := s.resolve(caller, target, s.stakes.GetLive)
		if err != nil {
			return err
		}
		p, err := s.pools.GetExisting(acc.Pool())
		if err != nil {
			return err
		}
		w, err := s.stakes.ForceWithdraw(acc, p.Terms(), amount, now)
		if err != nil {
			return err
		}
		if err := s.pools.SubStaked(acc.Pool(), p, amount); err != nil {
			return err
		}

		penalty := reward.Share(amount, s.emergencyPenaltyBPS, fresa.BasisPoints)
		poolAccount := custody.PoolAccount(acc.Pool())
		if err := s.custody.Transfer(poolAccount, caller, amount-penalty); err != nil {
			return err
		}
		if err := s.custody.Burn(poolAccount, penalty); err != nil {
			return err
		}

		res = &WithdrawResult{
			Account:   acc,
			Principal: amount - penalty,
			Penalty:   penalty,
			Forfeited: w.Forfeited,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("emergency withdrawal", "stake", res.Account.ID().AbbrevString(), "principal", res.Principal, "penalty", res.Penalty)
	return res, nil
}

// resolve loads the account addressed by target with get and checks the caller owns it.
func (s *Staker) resolve(caller fresa.Address, target Target, get func(fresa.Bytes32) (*stake.Account, error)) (*stake.Account, error) {
	if target.StakeID == nil {
		return get(stake.ID(target.Pool, caller))
	}
	acc, err := get(*target.StakeID)
	if err != nil {
		return nil, err
	}
	if !target.Pool.IsZero() && acc.Pool() != target.Pool {
		return nil, reverts.New(reverts.InvalidParameter, "stake account belongs to another pool")
	}
	if acc.Owner() != caller {
		return nil, reverts.New(reverts.Unauthorized, "caller does not own the stake account")
	}
	return acc, nil
}

// Exists returns whether the pool exists.
func (s *Staker) Exists(poolID fresa.Bytes32) (bool, error) {
	p, err := s.pools.Get(poolID)
	if err != nil {
		return false, err
	}
	return p != nil, nil
}
