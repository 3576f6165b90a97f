// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"math"
	"sort"

	"github.com/pkg/errors"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/staker/reward"
	"github.com/vechain/fresa/storage"
)

const (
	// Space is the storage space of stake account records.
	Space        = "stakes"
	historySpace = "stake-history"
)

// Policy controls top-up behaviour.
type Policy struct {
	ResetStartOnTopUp bool // a top-up restarts the lock window
	LockReferrer      bool // the referrer of a live account never changes
}

// checkpoint records the principal of an account from Time on.
type checkpoint struct {
	Time   uint64
	Amount uint64
}

type Service struct {
	accounts *storage.Mapping[fresa.Bytes32, *body]
	history  *storage.Mapping[fresa.Bytes32, []checkpoint]
	strategy reward.Strategy
	policy   Policy
}

func New(sctx *storage.Context, strategy reward.Strategy, policy Policy) *Service {
	return &Service{
		accounts: storage.NewMapping[fresa.Bytes32, *body](sctx, Space),
		history:  storage.NewMapping[fresa.Bytes32, []checkpoint](sctx, historySpace),
		strategy: strategy,
		policy:   policy,
	}
}

// Get returns the account by id, nil if never opened.
func (s *Service) Get(id fresa.Bytes32) (*Account, error) {
	b, err := s.accounts.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get stake account")
	}
	if b == nil {
		return nil, nil
	}
	return &Account{b}, nil
}

// GetLive returns the account by id or a NotFound revert when absent or closed.
func (s *Service) GetLive(id fresa.Bytes32) (*Account, error) {
	acc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if acc == nil || !acc.IsLive() {
		return nil, reverts.Newf(reverts.NotFound, "stake account %v", id.AbbrevString())
	}
	return acc, nil
}

// GetClaimable returns the account by id or a NotFound revert when absent, or closed with
// nothing left to claim.
func (s *Service) GetClaimable(id fresa.Bytes32) (*Account, error) {
	acc, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if acc == nil || !acc.IsClaimable() {
		return nil, reverts.Newf(reverts.NotFound, "stake account %v", id.AbbrevString())
	}
	return acc, nil
}

// Deposit opens a position or tops up the live one. It returns the account and whether it was opened.
// Reward left unpaid by a closed position is carried into the new one.
func (s *Service) Deposit(
	poolID fresa.Bytes32,
	terms reward.Terms,
	owner fresa.Address,
	amount uint64,
	referrer *fresa.Address,
	now uint64,
) (*Account, bool, error) {
	if amount == 0 {
		return nil, false, reverts.New(reverts.InvalidParameter, "zero amount")
	}
	if referrer != nil && *referrer == owner {
		return nil, false, reverts.New(reverts.InvalidParameter, "self referral")
	}

	id := ID(poolID, owner)
	acc, err := s.Get(id)
	if err != nil {
		return nil, false, err
	}

	if acc == nil || !acc.IsLive() {
		var owed uint64
		if acc != nil {
			owed = acc.body.AccruedReward
		}
		acc = &Account{&body{
			Pool:          poolID,
			Owner:         owner,
			Amount:        amount,
			StartTime:     now,
			Referrer:      referrer,
			AccruedReward: owed,
			SettledAt:     now,
		}}
		if err := s.accounts.Upsert(id, acc.body); err != nil {
			return nil, false, errors.Wrap(err, "failed to open stake account")
		}
		if err := s.record(acc, now); err != nil {
			return nil, false, err
		}
		return acc, true, nil
	}

	if err := s.settle(acc, terms, now); err != nil {
		return nil, false, err
	}
	if amount > math.MaxUint64-acc.body.Amount {
		return nil, false, reverts.New(reverts.InvalidParameter, "stake amount overflow")
	}
	acc.body.Amount += amount
	if s.policy.ResetStartOnTopUp {
		// the whole principal starts a fresh window
		acc.body.StartTime = now
		acc.body.Maturing = 0
	} else if at := s.strategy.Activation(terms, acc.body.StartTime, now); at > now {
		// unmatured top-ups share the same next boundary
		acc.body.Maturing += amount
		acc.body.MatureAt = at
	}
	if referrer != nil && !s.policy.LockReferrer {
		acc.body.Referrer = referrer
	}
	if err := s.accounts.Update(id, acc.body); err != nil {
		return nil, false, errors.Wrap(err, "failed to top up stake account")
	}
	if err := s.record(acc, now); err != nil {
		return nil, false, err
	}
	return acc, false, nil
}

// Withdrawal is the result of taking principal or reward out of a position.
type Withdrawal struct {
	Principal uint64
	Reward    uint64 // gross reward paid, before referral split
	Deferred  uint64 // reward due but left accrued, the reserve could not cover it
	Forfeited uint64 // reward given up by an emergency withdrawal
}

// Withdraw takes amount out of the live account once unlocked, paying the proportional part of
// the accrued reward up to available. The rest of the reward stays accrued.
func (s *Service) Withdraw(acc *Account, terms reward.Terms, amount, available, now uint64) (*Withdrawal, error) {
	if err := s.checkAmount(acc, amount); err != nil {
		return nil, err
	}
	if !acc.Unlocked(terms.LockDuration, now) {
		return nil, reverts.Newf(reverts.Locked, "locked until %d", acc.UnlockTime(terms.LockDuration))
	}
	if err := s.settle(acc, terms, now); err != nil {
		return nil, err
	}

	// maturing principal has earned nothing yet, it leaves first
	fromMaturing := min(amount, acc.body.Maturing)
	due := reward.Share(acc.body.AccruedReward, amount-fromMaturing, acc.body.Amount-acc.body.Maturing)
	paid := min(due, available)
	acc.body.AccruedReward -= paid
	acc.body.Maturing -= fromMaturing
	acc.body.Amount -= amount

	if err := s.accounts.Update(acc.ID(), acc.body); err != nil {
		return nil, errors.Wrap(err, "failed to update stake account")
	}
	if err := s.record(acc, now); err != nil {
		return nil, err
	}
	return &Withdrawal{Principal: amount, Reward: paid, Deferred: due - paid}, nil
}

// Claim pays the accrued reward of an unlocked account up to available, leaving the principal staked.
func (s *Service) Claim(acc *Account, terms reward.Terms, available, now uint64) (*Withdrawal, error) {
	if !acc.Unlocked(terms.LockDuration, now) {
		return nil, reverts.Newf(reverts.Locked, "locked until %d", acc.UnlockTime(terms.LockDuration))
	}
	if err := s.settle(acc, terms, now); err != nil {
		return nil, err
	}
	due := acc.body.AccruedReward
	if due == 0 {
		return nil, reverts.New(reverts.InvalidParameter, "no reward to claim")
	}
	if available == 0 {
		return nil, reverts.Newf(reverts.InsufficientBalance, "pool reserve empty, %d due", due)
	}
	paid := min(due, available)
	acc.body.AccruedReward -= paid

	if err := s.accounts.Update(acc.ID(), acc.body); err != nil {
		return nil, errors.Wrap(err, "failed to update stake account")
	}
	return &Withdrawal{Reward: paid, Deferred: due - paid}, nil
}

// ForceWithdraw takes amount out ignoring the lock. All accrued reward is forfeited.
func (s *Service) ForceWithdraw(acc *Account, terms reward.Terms, amount uint64, now uint64) (*Withdrawal, error) {
	if err := s.checkAmount(acc, amount); err != nil {
		return nil, err
	}
	if err := s.settle(acc, terms, now); err != nil {
		return nil, err
	}

	forfeited := acc.body.AccruedReward
	acc.body.AccruedReward = 0
	acc.body.Maturing -= min(amount, acc.body.Maturing)
	acc.body.Amount -= amount

	if err := s.accounts.Update(acc.ID(), acc.body); err != nil {
		return nil, errors.Wrap(err, "failed to update stake account")
	}
	if err := s.record(acc, now); err != nil {
		return nil, err
	}
	return &Withdrawal{Principal: amount, Forfeited: forfeited}, nil
}

// Pending returns the reward the account has earned so far and not been paid, without mutating it.
func (s *Service) Pending(acc *Account, terms reward.Terms, now uint64) (uint64, error) {
	pending, _, err := s.accrue(acc, terms, now)
	return pending, err
}

// accrue returns the accrued reward at now and whether the maturing principal has started earning.
func (s *Service) accrue(acc *Account, terms reward.Terms, now uint64) (uint64, bool, error) {
	b := acc.body
	if now <= b.SettledAt {
		return b.AccruedReward, false, nil
	}
	var (
		total   = b.AccruedReward
		earning = b.Amount - b.Maturing
		from    = b.SettledAt
		matured = b.Maturing > 0 && b.MatureAt <= now
	)
	add := func(principal, to uint64) error {
		inc, err := s.strategy.Accrue(principal, terms, b.StartTime, from, to)
		if err != nil {
			return reverts.New(reverts.InvalidParameter, err.Error())
		}
		if inc > math.MaxUint64-total {
			return reverts.New(reverts.InvalidParameter, "accrued reward overflow")
		}
		total += inc
		return nil
	}
	if matured {
		if err := add(earning, b.MatureAt); err != nil {
			return 0, false, err
		}
		earning, from = b.Amount, max(from, b.MatureAt)
	}
	if err := add(earning, now); err != nil {
		return 0, false, err
	}
	return total, matured, nil
}

// AmountBefore returns the principal the account held at the end of the second before t.
func (s *Service) AmountBefore(id fresa.Bytes32, t uint64) (uint64, error) {
	cps, err := s.history.Get(id)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get stake history")
	}
	i := sort.Search(len(cps), func(i int) bool { return cps[i].Time >= t })
	if i == 0 {
		return 0, nil
	}
	return cps[i-1].Amount, nil
}

// record appends the current principal to the account history. Changes within one second collapse.
func (s *Service) record(acc *Account, now uint64) error {
	id := acc.ID()
	cps, err := s.history.Get(id)
	if err != nil {
		return errors.Wrap(err, "failed to get stake history")
	}
	if n := len(cps); n > 0 && now <= cps[n-1].Time {
		cps[n-1].Amount = acc.body.Amount
	} else {
		cps = append(cps, checkpoint{Time: now, Amount: acc.body.Amount})
	}
	if err := s.history.Upsert(id, cps); err != nil {
		return errors.Wrap(err, "failed to record stake history")
	}
	return nil
}

func (s *Service) checkAmount(acc *Account, amount uint64) error {
	if amount == 0 {
		return reverts.New(reverts.InvalidParameter, "zero amount")
	}
	if amount > acc.body.Amount {
		return reverts.Newf(reverts.InsufficientStake, "staked %d, requested %d", acc.body.Amount, amount)
	}
	return nil
}

// settle accrues the reward of the current principal up to now.
func (s *Service) settle(acc *Account, terms reward.Terms, now uint64) error {
	pending, matured, err := s.accrue(acc, terms, now)
	if err != nil {
		return err
	}
	acc.body.AccruedReward = pending
	if matured {
		acc.body.Maturing = 0
		acc.body.MatureAt = 0
	}
	if now > acc.body.SettledAt {
		acc.body.SettledAt = now
	}
	return nil
}
