// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package stake

import (
	"encoding/json"

	"github.com/vechain/fresa/fresa"
)

type Account struct {
	body *body
}

type body struct {
	Pool          fresa.Bytes32
	Owner         fresa.Address
	Amount        uint64         // principal, 0 means closed
	StartTime     uint64         // start of the lock window
	Referrer      *fresa.Address `rlp:"nil"`
	AccruedReward uint64         // earned and not yet paid
	SettledAt     uint64         // reward is accrued up to this time
	Maturing      uint64         // part of Amount not earning until MatureAt
	MatureAt      uint64
}

// ID derives the account id of a (pool, owner) position.
func ID(pool fresa.Bytes32, owner fresa.Address) fresa.Bytes32 {
	return fresa.Blake2b([]byte("stake"), pool.Bytes(), owner.Bytes())
}

func (a *Account) Pool() fresa.Bytes32     { return a.body.Pool }
func (a *Account) Owner() fresa.Address    { return a.body.Owner }
func (a *Account) Amount() uint64          { return a.body.Amount }
func (a *Account) StartTime() uint64       { return a.body.StartTime }
func (a *Account) AccruedReward() uint64   { return a.body.AccruedReward }
func (a *Account) SettledAt() uint64       { return a.body.SettledAt }
func (a *Account) Maturing() uint64        { return a.body.Maturing }
func (a *Account) MatureAt() uint64        { return a.body.MatureAt }
func (a *Account) ID() fresa.Bytes32       { return ID(a.body.Pool, a.body.Owner) }
func (a *Account) IsLive() bool            { return a.body.Amount > 0 }

// IsClaimable returns whether the account is live or still owed reward after closing.
func (a *Account) IsClaimable() bool { return a.IsLive() || a.body.AccruedReward > 0 }
func (a *Account) Referrer() *fresa.Address {
	if a.body.Referrer == nil {
		return nil
	}
	r := *a.body.Referrer
	return &r
}

// Unlocked returns whether the lock window has elapsed at now.
func (a *Account) Unlocked(lockDuration, now uint64) bool {
	if now < a.body.StartTime {
		return lockDuration == 0
	}
	return now-a.body.StartTime >= lockDuration
}

// UnlockTime returns the first time a withdrawal is allowed.
func (a *Account) UnlockTime(lockDuration uint64) uint64 {
	return a.body.StartTime + lockDuration
}

func (a *Account) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID            fresa.Bytes32  `json:"id"`
		Pool          fresa.Bytes32  `json:"pool"`
		Owner         fresa.Address  `json:"owner"`
		Amount        uint64         `json:"amount"`
		StartTime     uint64         `json:"startTime"`
		Referrer      *fresa.Address `json:"referrer"`
		AccruedReward uint64         `json:"accruedReward"`
		SettledAt     uint64         `json:"settledAt"`
		Maturing      uint64         `json:"maturing,omitempty"`
		MatureAt      uint64         `json:"matureAt,omitempty"`
	}{
		a.ID(),
		a.body.Pool,
		a.body.Owner,
		a.body.Amount,
		a.body.StartTime,
		a.body.Referrer,
		a.body.AccruedReward,
		a.body.SettledAt,
		a.body.Maturing,
		a.body.MatureAt,
	})
}
