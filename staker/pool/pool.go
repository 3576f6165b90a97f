// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"encoding/json"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker/reward"
)

type Pool struct {
	body *body
}

type body struct {
	Authority    fresa.Address // the account allowed to fund the pool
	RewardRate   uint64        // reward units per staked unit per elapsed lock period
	LockDuration uint64        // seconds a stake is locked after its start
	TotalStaked  uint64        // sum of the amounts of all stake accounts of the pool
	CreatedAt    uint64
}

func (p *Pool) Authority() fresa.Address { return p.body.Authority }
func (p *Pool) RewardRate() uint64       { return p.body.RewardRate }
func (p *Pool) LockDuration() uint64     { return p.body.LockDuration }
func (p *Pool) TotalStaked() uint64      { return p.body.TotalStaked }
func (p *Pool) CreatedAt() uint64        { return p.body.CreatedAt }

// Terms returns the reward terms of the pool.
func (p *Pool) Terms() reward.Terms {
	return reward.Terms{Rate: p.body.RewardRate, LockDuration: p.body.LockDuration}
}

func (p *Pool) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Authority    fresa.Address `json:"authority"`
		RewardRate   uint64        `json:"rewardRate"`
		LockDuration uint64        `json:"lockDuration"`
		TotalStaked  uint64        `json:"totalStaked"`
		CreatedAt    uint64        `json:"createdAt"`
	}{
		p.body.Authority,
		p.body.RewardRate,
		p.body.LockDuration,
		p.body.TotalStaked,
		p.body.CreatedAt,
	})
}
