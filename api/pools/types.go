// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker/pool"
)

type Pool struct {
	ID           fresa.Bytes32 `json:"id"`
	Authority    fresa.Address `json:"authority"`
	RewardRate   uint64        `json:"rewardRate"`
	LockDuration uint64        `json:"lockDuration"`
	TotalStaked  uint64        `json:"totalStaked"`
	CreatedAt    uint64        `json:"createdAt"`
	Reserve      *uint64       `json:"reserve,omitempty"` // only on single pool queries
}

func convertPool(id fresa.Bytes32, p *pool.Pool) *Pool {
	return &Pool{
		ID:           id,
		Authority:    p.Authority(),
		RewardRate:   p.RewardRate(),
		LockDuration: p.LockDuration(),
		TotalStaked:  p.TotalStaked(),
		CreatedAt:    p.CreatedAt(),
	}
}

type Reward struct {
	StakeID    fresa.Bytes32 `json:"stakeId"`
	Pending    uint64        `json:"pending"`
	Time       uint64        `json:"time"`
	UnlockTime uint64        `json:"unlockTime"`
	Unlocked   bool          `json:"unlocked"`
}
