// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package referral

import (
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker/reward"
)

// Policy routes a share of every paid reward to the referrer of the position.
type Policy struct {
	ShareBPS uint64
}

// Split is a reward divided between the staker and the referrer.
type Split struct {
	Staker   uint64
	Referrer uint64
	To       *fresa.Address // nil when there is no referral credit
}

// Split divides a paid reward. Without a referrer, the staker gets all of it.
func (p Policy) Split(paid uint64, referrer *fresa.Address) Split {
	if referrer == nil || p.ShareBPS == 0 || paid == 0 {
		return Split{Staker: paid}
	}
	share := reward.Share(paid, p.ShareBPS, fresa.BasisPoints)
	if share == 0 {
		return Split{Staker: paid}
	}
	return Split{
		Staker:   paid - share,
		Referrer: share,
		To:       referrer,
	}
}
