// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package fresa

import (
	"fmt"
)

// BasisPoints is the denominator of every *BPS parameter.
const BasisPoints = 10_000

const (
	AccrualPeriodic = "periodic" // reward = amount * rate * whole lock periods elapsed
	AccrualLinear   = "linear"   // reward = amount * rate * elapsed / lock, pro-rata within a period
	AccrualTiered   = "tiered"   // reward = amount * tier bps * whole lock periods elapsed, boosted for old positions
)

// Tier applies RateBPS to principals strictly above Above.
type Tier struct {
	Above   uint64 `json:"above" yaml:"above"`
	RateBPS uint64 `json:"rateBPS" yaml:"rateBPS"`
}

// TieredAccrual parameterizes the tiered strategy. The pool reward rate does not apply to it.
type TieredAccrual struct {
	BaseBPS         uint64 `json:"baseBPS" yaml:"baseBPS"`                 // rate per lock period of principals in no tier
	Tiers           []Tier `json:"tiers" yaml:"tiers"`                     // ascending by Above
	BoostAfter      uint64 `json:"boostAfter" yaml:"boostAfter"`           // seconds since the lock window start
	BoostMultiplier uint64 `json:"boostMultiplier" yaml:"boostMultiplier"` // applied to periods ending after BoostAfter
}

// Config is the ledger policy. Most of the parameters have default values, custom networks
// may override them through the config file.
type Config struct {
	ReferralShareBPS    uint64 `json:"referralShareBPS" yaml:"referralShareBPS"`       // share of a paid reward routed to the referrer
	Accrual             string `json:"accrual" yaml:"accrual"`                         // reward strategy name
	ResetStartOnTopUp   bool   `json:"resetStartOnTopUp" yaml:"resetStartOnTopUp"`     // a top-up restarts the lock window
	LockReferrer        bool   `json:"lockReferrer" yaml:"lockReferrer"`               // first referrer wins
	FirstStakeBonus     uint64 `json:"firstStakeBonus" yaml:"firstStakeBonus"`         // minted to a staker on account creation, 0 disables
	EmergencyPenaltyBPS uint64 `json:"emergencyPenaltyBPS" yaml:"emergencyPenaltyBPS"` // burned on force-withdraw
	MintDecimals        uint8  `json:"mintDecimals" yaml:"mintDecimals"`

	Tiered TieredAccrual `json:"tiered" yaml:"tiered"`
}

// DefaultConfig returns the default ledger policy.
func DefaultConfig() Config {
	return Config{
		ReferralShareBPS:    500,
		Accrual:             AccrualPeriodic,
		ResetStartOnTopUp:   false,
		LockReferrer:        true,
		FirstStakeBonus:     0,
		EmergencyPenaltyBPS: 5000,
		MintDecimals:        6,
		Tiered: TieredAccrual{
			BaseBPS: 1000,
			Tiers: []Tier{
				{Above: 1_000_000000, RateBPS: 1200},
				{Above: 10_000_000000, RateBPS: 1500},
			},
			BoostAfter:      30 * 24 * 60 * 60,
			BoostMultiplier: 2,
		},
	}
}

// Validate checks the policy values.
func (c *Config) Validate() error {
	if c.ReferralShareBPS > BasisPoints {
		return fmt.Errorf("referralShareBPS %d exceeds %d", c.ReferralShareBPS, BasisPoints)
	}
	if c.EmergencyPenaltyBPS > BasisPoints {
		return fmt.Errorf("emergencyPenaltyBPS %d exceeds %d", c.EmergencyPenaltyBPS, BasisPoints)
	}
	switch c.Accrual {
	case AccrualPeriodic, AccrualLinear:
	case AccrualTiered:
		if err := c.Tiered.Validate(); err != nil {
			return fmt.Errorf("tiered: %w", err)
		}
	default:
		return fmt.Errorf("unknown accrual strategy %q", c.Accrual)
	}
	return nil
}

// Validate checks the tiers are ascending and the boost does not shrink rewards.
func (t *TieredAccrual) Validate() error {
	if t.BoostMultiplier == 0 {
		return fmt.Errorf("boostMultiplier must be at least 1")
	}
	for i, tier := range t.Tiers {
		if i > 0 && tier.Above <= t.Tiers[i-1].Above {
			return fmt.Errorf("tier %d threshold %d not above %d", i, tier.Above, t.Tiers[i-1].Above)
		}
	}
	return nil
}

// RateBPS returns the rate of the highest tier the principal is above, the base rate otherwise.
func (t *TieredAccrual) RateBPS(principal uint64) uint64 {
	rate := t.BaseBPS
	for _, tier := range t.Tiers {
		if principal > tier.Above {
			rate = tier.RateBPS
		}
	}
	return rate
}
