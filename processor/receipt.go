// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"github.com/vechain/fresa/custody"
	"github.com/vechain/fresa/fresa"
)

// Event names.
const (
	EventTokenInitialized  = "TokenInitialized"
	EventPoolInitialized   = "PoolInitialized"
	EventPoolFunded        = "PoolFunded"
	EventStaked            = "Staked"
	EventStakeBonus        = "StakeBonus"
	EventWithdrawn         = "Withdrawn"
	EventRewardPaid        = "RewardPaid"
	EventRewardDeferred    = "RewardDeferred"
	EventReferralPaid      = "ReferralPaid"
	EventForceWithdrawn    = "ForceWithdrawn"
	EventPenaltyBurned     = "PenaltyBurned"
	EventProposalSubmitted = "ProposalSubmitted"
	EventVoted             = "Voted"
)

// Event is a fact emitted by a committed instruction.
// Subject is the mint, pool or proposal the event is about.
type Event struct {
	Name    string        `json:"name"`
	Subject fresa.Bytes32 `json:"subject"`
	Account fresa.Address `json:"account"`
	Amount  uint64        `json:"amount"`
}

// Receipt is the outcome of an instruction.
// A reverted receipt carries the revert and no effects.
type Receipt struct {
	ID        fresa.Bytes32      `json:"id"`
	Kind      Kind               `json:"kind"`
	Caller    fresa.Address      `json:"caller"`
	Time      uint64             `json:"time"`
	Reverted  bool               `json:"reverted"`
	Error     string             `json:"error,omitempty"`
	ErrorKind string             `json:"errorKind,omitempty"`
	Output    any                `json:"output,omitempty"`
	Events    []*Event           `json:"events"`
	Transfers []custody.Transfer `json:"transfers"`
}
