// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"encoding/json"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker/reverts"
)

// Kind names an instruction.
type Kind string

const (
	KindInitializeToken Kind = "initialize-token"
	KindInitializePool  Kind = "initialize-pool"
	KindFundPool        Kind = "fund-pool"
	KindStake           Kind = "stake"
	KindWithdraw        Kind = "withdraw"
	KindForceWithdraw   Kind = "force-withdraw"
	KindClaimReward     Kind = "claim-reward"
	KindTransfer        Kind = "transfer"
	KindSubmitProposal  Kind = "submit-proposal"
	KindVote            Kind = "vote"
)

// Instruction is a request from an authenticated caller.
type Instruction struct {
	Kind    Kind            `json:"kind"`
	Caller  fresa.Address   `json:"caller"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewInstruction encodes payload into an instruction.
func NewInstruction(kind Kind, caller fresa.Address, payload any) (*Instruction, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &Instruction{Kind: kind, Caller: caller, Payload: raw}, nil
}

// Hash returns the blake2b hash of the instruction encoding.
func (in *Instruction) Hash() fresa.Bytes32 {
	return fresa.Blake2b([]byte(in.Kind), in.Caller.Bytes(), in.Payload)
}

type InitializeToken struct {
	TotalSupply uint64 `json:"totalSupply"`
}

type InitializePool struct {
	RewardRate   int64 `json:"rewardRate"`
	LockDuration int64 `json:"lockDuration"`
}

type FundPool struct {
	Pool   fresa.Bytes32 `json:"pool"`
	Amount uint64        `json:"amount"`
}

type Stake struct {
	Pool     fresa.Bytes32  `json:"pool"`
	Amount   uint64         `json:"amount"`
	Referrer *fresa.Address `json:"referrer,omitempty"`
}

// Withdraw addresses the caller's position in Pool, or the account StakeID when set.
type Withdraw struct {
	Pool    fresa.Bytes32  `json:"pool"`
	StakeID *fresa.Bytes32 `json:"stakeId,omitempty"`
	Amount  uint64         `json:"amount"`
}

// ClaimReward addresses the caller's position in Pool, or the account StakeID when set.
type ClaimReward struct {
	Pool    fresa.Bytes32  `json:"pool"`
	StakeID *fresa.Bytes32 `json:"stakeId,omitempty"`
}

type Transfer struct {
	To     fresa.Address `json:"to"`
	Amount uint64        `json:"amount"`
}

type SubmitProposal struct {
	Pool        fresa.Bytes32 `json:"pool"`
	Description string        `json:"description"`
}

type Vote struct {
	Proposal fresa.Bytes32 `json:"proposal"`
	Support  bool          `json:"support"`
}

// decodePayload unmarshals the payload of in, a malformed payload is an InvalidParameter revert.
func decodePayload[T any](in *Instruction) (*T, error) {
	var v T
	if len(in.Payload) == 0 {
		return &v, nil
	}
	if err := json.Unmarshal(in.Payload, &v); err != nil {
		return nil, reverts.Newf(reverts.InvalidParameter, "%v payload: %v", in.Kind, err)
	}
	return &v, nil
}
