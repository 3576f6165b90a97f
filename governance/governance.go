// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package governance runs stake weighted votes on pool proposals.
package governance

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/log"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/storage"
)

const (
	spaceProposals = "proposals"
	spaceVotes     = "votes"
	spaceNonce     = "proposal-nonce"

	MaxDescriptionLength = 256
)

var logger = log.WithContext("pkg", "governance")

// Stakes provides vote weights and pool existence.
type Stakes interface {
	StakeBefore(poolID fresa.Bytes32, owner fresa.Address, t uint64) (uint64, error)
	Exists(poolID fresa.Bytes32) (bool, error)
}

type Proposal struct {
	Pool         fresa.Bytes32 `json:"pool"`
	Proposer     fresa.Address `json:"proposer"`
	Description  string        `json:"description"`
	VotesFor     uint64        `json:"votesFor"`
	VotesAgainst uint64        `json:"votesAgainst"`
	Voters       uint64        `json:"voters"`
	CreatedAt    uint64        `json:"createdAt"`
}

// Approved returns whether the stake voting for exceeds the stake voting against.
func (p *Proposal) Approved() bool {
	return p.VotesFor > p.VotesAgainst
}

type Service struct {
	proposals *storage.Mapping[fresa.Bytes32, *Proposal]
	votes     *storage.Mapping[fresa.Bytes32, bool]
	nonce     *storage.Counter[fresa.Address]
	stakes    Stakes
}

func New(sctx *storage.Context, stakes Stakes) *Service {
	return &Service{
		proposals: storage.NewMapping[fresa.Bytes32, *Proposal](sctx, spaceProposals),
		votes:     storage.NewMapping[fresa.Bytes32, bool](sctx, spaceVotes),
		nonce:     storage.NewCounter[fresa.Address](sctx, spaceNonce),
		stakes:    stakes,
	}
}

// Submit creates a proposal on a pool.
func (s *Service) Submit(proposer fresa.Address, poolID fresa.Bytes32, description string, now uint64) (fresa.Bytes32, error) {
	if description == "" || len(description) > MaxDescriptionLength {
		return fresa.Bytes32{}, reverts.Newf(reverts.InvalidParameter, "description must be 1 to %d bytes", MaxDescriptionLength)
	}
	exists, err := s.stakes.Exists(poolID)
	if err != nil {
		return fresa.Bytes32{}, err
	}
	if !exists {
		return fresa.Bytes32{}, reverts.Newf(reverts.NotFound, "pool %v", poolID.AbbrevString())
	}

	nonce, err := s.nonce.Next(proposer)
	if err != nil {
		return fresa.Bytes32{}, errors.Wrap(err, "failed to get proposal nonce")
	}
	id := fresa.DeriveID(spaceProposals, proposer.Bytes(), nonce)
	if err := s.proposals.Insert(id, &Proposal{
		Pool:        poolID,
		Proposer:    proposer,
		Description: description,
		CreatedAt:   now,
	}); err != nil {
		return fresa.Bytes32{}, errors.Wrap(err, "failed to set proposal")
	}
	logger.Debug("proposal submitted", "id", id.AbbrevString(), "pool", poolID.AbbrevString())
	return id, nil
}

// Get returns the proposal or a NotFound revert.
func (s *Service) Get(id fresa.Bytes32) (*Proposal, error) {
	p, err := s.proposals.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get proposal")
	}
	if p == nil {
		return nil, reverts.Newf(reverts.NotFound, "proposal %v", id.AbbrevString())
	}
	return p, nil
}

// Vote casts the stake the voter held in the proposal's pool before the proposal was created.
// Each voter votes once. Stake moved in after creation carries no weight, so tokens vote once.
func (s *Service) Vote(voter fresa.Address, id fresa.Bytes32, support bool) (uint64, error) {
	p, err := s.Get(id)
	if err != nil {
		return 0, err
	}
	key := fresa.Blake2b(id.Bytes(), voter.Bytes())
	voted, err := s.votes.Exists(key)
	if err != nil {
		return 0, err
	}
	if voted {
		return 0, reverts.New(reverts.InvalidParameter, "already voted")
	}
	weight, err := s.stakes.StakeBefore(p.Pool, voter, p.CreatedAt)
	if err != nil {
		return 0, err
	}
	if weight == 0 {
		return 0, reverts.New(reverts.InvalidParameter, "no stake in the proposal pool before its creation")
	}

	tally := &p.VotesAgainst
	if support {
		tally = &p.VotesFor
	}
	if weight > math.MaxUint64-*tally {
		return 0, reverts.New(reverts.InvalidParameter, "vote tally overflow")
	}
	*tally += weight
	p.Voters++

	if err := s.votes.Insert(key, support); err != nil {
		return 0, errors.Wrap(err, "failed to record vote")
	}
	if err := s.proposals.Update(id, p); err != nil {
		return 0, errors.Wrap(err, "failed to update proposal")
	}
	return weight, nil
}
