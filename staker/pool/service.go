// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pool

import (
	"math"

	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/storage"
)

const (
	// Space is the storage space of pool records.
	Space      = "pools"
	spaceNonce = "pool-nonce"
)

type Service struct {
	pools *storage.Mapping[fresa.Bytes32, *body]
	nonce *storage.Counter[fresa.Address]
}

func New(sctx *storage.Context) *Service {
	return &Service{
		pools: storage.NewMapping[fresa.Bytes32, *body](sctx, Space),
		nonce: storage.NewCounter[fresa.Address](sctx, spaceNonce),
	}
}

// Add creates a pool owned by authority. Every call creates a distinct pool.
func (s *Service) Add(authority fresa.Address, rewardRate, lockDuration int64, now uint64) (fresa.Bytes32, error) {
	if authority.IsZero() {
		return fresa.Bytes32{}, reverts.New(reverts.InvalidParameter, "authority required")
	}
	if rewardRate < 0 {
		return fresa.Bytes32{}, reverts.Newf(reverts.InvalidParameter, "negative reward rate %d", rewardRate)
	}
	if lockDuration < 0 {
		return fresa.Bytes32{}, reverts.Newf(reverts.InvalidParameter, "negative lock duration %d", lockDuration)
	}

	nonce, err := s.nonce.Next(authority)
	if err != nil {
		return fresa.Bytes32{}, errors.Wrap(err, "failed to get pool nonce")
	}
	id := fresa.DeriveID(Space, authority.Bytes(), nonce)

	if err := s.pools.Insert(id, &body{
		Authority:    authority,
		RewardRate:   uint64(rewardRate),
		LockDuration: uint64(lockDuration),
		CreatedAt:    now,
	}); err != nil {
		return fresa.Bytes32{}, errors.Wrap(err, "failed to set pool")
	}
	return id, nil
}

// Get returns the pool, nil if absent.
func (s *Service) Get(id fresa.Bytes32) (*Pool, error) {
	b, err := s.pools.Get(id)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get pool")
	}
	if b == nil {
		return nil, nil
	}
	return &Pool{b}, nil
}

// GetExisting returns the pool or a NotFound revert.
func (s *Service) GetExisting(id fresa.Bytes32) (*Pool, error) {
	p, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, reverts.Newf(reverts.NotFound, "pool %v", id.AbbrevString())
	}
	return p, nil
}

// AddStaked increases the total staked of the pool.
func (s *Service) AddStaked(id fresa.Bytes32, p *Pool, amount uint64) error {
	if amount > math.MaxUint64-p.body.TotalStaked {
		return reverts.New(reverts.InvalidParameter, "pool total staked overflow")
	}
	p.body.TotalStaked += amount
	return s.pools.Update(id, p.body)
}

// SubStaked decreases the total staked of the pool.
func (s *Service) SubStaked(id fresa.Bytes32, p *Pool, amount uint64) error {
	if amount > p.body.TotalStaked {
		return errors.Errorf("pool total staked underflow: %d < %d", p.body.TotalStaked, amount)
	}
	p.body.TotalStaked -= amount
	return s.pools.Update(id, p.body)
}

// Decode decodes a committed pool record.
func Decode(raw []byte) (*Pool, error) {
	var b body
	if err := rlp.DecodeBytes(raw, &b); err != nil {
		return nil, err
	}
	return &Pool{&b}, nil
}
