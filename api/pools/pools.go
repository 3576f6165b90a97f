// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pools

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/fresa/api/utils"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/processor"
	"github.com/vechain/fresa/staker/pool"
	"github.com/vechain/fresa/staker/stake"
	"github.com/vechain/fresa/state"
)

type Pools struct {
	processor *processor.Processor
	stater    *state.Stater
}

func New(p *processor.Processor, stater *state.Stater) *Pools {
	return &Pools{p, stater}
}

func (p *Pools) handleListPools(w http.ResponseWriter, _ *http.Request) error {
	list := make([]*Pool, 0)
	var decodeErr error
	err := p.stater.Iterate(pool.Space, func(id, val []byte) bool {
		pl, err := pool.Decode(val)
		if err != nil {
			decodeErr = errors.WithMessagef(err, "pool %x", id)
			return false
		}
		list = append(list, convertPool(fresa.BytesToBytes32(id), pl))
		return true
	})
	if err != nil {
		return err
	}
	if decodeErr != nil {
		return decodeErr
	}
	return utils.WriteJSON(w, list)
}

func (p *Pools) handleGetPool(w http.ResponseWriter, req *http.Request) error {
	id, err := parseID(req)
	if err != nil {
		return err
	}
	var res *Pool
	if err := p.processor.View(func(env *processor.Env) error {
		pl, err := env.Staker().GetPool(id)
		if err != nil {
			return err
		}
		reserve, err := env.Staker().Reserve(id)
		if err != nil {
			return err
		}
		res = convertPool(id, pl)
		res.Reserve = &reserve
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func (p *Pools) handleGetStake(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := parseStake(req)
	if err != nil {
		return err
	}
	var acc *stake.Account
	if err := p.processor.View(func(env *processor.Env) (err error) {
		acc, err = env.Staker().GetStake(stake.ID(id, owner))
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, acc)
}

func (p *Pools) handleGetReward(w http.ResponseWriter, req *http.Request) error {
	id, owner, err := parseStake(req)
	if err != nil {
		return err
	}
	var res *Reward
	if err := p.processor.View(func(env *processor.Env) error {
		stakeID := stake.ID(id, owner)
		acc, err := env.Staker().GetClaimableStake(stakeID)
		if err != nil {
			return err
		}
		pl, err := env.Staker().GetPool(id)
		if err != nil {
			return err
		}
		pending, err := env.Staker().PendingReward(stakeID, env.Now())
		if err != nil {
			return err
		}
		res = &Reward{
			StakeID:    stakeID,
			Pending:    pending,
			Time:       env.Now(),
			UnlockTime: acc.UnlockTime(pl.LockDuration()),
			Unlocked:   acc.Unlocked(pl.LockDuration(), env.Now()),
		}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, res)
}

func parseID(req *http.Request) (fresa.Bytes32, error) {
	id, err := fresa.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return fresa.Bytes32{}, utils.BadRequest(errors.WithMessage(err, "id"))
	}
	return id, nil
}

func parseStake(req *http.Request) (fresa.Bytes32, fresa.Address, error) {
	id, err := parseID(req)
	if err != nil {
		return fresa.Bytes32{}, fresa.Address{}, err
	}
	owner, err := fresa.ParseAddress(mux.Vars(req)["owner"])
	if err != nil {
		return fresa.Bytes32{}, fresa.Address{}, utils.BadRequest(errors.WithMessage(err, "owner"))
	}
	return id, *owner, nil
}

func (p *Pools) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodGet).
		Name("GET /pools").
		HandlerFunc(utils.WrapHandlerFunc(p.handleListPools))
	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /pools/{id}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetPool))
	sub.Path("/{id}/stakes/{owner}").
		Methods(http.MethodGet).
		Name("GET /pools/{id}/stakes/{owner}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetStake))
	sub.Path("/{id}/stakes/{owner}/reward").
		Methods(http.MethodGet).
		Name("GET /pools/{id}/stakes/{owner}/reward").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetReward))
}
