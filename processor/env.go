// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package processor

import (
	"github.com/vechain/fresa/custody"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/governance"
	"github.com/vechain/fresa/staker"
	"github.com/vechain/fresa/staker/reward"
	"github.com/vechain/fresa/state"
	"github.com/vechain/fresa/storage"
)

// Env is the execution environment of one instruction: a fresh state over committed records
// and the services bound to it.
type Env struct {
	state      *state.State
	ledger     *custody.Ledger
	staker     *staker.Staker
	governance *governance.Service
	cfg        fresa.Config
	now        uint64

	events []*Event
	pools  []fresa.Bytes32 // pools whose total staked may have changed
}

func newEnv(st *state.State, cfg fresa.Config, strategy reward.Strategy, now uint64) *Env {
	sctx := storage.NewContext(st)
	ledger := custody.New(sctx)
	stk := staker.New(sctx, ledger, cfg, strategy)
	return &Env{
		state:      st,
		ledger:     ledger,
		staker:     stk,
		governance: governance.New(sctx, stk),
		cfg:        cfg,
		now:        now,
	}
}

func (e *Env) State() *state.State             { return e.state }
func (e *Env) Ledger() *custody.Ledger         { return e.ledger }
func (e *Env) Staker() *staker.Staker          { return e.staker }
func (e *Env) Governance() *governance.Service { return e.governance }
func (e *Env) Now() uint64                     { return e.now }

func (e *Env) emit(name string, subject fresa.Bytes32, account fresa.Address, amount uint64) {
	e.events = append(e.events, &Event{Name: name, Subject: subject, Account: account, Amount: amount})
}

func (e *Env) touch(poolID fresa.Bytes32) {
	e.pools = append(e.pools, poolID)
}
