// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package proposals

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/fresa/api/utils"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/governance"
	"github.com/vechain/fresa/processor"
)

type Proposals struct {
	processor *processor.Processor
}

func New(p *processor.Processor) *Proposals {
	return &Proposals{p}
}

type Proposal struct {
	ID fresa.Bytes32 `json:"id"`
	*governance.Proposal
	Approved bool `json:"approved"`
}

func (p *Proposals) handleGetProposal(w http.ResponseWriter, req *http.Request) error {
	id, err := fresa.ParseBytes32(mux.Vars(req)["id"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "id"))
	}
	var prop *governance.Proposal
	if err := p.processor.View(func(env *processor.Env) (err error) {
		prop, err = env.Governance().Get(id)
		return
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &Proposal{ID: id, Proposal: prop, Approved: prop.Approved()})
}

func (p *Proposals) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{id}").
		Methods(http.MethodGet).
		Name("GET /proposals/{id}").
		HandlerFunc(utils.WrapHandlerFunc(p.handleGetProposal))
}
