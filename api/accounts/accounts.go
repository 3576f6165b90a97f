// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package accounts

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/fresa/api/utils"
	"github.com/vechain/fresa/custody"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/processor"
	"github.com/vechain/fresa/staker/reverts"
)

type Accounts struct {
	processor *processor.Processor
}

func New(p *processor.Processor) *Accounts {
	return &Accounts{p}
}

func (a *Accounts) handleGetAccount(w http.ResponseWriter, req *http.Request) error {
	addr, err := fresa.ParseAddress(mux.Vars(req)["address"])
	if err != nil {
		return utils.BadRequest(errors.WithMessage(err, "address"))
	}
	var acc Account
	if err := a.processor.View(func(env *processor.Env) error {
		bal, err := env.Ledger().BalanceOf(*addr)
		if err != nil {
			return err
		}
		acc = Account{Address: *addr, Balance: bal}
		return nil
	}); err != nil {
		return err
	}
	return utils.WriteJSON(w, &acc)
}

func (a *Accounts) handleGetMint(w http.ResponseWriter, _ *http.Request) error {
	var m *custody.Mint
	if err := a.processor.View(func(env *processor.Env) (err error) {
		m, err = env.Ledger().Mint()
		return
	}); err != nil {
		return err
	}
	if m == nil {
		return reverts.New(reverts.NotFound, "mint not initialized")
	}
	return utils.WriteJSON(w, m)
}

// Mount registers the account routes under pathPrefix.
func (a *Accounts) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/{address}").
		Methods(http.MethodGet).
		Name("GET /accounts/{address}").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetAccount))
}

// MountMint registers the mint route at path.
func (a *Accounts) MountMint(root *mux.Router, path string) {
	root.Path(path).
		Methods(http.MethodGet).
		Name("GET /mint").
		HandlerFunc(utils.WrapHandlerFunc(a.handleGetMint))
}
