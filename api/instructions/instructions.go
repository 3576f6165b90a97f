// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package instructions

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/fresa/api/utils"
	"github.com/vechain/fresa/processor"
	"github.com/vechain/fresa/staker/reverts"
)

// maxBatchSize bounds the instructions of one batch request.
const maxBatchSize = 256

// Instructions accepts instructions from callers authenticated by the host.
type Instructions struct {
	processor *processor.Processor
}

func New(p *processor.Processor) *Instructions {
	return &Instructions{p}
}

// handleExecute responds the receipt. A reverted receipt is responded with the status of its revert.
func (i *Instructions) handleExecute(w http.ResponseWriter, req *http.Request) error {
	var in processor.Instruction
	if err := utils.ParseJSON(req.Body, &in); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if in.Caller.IsZero() {
		return utils.BadRequest(errors.New("caller: required"))
	}
	receipt, err := i.processor.Execute(req.Context(), &in)
	if err != nil {
		return err
	}
	status := http.StatusOK
	if receipt.Reverted {
		status = http.StatusBadRequest
		if kind, ok := reverts.ParseKind(receipt.ErrorKind); ok {
			status = utils.StatusOf(kind)
		}
	}
	return utils.WriteJSONWithStatus(w, receipt, status)
}

func (i *Instructions) handleExecuteBatch(w http.ResponseWriter, req *http.Request) error {
	var ins []*processor.Instruction
	if err := utils.ParseJSON(req.Body, &ins); err != nil {
		return utils.BadRequest(errors.WithMessage(err, "body"))
	}
	if len(ins) > maxBatchSize {
		return utils.BadRequest(errors.Errorf("batch: at most %d instructions", maxBatchSize))
	}
	for n, in := range ins {
		if in == nil || in.Caller.IsZero() {
			return utils.BadRequest(errors.Errorf("instruction %d: caller required", n))
		}
	}
	receipts, err := i.processor.ExecuteBatch(req.Context(), ins)
	if err != nil {
		return err
	}
	return utils.WriteJSON(w, receipts)
}

func (i *Instructions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("").
		Methods(http.MethodPost).
		Name("POST /instructions").
		HandlerFunc(utils.WrapHandlerFunc(i.handleExecute))
	sub.Path("/batch").
		Methods(http.MethodPost).
		Name("POST /instructions/batch").
		HandlerFunc(utils.WrapHandlerFunc(i.handleExecuteBatch))
}
