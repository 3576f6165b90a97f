// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"github.com/vechain/fresa/fresa"
)

// Event represents processor.Event that can be stored in db.
type Event struct {
	ReceiptID fresa.Bytes32 `json:"receiptId"`
	Index     uint32        `json:"index"`
	Time      uint64        `json:"time"`
	Kind      string        `json:"kind"`   // instruction kind
	Caller    fresa.Address `json:"caller"` // instruction caller
	Name      string        `json:"name"`
	Subject   fresa.Bytes32 `json:"subject"`
	Account   fresa.Address `json:"account"`
	Amount    uint64        `json:"amount"`
}

// Transfer represents custody.Transfer that can be stored in db.
type Transfer struct {
	ReceiptID fresa.Bytes32 `json:"receiptId"`
	Index     uint32        `json:"index"`
	Time      uint64        `json:"time"`
	Caller    fresa.Address `json:"caller"`
	Sender    fresa.Address `json:"sender"`    // zero when minted
	Recipient fresa.Address `json:"recipient"` // zero when burned
	Amount    uint64        `json:"amount"`
}

type Order string

const (
	ASC  Order = "asc"
	DESC Order = "desc"
)

// Range is an inclusive time range, To is ignored when below From.
type Range struct {
	From uint64 `json:"from"`
	To   uint64 `json:"to"`
}

type Options struct {
	Offset uint64 `json:"offset"`
	Limit  uint64 `json:"limit"`
}

type EventCriteria struct {
	Name    *string        `json:"name"`
	Subject *fresa.Bytes32 `json:"subject"`
	Account *fresa.Address `json:"account"`
}

// EventFilter matches events satisfying any of the criteria.
type EventFilter struct {
	CriteriaSet []*EventCriteria `json:"criteriaSet"`
	Range       *Range           `json:"range"`
	Options     *Options         `json:"options"`
	Order       Order            `json:"order"` // default asc
}

type TransferCriteria struct {
	Caller    *fresa.Address `json:"caller"`
	Sender    *fresa.Address `json:"sender"`
	Recipient *fresa.Address `json:"recipient"`
}

// TransferFilter matches transfers satisfying any of the criteria.
type TransferFilter struct {
	ReceiptID   *fresa.Bytes32      `json:"receiptId"`
	CriteriaSet []*TransferCriteria `json:"criteriaSet"`
	Range       *Range              `json:"range"`
	Options     *Options            `json:"options"`
	Order       Order               `json:"order"`
}
