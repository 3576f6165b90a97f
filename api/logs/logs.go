// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logs serves the events and transfers of committed instructions.
package logs

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"

	"github.com/vechain/fresa/api/utils"
	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/logdb"
)

type Logs struct {
	db    *logdb.LogDB
	limit uint64
}

// New creates the handlers, limit caps the results of one query.
func New(db *logdb.LogDB, limit uint64) *Logs {
	return &Logs{db, limit}
}

func (l *Logs) options(opts *logdb.Options) (*logdb.Options, error) {
	if opts == nil {
		return &logdb.Options{Limit: l.limit}, nil
	}
	if opts.Limit == 0 {
		return &logdb.Options{Offset: opts.Offset, Limit: l.limit}, nil
	}
	if opts.Limit > l.limit {
		return nil, utils.BadRequest(fmt.Errorf("options.limit exceeds the maximum allowed value of %d", l.limit))
	}
	return opts, nil
}

func (l *Logs) handleFilterEvents(w http.ResponseWriter, req *http.Request) error {
	var filter logdb.EventFilter
	if req.Method == http.MethodPost {
		if err := utils.ParseJSON(req.Body, &filter); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
	} else {
		q := req.URL.Query()
		var c logdb.EventCriteria
		if name := q.Get("name"); name != "" {
			c.Name = &name
		}
		var err error
		if c.Subject, err = parseBytes32(q, "subject"); err != nil {
			return err
		}
		if c.Account, err = parseAddress(q, "account"); err != nil {
			return err
		}
		if c.Name != nil || c.Subject != nil || c.Account != nil {
			filter.CriteriaSet = []*logdb.EventCriteria{&c}
		}
		if err := parseCommon(q, &filter.Range, &filter.Options, &filter.Order); err != nil {
			return err
		}
	}
	opts, err := l.options(filter.Options)
	if err != nil {
		return err
	}
	filter.Options = opts

	events, err := l.db.FilterEvents(req.Context(), &filter)
	if err != nil {
		return err
	}
	if events == nil {
		events = []*logdb.Event{}
	}
	return utils.WriteJSON(w, events)
}

func (l *Logs) handleFilterTransfers(w http.ResponseWriter, req *http.Request) error {
	var filter logdb.TransferFilter
	if req.Method == http.MethodPost {
		if err := utils.ParseJSON(req.Body, &filter); err != nil {
			return utils.BadRequest(errors.WithMessage(err, "body"))
		}
	} else {
		q := req.URL.Query()
		var (
			c   logdb.TransferCriteria
			err error
		)
		if filter.ReceiptID, err = parseBytes32(q, "receipt"); err != nil {
			return err
		}
		if c.Caller, err = parseAddress(q, "caller"); err != nil {
			return err
		}
		if c.Sender, err = parseAddress(q, "sender"); err != nil {
			return err
		}
		if c.Recipient, err = parseAddress(q, "recipient"); err != nil {
			return err
		}
		if c.Caller != nil || c.Sender != nil || c.Recipient != nil {
			filter.CriteriaSet = []*logdb.TransferCriteria{&c}
		}
		if err := parseCommon(q, &filter.Range, &filter.Options, &filter.Order); err != nil {
			return err
		}
	}
	opts, err := l.options(filter.Options)
	if err != nil {
		return err
	}
	filter.Options = opts

	transfers, err := l.db.FilterTransfers(req.Context(), &filter)
	if err != nil {
		return err
	}
	if transfers == nil {
		transfers = []*logdb.Transfer{}
	}
	return utils.WriteJSON(w, transfers)
}

func parseBytes32(q url.Values, key string) (*fresa.Bytes32, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := fresa.ParseBytes32(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, key))
	}
	return &v, nil
}

func parseAddress(q url.Values, key string) (*fresa.Address, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := fresa.ParseAddress(s)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, key))
	}
	return v, nil
}

func parseUint(q url.Values, key string) (*uint64, error) {
	s := q.Get(key)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, utils.BadRequest(errors.WithMessage(err, key))
	}
	return &v, nil
}

// parseCommon reads from, to, offset, limit and order.
func parseCommon(q url.Values, rng **logdb.Range, opts **logdb.Options, order *logdb.Order) error {
	from, err := parseUint(q, "from")
	if err != nil {
		return err
	}
	to, err := parseUint(q, "to")
	if err != nil {
		return err
	}
	if from != nil || to != nil {
		r := &logdb.Range{}
		if from != nil {
			r.From = *from
		}
		if to != nil {
			r.To = *to
		}
		*rng = r
	}

	offset, err := parseUint(q, "offset")
	if err != nil {
		return err
	}
	limit, err := parseUint(q, "limit")
	if err != nil {
		return err
	}
	if offset != nil || limit != nil {
		o := &logdb.Options{}
		if offset != nil {
			o.Offset = *offset
		}
		if limit != nil {
			o.Limit = *limit
		}
		*opts = o
	}

	switch o := logdb.Order(q.Get("order")); o {
	case "", logdb.ASC, logdb.DESC:
		*order = o
	default:
		return utils.BadRequest(errors.New("order: must be asc or desc"))
	}
	return nil
}

func (l *Logs) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/event").
		Methods(http.MethodGet, http.MethodPost).
		Name("/logs/event").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterEvents))
	sub.Path("/transfer").
		Methods(http.MethodGet, http.MethodPost).
		Name("/logs/transfer").
		HandlerFunc(utils.WrapHandlerFunc(l.handleFilterTransfers))
}
