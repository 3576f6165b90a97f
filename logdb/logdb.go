// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb keeps the events and transfers of committed receipts in sqlite.
package logdb

import (
	"context"
	"database/sql"
	"encoding/binary"
	"sync"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/processor"
)

var _ processor.Sink = (*LogDB)(nil)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	wmu           sync.Mutex // sqlite has a single writer
}

// New create or open log db at given path.
func New(path string) (*LogDB, error) {
	return open(path, path+"?_journal_mode=WAL&_busy_timeout=5000")
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return open(":memory:", ":memory:")
}

func open(path, dsn string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	if path == ":memory:" {
		// each connection would get its own memory database
		db.SetMaxOpenConns(1)
	}
	if _, err := db.Exec(receiptTableSchema + eventTableSchema + transferTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
	}, nil
}

// Close close the log db.
func (db *LogDB) Close() error {
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// Write stores the events and transfers of a committed receipt. Reverted receipts are skipped.
func (db *LogDB) Write(r *processor.Receipt) error {
	if r.Reverted {
		return nil
	}
	db.wmu.Lock()
	defer db.wmu.Unlock()

	return db.execInTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec("INSERT INTO receipt(id, kind, caller, time) VALUES (?, ?, ?, ?);",
			r.ID.Bytes(),
			string(r.Kind),
			r.Caller.Bytes(),
			int64(r.Time),
		); err != nil {
			return err
		}
		for i, ev := range r.Events {
			if _, err := tx.Exec("INSERT INTO event(receiptID, eventIndex, time, kind, caller, name, subject, account, amount) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?);",
				r.ID.Bytes(),
				i,
				int64(r.Time),
				string(r.Kind),
				r.Caller.Bytes(),
				ev.Name,
				ev.Subject.Bytes(),
				ev.Account.Bytes(),
				amountValue(ev.Amount),
			); err != nil {
				return err
			}
		}
		for i, tr := range r.Transfers {
			if _, err := tx.Exec("INSERT INTO transfer(receiptID, transferIndex, time, caller, sender, recipient, amount) VALUES (?, ?, ?, ?, ?, ?, ?);",
				r.ID.Bytes(),
				i,
				int64(r.Time),
				r.Caller.Bytes(),
				tr.From.Bytes(),
				tr.To.Bytes(),
				amountValue(tr.Amount),
			); err != nil {
				return err
			}
		}
		return nil
	})
}

func (db *LogDB) execInTx(proc func(*sql.Tx) error) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	if err := proc(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (db *LogDB) FilterEvents(ctx context.Context, filter *EventFilter) ([]*Event, error) {
	const query = "SELECT receiptID, eventIndex, time, kind, caller, name, subject, account, amount FROM event"
	if filter == nil {
		return db.queryEvents(ctx, query)
	}
	metricsHandleEventsFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Name != nil {
			args = append(args, *criteria.Name)
			stmt += " AND name = ?"
		}
		if criteria.Subject != nil {
			args = append(args, criteria.Subject.Bytes())
			stmt += " AND subject = ?"
		}
		if criteria.Account != nil {
			args = append(args, criteria.Account.Bytes())
			stmt += " AND account = ?"
		}
		stmt += " )"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += " )"
	}
	stmt, args = appendOrderAndLimit(stmt, args, filter.Order, filter.Options)
	return db.queryEvents(ctx, stmt, args...)
}

func (db *LogDB) FilterTransfers(ctx context.Context, filter *TransferFilter) ([]*Transfer, error) {
	const query = "SELECT receiptID, transferIndex, time, caller, sender, recipient, amount FROM transfer"
	if filter == nil {
		return db.queryTransfers(ctx, query)
	}
	metricsHandleTransfersFilter(filter)

	var args []any
	stmt := query + " WHERE 1"
	stmt, args = appendRange(stmt, args, filter.Range)
	if filter.ReceiptID != nil {
		args = append(args, filter.ReceiptID.Bytes())
		stmt += " AND receiptID = ?"
	}
	for i, criteria := range filter.CriteriaSet {
		if i == 0 {
			stmt += " AND (( 1"
		} else {
			stmt += " OR ( 1"
		}
		if criteria.Caller != nil {
			args = append(args, criteria.Caller.Bytes())
			stmt += " AND caller = ?"
		}
		if criteria.Sender != nil {
			args = append(args, criteria.Sender.Bytes())
			stmt += " AND sender = ?"
		}
		if criteria.Recipient != nil {
			args = append(args, criteria.Recipient.Bytes())
			stmt += " AND recipient = ?"
		}
		stmt += " )"
	}
	if len(filter.CriteriaSet) > 0 {
		stmt += " )"
	}
	stmt, args = appendOrderAndLimit(stmt, args, filter.Order, filter.Options)
	return db.queryTransfers(ctx, stmt, args...)
}

func appendRange(stmt string, args []any, r *Range) (string, []any) {
	if r == nil {
		return stmt, args
	}
	args = append(args, int64(r.From))
	stmt += " AND time >= ?"
	if r.To >= r.From {
		args = append(args, int64(r.To))
		stmt += " AND time <= ?"
	}
	return stmt, args
}

func appendOrderAndLimit(stmt string, args []any, order Order, options *Options) (string, []any) {
	if order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, int64(options.Offset), int64(options.Limit))
	}
	return stmt, args
}

func (db *LogDB) queryEvents(ctx context.Context, stmt string, args ...any) ([]*Event, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			receiptID []byte
			index     uint32
			time      int64
			kind      string
			caller    []byte
			name      string
			subject   []byte
			account   []byte
			amount    []byte
		)
		if err := rows.Scan(
			&receiptID,
			&index,
			&time,
			&kind,
			&caller,
			&name,
			&subject,
			&account,
			&amount,
		); err != nil {
			return nil, err
		}
		events = append(events, &Event{
			ReceiptID: fresa.BytesToBytes32(receiptID),
			Index:     index,
			Time:      uint64(time),
			Kind:      kind,
			Caller:    fresa.BytesToAddress(caller),
			Name:      name,
			Subject:   fresa.BytesToBytes32(subject),
			Account:   fresa.BytesToAddress(account),
			Amount:    amountOf(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

func (db *LogDB) queryTransfers(ctx context.Context, stmt string, args ...any) ([]*Transfer, error) {
	rows, err := db.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transfers []*Transfer
	for rows.Next() {
		var (
			receiptID []byte
			index     uint32
			time      int64
			caller    []byte
			sender    []byte
			recipient []byte
			amount    []byte
		)
		if err := rows.Scan(
			&receiptID,
			&index,
			&time,
			&caller,
			&sender,
			&recipient,
			&amount,
		); err != nil {
			return nil, err
		}
		transfers = append(transfers, &Transfer{
			ReceiptID: fresa.BytesToBytes32(receiptID),
			Index:     index,
			Time:      uint64(time),
			Caller:    fresa.BytesToAddress(caller),
			Sender:    fresa.BytesToAddress(sender),
			Recipient: fresa.BytesToAddress(recipient),
			Amount:    amountOf(amount),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return transfers, nil
}

func amountValue(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func amountOf(b []byte) uint64 {
	if len(b) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(b)
}
