// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package apitest sets up an in memory ledger for api tests.
package apitest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/logdb"
	"github.com/vechain/fresa/lvldb"
	"github.com/vechain/fresa/processor"
	"github.com/vechain/fresa/state"
)

const Week = uint64(604800)

var (
	Authority = fresa.BytesToAddress([]byte("authority"))
	Alice     = fresa.BytesToAddress([]byte("alice"))
	Bob       = fresa.BytesToAddress([]byte("bob"))
)

type Ledger struct {
	t         *testing.T
	Processor *processor.Processor
	Stater    *state.Stater
	LogDB     *logdb.LogDB
	Now       atomic.Uint64
}

// New creates a ledger with the token initialized and Alice and Bob holding 1_000_000000 each.
func New(t *testing.T) *Ledger {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	logDB, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() {
		logDB.Close()
		db.Close()
	})

	l := &Ledger{t: t, Stater: state.NewStater(db, 0), LogDB: logDB}
	l.Now.Store(1_700_000_000)
	l.Processor, err = processor.New(l.Stater, fresa.DefaultConfig(), processor.WithClock(l.Now.Load), processor.WithSink(logDB))
	require.NoError(t, err)

	l.Exec(processor.KindInitializeToken, Authority, &processor.InitializeToken{TotalSupply: 1_000_000_000_000000})
	l.Exec(processor.KindTransfer, Authority, &processor.Transfer{To: Alice, Amount: 1_000_000000})
	l.Exec(processor.KindTransfer, Authority, &processor.Transfer{To: Bob, Amount: 1_000_000000})
	return l
}

// Exec runs an instruction which must commit.
func (l *Ledger) Exec(kind processor.Kind, caller fresa.Address, payload any) *processor.Receipt {
	in, err := processor.NewInstruction(kind, caller, payload)
	require.NoError(l.t, err)
	r, err := l.Processor.Execute(context.Background(), in)
	require.NoError(l.t, err)
	require.False(l.t, r.Reverted, r.Error)
	return r
}

// NewPool creates a funded pool.
func (l *Ledger) NewPool(rate, lock int64, reserve uint64) fresa.Bytes32 {
	r := l.Exec(processor.KindInitializePool, Authority, &processor.InitializePool{RewardRate: rate, LockDuration: lock})
	id := r.Output.(*processor.PoolOutput).Pool
	if reserve > 0 {
		l.Exec(processor.KindFundPool, Authority, &processor.FundPool{Pool: id, Amount: reserve})
	}
	return id
}

func HTTPGet(t *testing.T, url string) ([]byte, int) {
	res, err := http.Get(url) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}

func HTTPPost(t *testing.T, url string, obj any) ([]byte, int) {
	data, err := json.Marshal(obj)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return body, res.StatusCode
}
