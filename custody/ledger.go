// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package custody

import (
	"math"

	"github.com/pkg/errors"

	"github.com/vechain/fresa/fresa"
	"github.com/vechain/fresa/staker/reverts"
	"github.com/vechain/fresa/storage"
)

const (
	spaceBalances = "balances"
	spaceMint     = "mint"
)

var _ Custody = (*Ledger)(nil)

// Mint is the single token of the ledger.
type Mint struct {
	ID        fresa.Bytes32 `json:"id"`
	Authority fresa.Address `json:"authority"`
	Decimals  uint8         `json:"decimals"`
	Supply    uint64        `json:"supply"`
	CreatedAt uint64        `json:"createdAt"`
}

// Ledger keeps balances in state records. Balances only change inside the state the ledger
// was created on, so they commit or revert with the instruction.
type Ledger struct {
	balances  *storage.Mapping[fresa.Address, uint64]
	mint      *storage.Raw[*Mint]
	transfers []Transfer
}

func New(sctx *storage.Context) *Ledger {
	return &Ledger{
		balances: storage.NewMapping[fresa.Address, uint64](sctx, spaceBalances),
		mint:     storage.NewRaw[*Mint](sctx, spaceMint, []byte("token")),
	}
}

// InitializeMint creates the token and credits the whole supply to the authority.
func (l *Ledger) InitializeMint(authority fresa.Address, supply uint64, decimals uint8, now uint64) (*Mint, error) {
	if authority.IsZero() {
		return nil, reverts.New(reverts.InvalidParameter, "authority required")
	}
	existing, err := l.Mint()
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, reverts.New(reverts.InvalidParameter, "mint already initialized")
	}

	m := &Mint{
		ID:        fresa.DeriveID(spaceMint, authority.Bytes(), 0),
		Authority: authority,
		Decimals:  decimals,
		CreatedAt: now,
	}
	if err := l.mint.Upsert(m); err != nil {
		return nil, errors.Wrap(err, "failed to set mint")
	}
	if supply > 0 {
		if err := l.MintTo(authority, supply); err != nil {
			return nil, err
		}
	}
	return l.Mint()
}

// Mint returns the token, nil before initialization.
func (l *Ledger) Mint() (*Mint, error) {
	m, err := l.mint.Get()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get mint")
	}
	return m, nil
}

func (l *Ledger) BalanceOf(addr fresa.Address) (uint64, error) {
	bal, err := l.balances.Get(addr)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get balance")
	}
	return bal, nil
}

func (l *Ledger) MintTo(to fresa.Address, amount uint64) error {
	m, err := l.Mint()
	if err != nil {
		return err
	}
	if m == nil {
		return reverts.New(reverts.NotFound, "mint not initialized")
	}
	if amount > math.MaxUint64-m.Supply {
		return reverts.New(reverts.InvalidParameter, "supply overflow")
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	m.Supply += amount
	if err := l.mint.Upsert(m); err != nil {
		return errors.Wrap(err, "failed to update mint")
	}
	l.record(fresa.Address{}, to, amount)
	return nil
}

func (l *Ledger) Transfer(from, to fresa.Address, amount uint64) error {
	if to.IsZero() {
		return reverts.New(reverts.InvalidParameter, "transfer to zero address")
	}
	if amount == 0 || from == to {
		return nil
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	if err := l.credit(to, amount); err != nil {
		return err
	}
	l.record(from, to, amount)
	return nil
}

func (l *Ledger) Burn(from fresa.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	m, err := l.Mint()
	if err != nil {
		return err
	}
	if m == nil {
		return reverts.New(reverts.NotFound, "mint not initialized")
	}
	if err := l.debit(from, amount); err != nil {
		return err
	}
	m.Supply -= amount
	if err := l.mint.Upsert(m); err != nil {
		return errors.Wrap(err, "failed to update mint")
	}
	l.record(from, fresa.Address{}, amount)
	return nil
}

// Transfers returns the movements applied through this ledger, oldest first.
func (l *Ledger) Transfers() []Transfer {
	return l.transfers
}

func (l *Ledger) debit(addr fresa.Address, amount uint64) error {
	bal, err := l.BalanceOf(addr)
	if err != nil {
		return err
	}
	if bal < amount {
		return reverts.Newf(reverts.InsufficientBalance, "%v has %d, needs %d", addr, bal, amount)
	}
	return l.balances.Upsert(addr, bal-amount)
}

func (l *Ledger) credit(addr fresa.Address, amount uint64) error {
	bal, err := l.BalanceOf(addr)
	if err != nil {
		return err
	}
	if amount > math.MaxUint64-bal {
		return reverts.New(reverts.InvalidParameter, "balance overflow")
	}
	return l.balances.Upsert(addr, bal+amount)
}

func (l *Ledger) record(from, to fresa.Address, amount uint64) {
	l.transfers = append(l.transfers, Transfer{From: from, To: to, Amount: amount})
}
