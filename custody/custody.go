// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package custody moves tokens between holders. The staking core never touches balances directly.
package custody

import (
	"github.com/vechain/fresa/fresa"
)

// Custody is the token primitive the staking core relies on.
// Every method either applies fully or fails without effect.
type Custody interface {
	MintTo(to fresa.Address, amount uint64) error
	Transfer(from, to fresa.Address, amount uint64) error
	Burn(from fresa.Address, amount uint64) error
	BalanceOf(addr fresa.Address) (uint64, error)
}

// Transfer records a balance movement. A zero From is a mint, a zero To is a burn.
type Transfer struct {
	From   fresa.Address `json:"from"`
	To     fresa.Address `json:"to"`
	Amount uint64        `json:"amount"`
}

// PoolAccount returns the custody account holding the tokens of a pool.
func PoolAccount(poolID fresa.Bytes32) fresa.Address {
	return fresa.BytesToAddress(fresa.Blake2b([]byte("custody"), poolID.Bytes()).Bytes())
}
