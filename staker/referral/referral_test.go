// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package referral

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vechain/fresa/fresa"
)

func TestSplit(t *testing.T) {
	ref := fresa.BytesToAddress([]byte("ref"))

	tests := []struct {
		name     string
		bps      uint64
		paid     uint64
		referrer *fresa.Address
		want     Split
	}{
		{"five percent", 500, 1000, &ref, Split{Staker: 950, Referrer: 50, To: &ref}},
		{"no referrer", 500, 1000, nil, Split{Staker: 1000}},
		{"no reward", 500, 0, &ref, Split{}},
		{"disabled", 0, 1000, &ref, Split{Staker: 1000}},
		{"truncated to zero", 500, 19, &ref, Split{Staker: 19}},
		{"everything", fresa.BasisPoints, 1000, &ref, Split{Staker: 0, Referrer: 1000, To: &ref}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Policy{ShareBPS: tt.bps}.Split(tt.paid, tt.referrer)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.paid, got.Staker+got.Referrer)
		})
	}
}
