// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"sort"

	"github.com/vechain/fresa/kv"
)

// Stage abstracts the changes of a state, ready to be committed.
type Stage struct {
	changes map[string][]byte
}

// Len returns the number of changed records.
func (s *Stage) Len() int {
	return len(s.changes)
}

// Keys returns the changed storage keys in order.
func (s *Stage) Keys() []string {
	keys := make([]string, 0, len(s.changes))
	for k := range s.changes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeTo puts all changes to the putter.
func (s *Stage) writeTo(w kv.Putter) error {
	for _, k := range s.Keys() {
		v := s.changes[k]
		if v == nil {
			if err := w.Delete([]byte(k)); err != nil {
				return err
			}
			continue
		}
		if err := w.Put([]byte(k), v); err != nil {
			return err
		}
	}
	return nil
}
