// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"fmt"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/vechain/fresa/stackedmap"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Source loads committed values. A missing record returns nil without error.
type Source func(key []byte) ([]byte, error)

// State is a journaled overlay of records over committed storage.
// Changes are invisible to other states until staged and committed through the Stater.
// A State is not safe for concurrent use.
type State struct {
	src Source
	sm  *stackedmap.StackedMap[string, []byte]
}

// New create state object.
func New(src Source) *State {
	s := &State{src: src}
	s.sm = stackedmap.New(func(key string) ([]byte, bool, error) {
		v, err := s.src([]byte(key))
		if err != nil {
			return nil, false, err
		}
		return v, true, nil
	})
	// the base level collects changes not covered by any checkpoint
	s.sm.Push()
	return s
}

// RecordKey composes the storage key of a record.
func RecordKey(space string, id []byte) []byte {
	return append(append([]byte(space), '/'), id...)
}

// Get returns the raw record, nil if absent.
func (s *State) Get(space string, id []byte) ([]byte, error) {
	v, _, err := s.sm.Get(string(RecordKey(space, id)))
	if err != nil {
		return nil, &Error{err}
	}
	return v, nil
}

// Set puts the raw record. A nil or empty value deletes it.
func (s *State) Set(space string, id []byte, val []byte) {
	if len(val) == 0 {
		val = nil
	}
	s.sm.Put(string(RecordKey(space, id)), val)
}

// DecodeRecord decodes the record into val. It returns false if the record is absent.
func (s *State) DecodeRecord(space string, id []byte, val any) (bool, error) {
	raw, err := s.Get(space, id)
	if err != nil {
		return false, err
	}
	if len(raw) == 0 {
		return false, nil
	}
	if err := rlp.DecodeBytes(raw, val); err != nil {
		return false, &Error{fmt.Errorf("decode %s record: %w", space, err)}
	}
	return true, nil
}

// EncodeRecord rlp encodes val and puts it. A nil val deletes the record.
func (s *State) EncodeRecord(space string, id []byte, val any) error {
	if val == nil {
		s.Set(space, id, nil)
		return nil
	}
	raw, err := rlp.EncodeToBytes(val)
	if err != nil {
		return &Error{fmt.Errorf("encode %s record: %w", space, err)}
	}
	s.Set(space, id, raw)
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	// never drop the base level
	if revision < 1 {
		revision = 1
	}
	s.sm.PopTo(revision)
}

// Stage collapses all changes into a stage, later writes win.
func (s *State) Stage() *Stage {
	changes := make(map[string][]byte)
	for _, entry := range s.sm.Journal() {
		changes[entry.Key] = entry.Value
	}
	return &Stage{changes: changes}
}
