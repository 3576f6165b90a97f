// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// Kind classifies why an instruction was rejected.
type Kind uint8

const (
	InvalidParameter Kind = iota + 1
	NotFound
	Unauthorized
	Locked
	InsufficientStake
	InsufficientBalance
)

var kindNames = map[Kind]string{
	InvalidParameter:    "InvalidParameter",
	NotFound:            "NotFound",
	Unauthorized:        "Unauthorized",
	Locked:              "Locked",
	InsufficientStake:   "InsufficientStake",
	InsufficientBalance: "InsufficientBalance",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// ParseKind returns the kind named by String.
func ParseKind(name string) (Kind, bool) {
	for k, n := range kindNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// Sentinels for errors.Is, they match any revert of the same kind.
var (
	ErrInvalidParameter    = &ErrRevert{kind: InvalidParameter}
	ErrNotFound            = &ErrRevert{kind: NotFound}
	ErrUnauthorized        = &ErrRevert{kind: Unauthorized}
	ErrLocked              = &ErrRevert{kind: Locked}
	ErrInsufficientStake   = &ErrRevert{kind: InsufficientStake}
	ErrInsufficientBalance = &ErrRevert{kind: InsufficientBalance}
)

// ErrRevert rejects an instruction. Nothing the instruction did is kept.
type ErrRevert struct {
	kind    Kind
	message string
}

func New(kind Kind, message string) *ErrRevert {
	return &ErrRevert{
		kind:    kind,
		message: message,
	}
}

func Newf(kind Kind, format string, args ...any) *ErrRevert {
	return New(kind, fmt.Sprintf(format, args...))
}

func (e *ErrRevert) Error() string {
	if e.message == "" {
		return e.kind.String()
	}
	return e.kind.String() + ": " + e.message
}

func (e *ErrRevert) Kind() Kind {
	return e.kind
}

func (e *ErrRevert) Message() string {
	return e.message
}

// Is reports whether target is the sentinel of the same kind.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	return ok && t.message == "" && t.kind == e.kind
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}

// KindOf returns the kind of the revert wrapped in err.
func KindOf(err error) (Kind, bool) {
	var ve *ErrRevert
	if errors.As(err, &ve) {
		return ve.kind, true
	}
	return 0, false
}
