// Copyright 2024 The go-ethereum Authors
// This file is part of go-ethereum.
//
// go-ethereum is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// go-ethereum is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with go-ethereum. If not, see <http://www.gnu.org/licenses/>.

package migration

import "fmt"

// Kind classifies why an engine operation failed, so callers can branch on
// the failure category instead of matching error strings.
type Kind int

const (
	// KindConfig covers missing credentials, invalid addresses, and other
	// misconfiguration detected before any RPC is issued.
	KindConfig Kind = iota
	// KindNotFound covers "no code at source address" and "unknown block".
	KindNotFound
	// KindRPC wraps any node method failure outside a bulk fan-out.
	KindRPC
	// KindVerification covers local proof verification failures and an
	// on-chain migration flag that stays false after verifyMigrateContract.
	KindVerification
	// KindState covers an operation requested in the wrong state-machine state.
	KindState
	// KindNoOp is not a failure: it reports a no-op success (an empty
	// changed-key list). Diff's source-block-beyond-target case returns a
	// nil error instead.
	KindNoOp
	// KindFatal covers unhandled failures from the bulk RPC fan-out; any gap
	// in a batched result set would silently corrupt a downstream proof or
	// diff, so these escalate immediately rather than being retried.
	KindFatal
)

func (k Kind) String() string {
	switch k {
	case KindConfig:
		return "config"
	case KindNotFound:
		return "not_found"
	case KindRPC:
		return "rpc"
	case KindVerification:
		return "verification"
	case KindState:
		return "state"
	case KindNoOp:
		return "noop"
	case KindFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Error is the engine's error-as-value type: every failure surfaced by a
// public operation carries a Kind plus the operation name, so callers can
// distinguish a successful no-op from a fatal fan-out failure without
// matching on error text.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsNoOp reports whether err represents a successful no-op rather than a
// failure (an empty changed-key list).
func IsNoOp(err error) bool {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind == KindNoOp
	}
	return false
}

// KindOf extracts the Kind carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if ok := asError(err, &e); ok {
		return e.Kind, true
	}
	return 0, false
}

func asError(err error, target **Error) bool {
	for err != nil {
		if e, ok := err.(*Error); ok {
			*target = e
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

func newErr(op string, kind Kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}
