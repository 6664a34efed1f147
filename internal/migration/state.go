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

// State is one point in the coordinator's per-instance lifecycle. The
// state machine and cached addresses are only ever touched by the
// goroutine driving the coordinator's exported methods — see the
// coordinator's own doc comment for why no lock guards them.
type State int

const (
	Uninitialized State = iota
	Initialized
	LogicDeployed
	ProxyDeployed
	Migrated
	Synchronizing
	Failed
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Initialized:
		return "initialized"
	case LogicDeployed:
		return "logic_deployed"
	case ProxyDeployed:
		return "proxy_deployed"
	case Migrated:
		return "migrated"
	case Synchronizing:
		return "synchronizing"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// requireState returns a KindState *Error naming op if current != want.
func requireState(op string, current, want State) error {
	if current != want {
		return newErr(op, KindState, stateMismatch{want: want, got: current})
	}
	return nil
}

// requireOneOf returns a KindState *Error naming op if current is not one of
// allowed. Failed sorts after Migrated in the iota order above but is not a
// state migrateChangesToProxy may run from, so membership is checked
// explicitly rather than with an ordinal comparison.
func requireOneOf(op string, current State, allowed ...State) error {
	for _, want := range allowed {
		if current == want {
			return nil
		}
	}
	want := Uninitialized
	if len(allowed) > 0 {
		want = allowed[0]
	}
	return newErr(op, KindState, stateMismatch{want: want, got: current})
}

type stateMismatch struct {
	want, got State
}

func (m stateMismatch) Error() string {
	return "expected state " + m.want.String() + ", got " + m.got.String()
}
