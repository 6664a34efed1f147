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

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestState_String(t *testing.T) {
	cases := map[State]string{
		Uninitialized: "uninitialized",
		Initialized:   "initialized",
		LogicDeployed: "logic_deployed",
		ProxyDeployed: "proxy_deployed",
		Migrated:      "migrated",
		Synchronizing: "synchronizing",
		Failed:        "failed",
		State(99):     "unknown",
	}
	for state, want := range cases {
		require.Equal(t, want, state.String())
	}
}

func TestRequireState_Matches(t *testing.T) {
	require.NoError(t, requireState("op", Initialized, Initialized))
}

func TestRequireState_Mismatch(t *testing.T) {
	err := requireState("migrateSrcContract", Uninitialized, Initialized)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindState, kind)
	require.Contains(t, err.Error(), "expected state initialized, got uninitialized")
}

func TestRequireOneOf_MatchesAnyAllowedState(t *testing.T) {
	require.NoError(t, requireOneOf("migrateChangesToProxy", Synchronizing, Migrated, Synchronizing))
	require.NoError(t, requireOneOf("migrateChangesToProxy", Migrated, Migrated, Synchronizing))
}

func TestRequireOneOf_RejectsStateNotInList(t *testing.T) {
	err := requireOneOf("migrateChangesToProxy", Initialized, Migrated, Synchronizing)
	require.Error(t, err)
	require.Contains(t, err.Error(), "expected state migrated, got initialized")
}

func TestRequireOneOf_RejectsFailedEvenThoughItSortsHigherThanMigrated(t *testing.T) {
	err := requireOneOf("migrateChangesToProxy", Failed, Migrated, Synchronizing)
	require.Error(t, err)
	require.Contains(t, err.Error(), "got failed")
}
