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
	"context"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/storagemirror/engine/internal/diffengine"
)

func TestParams_SetDefaults(t *testing.T) {
	p := Params{}
	p.setDefaults()
	require.Equal(t, DefaultChunkSize, p.ChunkSize)
	require.Equal(t, DefaultConcurrency, p.Concurrency)
}

func TestParams_SetDefaultsLeavesExplicitValues(t *testing.T) {
	p := Params{ChunkSize: 7, Concurrency: 3}
	p.setDefaults()
	require.Equal(t, 7, p.ChunkSize)
	require.Equal(t, 3, p.Concurrency)
}

func TestNew_StartsUninitialized(t *testing.T) {
	c := New(nil, nil, nil, nil, Params{})
	require.Equal(t, Uninitialized, c.State())
}

type stubStrategy struct {
	called bool
	gotP   diffengine.Params
	diff   diffengine.Diff
	err    error
}

func (s *stubStrategy) Diff(ctx context.Context, p diffengine.Params) (diffengine.Diff, error) {
	s.called = true
	s.gotP = p
	return s.diff, s.err
}

func TestCoordinator_Diff_EmptyRangeIsNoOpWithoutCallingStrategy(t *testing.T) {
	c := &Coordinator{Params: Params{SrcAddr: common.HexToAddress("0x01")}}
	strat := &stubStrategy{}

	diff, err := c.Diff(context.Background(), strat, 10, 5)
	require.NoError(t, err)
	require.Nil(t, diff)
	require.False(t, strat.called, "strategy must not run when fromBlock > toBlock")
}

func TestCoordinator_Diff_DelegatesToStrategy(t *testing.T) {
	srcAddr := common.HexToAddress("0x01")
	proxyAddr := common.HexToAddress("0x02")
	want := diffengine.Diff{{Key: common.HexToHash("0x03")}}

	c := &Coordinator{Params: Params{SrcAddr: srcAddr, ProxyAddr: proxyAddr, PageSize: 64, Concurrency: 8}}
	strat := &stubStrategy{diff: want}

	got, err := c.Diff(context.Background(), strat, 5, 10)
	require.NoError(t, err)
	require.Equal(t, want, got)
	require.True(t, strat.called)
	require.Equal(t, srcAddr, strat.gotP.Addr)
	require.Equal(t, proxyAddr, strat.gotP.TgtAddr)
	require.Equal(t, uint64(5), strat.gotP.FromBlock.Uint64())
	require.Equal(t, uint64(10), strat.gotP.ToBlock.Uint64())
}

func TestMigrateChangesToProxy_EmptyKeysIsNoOp(t *testing.T) {
	c := &Coordinator{state: Migrated}

	err := c.MigrateChangesToProxy(context.Background(), nil, 42)
	require.Error(t, err)
	require.True(t, IsNoOp(err))
	require.Equal(t, Migrated, c.State(), "a no-op sync must not perturb the state machine")
}

func TestMigrateChangesToProxy_RejectsStateBeforeMigrated(t *testing.T) {
	c := &Coordinator{state: Initialized}

	err := c.MigrateChangesToProxy(context.Background(), []common.Hash{common.HexToHash("0x01")}, 42)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindState, kind)
}

func TestMigrateChangesToProxy_RejectsFailedState(t *testing.T) {
	c := &Coordinator{state: Failed}

	err := c.MigrateChangesToProxy(context.Background(), []common.Hash{common.HexToHash("0x01")}, 42)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindState, kind)
}

func TestMigrateSrcContract_RejectsStateOtherThanInitialized(t *testing.T) {
	c := &Coordinator{state: Migrated}

	err := c.MigrateSrcContract(context.Background(), 100)
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindState, kind)
}

func TestGetLatestBlockNumber_RequiresBoundRelay(t *testing.T) {
	c := &Coordinator{}
	_, err := c.GetLatestBlockNumber(context.Background())
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindState, kind)
}

func TestGetCurrentBlockNumber_RequiresBoundRelayAndProxy(t *testing.T) {
	c := &Coordinator{}
	_, err := c.GetCurrentBlockNumber(context.Background())
	require.Error(t, err)
	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, KindState, kind)
}
