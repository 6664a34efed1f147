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
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsNoOp(t *testing.T) {
	require.True(t, IsNoOp(newErr("sync", KindNoOp, nil)))
	require.False(t, IsNoOp(newErr("sync", KindFatal, nil)))
	require.False(t, IsNoOp(errors.New("plain error")))
	require.False(t, IsNoOp(nil))
}

func TestIsNoOp_UnwrapsWrappedError(t *testing.T) {
	wrapped := fmt.Errorf("wrapping: %w", newErr("sync", KindNoOp, nil))
	require.True(t, IsNoOp(wrapped))
}

func TestKindOf(t *testing.T) {
	kind, ok := KindOf(newErr("migrate", KindVerification, errors.New("bad proof")))
	require.True(t, ok)
	require.Equal(t, KindVerification, kind)

	_, ok = KindOf(errors.New("plain error"))
	require.False(t, ok)
}

func TestError_MessageIncludesOpAndKind(t *testing.T) {
	err := newErr("migrateSrcContract", KindRPC, errors.New("connection refused"))
	require.Equal(t, "migrateSrcContract: rpc: connection refused", err.Error())
}

func TestError_MessageWithoutWrappedErr(t *testing.T) {
	err := newErr("sync", KindNoOp, nil)
	require.Equal(t, "sync: noop", err.Error())
}

func TestError_Unwrap(t *testing.T) {
	inner := errors.New("inner")
	err := newErr("op", KindFatal, inner)
	require.ErrorIs(t, err, inner)
}
