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

package diffengine

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/storagemirror/engine/internal/rpcx"
)

// FindDeploymentBlock locates the lowest block at which addr already has
// non-empty code, via a bounded binary search between 0 and the chain's
// current head. It assumes monotonicity: once a contract has code at some
// block, it has code at every later block — true for any address that is
// never the target of SELFDESTRUCT, which the engine does not need to
// handle since it only migrates contracts still live on the source chain.
func FindDeploymentBlock(ctx context.Context, cl *rpcx.Client, addr common.Address) (uint64, error) {
	head, err := cl.BlockNumber(ctx)
	if err != nil {
		return 0, fmt.Errorf("diffengine: deployment search: head: %w", err)
	}
	hasCode, err := hasCodeAt(ctx, cl, addr, head)
	if err != nil {
		return 0, err
	}
	if !hasCode {
		return 0, fmt.Errorf("diffengine: deployment search: %s has no code at head block %d", addr, head)
	}

	lo, hi := uint64(0), head
	for lo < hi {
		mid := lo + (hi-lo)/2
		ok, err := hasCodeAt(ctx, cl, addr, mid)
		if err != nil {
			return 0, err
		}
		if ok {
			hi = mid
		} else {
			lo = mid + 1
		}
	}
	return lo, nil
}

func hasCodeAt(ctx context.Context, cl *rpcx.Client, addr common.Address, block uint64) (bool, error) {
	code, err := cl.CodeAt(ctx, addr, rpcx.BlockNumber(block))
	if err != nil {
		return false, fmt.Errorf("diffengine: deployment search: eth_getCode at %d: %w", block, err)
	}
	return len(code) > 0, nil
}
