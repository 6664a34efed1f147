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

// Package diffengine computes the set of storage slots that disagree
// between a source contract and its target-chain mirror, using one of
// three independently groundable strategies: direct live comparison
// (storage), EIP-1186 proof comparison across two source-chain snapshots
// (getProof), or transaction-trace replay over the same window (srcTx).
package diffengine

import (
	"bytes"
	"context"
	"sort"

	"github.com/ethereum/go-ethereum/common"

	"github.com/storagemirror/engine/internal/rpcx"
)

// Entry is one disagreeing slot: SrcValue is the authoritative, up-to-date
// value; TargetValue is what the target-chain mirror currently holds (or
// is assumed to hold, for the two strategies that never query the target
// chain directly).
type Entry struct {
	Key         common.Hash
	SrcValue    common.Hash
	TargetValue common.Hash
}

// Diff is key-ascending; callers may rely on this order when chunking a
// diff into fixed-size migration batches.
type Diff []Entry

func (d Diff) sorted() Diff {
	sort.Slice(d, func(i, j int) bool {
		return bytes.Compare(d[i].Key[:], d[j].Key[:]) < 0
	})
	return d
}

// Params bundles every strategy's inputs. Not every field is meaningful to
// every strategy:
//
//   - storage compares addr's live value on Src as of SrcTag against
//     TgtAddr's live value on Tgt as of TgtTag — it is the only strategy
//     that ever talks to the target chain.
//   - getProof and srcTx both work entirely within the source chain,
//     comparing the window between FromBlock (the source block the target
//     mirror was last synchronized to) and ToBlock (the new source block);
//     TargetValue in their output is the value addr held on the source
//     chain at FromBlock, standing in for "what the mirror currently has"
//     without an extra round trip to the target chain.
type Params struct {
	Src    *rpcx.Client
	Tgt    *rpcx.Client
	Addr   common.Address
	TgtAddr common.Address

	SrcTag rpcx.BlockTag
	TgtTag rpcx.BlockTag

	FromBlock rpcx.BlockTag
	ToBlock   rpcx.BlockTag

	PageSize    int
	Concurrency int
}

// Strategy computes a Diff for the contract pair and block window named by
// Params. All three strategies return a Diff with an identical shape, so
// the migration coordinator can be written against the interface alone.
type Strategy interface {
	Diff(ctx context.Context, p Params) (Diff, error)
}
