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

	"github.com/storagemirror/engine/internal/keys"
	"github.com/storagemirror/engine/internal/rpcx"
)

// StorageStrategy enumerates both contracts' full key sets and compares
// live values for every key present in either enumeration. It requires the
// parity_listStorageKeys extension on both endpoints.
type StorageStrategy struct{}

func (StorageStrategy) Diff(ctx context.Context, p Params) (Diff, error) {
	srcKeys, err := keys.Enumerate(ctx, p.Src, p.Addr, p.SrcTag, p.PageSize)
	if err != nil {
		return nil, fmt.Errorf("diffengine: storage: enumerate source: %w", err)
	}
	tgtKeys, err := keys.Enumerate(ctx, p.Tgt, p.TgtAddr, p.TgtTag, p.PageSize)
	if err != nil {
		return nil, fmt.Errorf("diffengine: storage: enumerate target: %w", err)
	}

	inSrc := make(map[common.Hash]struct{}, len(srcKeys))
	for _, k := range srcKeys {
		inSrc[k] = struct{}{}
	}
	inTgt := make(map[common.Hash]struct{}, len(tgtKeys))
	for _, k := range tgtKeys {
		inTgt[k] = struct{}{}
	}

	union := make([]common.Hash, 0, len(srcKeys)+len(tgtKeys))
	seen := make(map[common.Hash]struct{}, len(srcKeys)+len(tgtKeys))
	for _, k := range append(append([]common.Hash{}, srcKeys...), tgtKeys...) {
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		union = append(union, k)
	}

	type pair struct{ src, tgt common.Hash }
	results, err := rpcx.FanOut(ctx, p.Concurrency, union, func(ctx context.Context, key common.Hash) (pair, error) {
		var pr pair
		if _, ok := inSrc[key]; ok {
			v, err := p.Src.StorageAt(ctx, p.Addr, key, p.SrcTag)
			if err != nil {
				return pr, fmt.Errorf("storage at source key %s: %w", key, err)
			}
			pr.src = v
		}
		if _, ok := inTgt[key]; ok {
			v, err := p.Tgt.StorageAt(ctx, p.TgtAddr, key, p.TgtTag)
			if err != nil {
				return pr, fmt.Errorf("storage at target key %s: %w", key, err)
			}
			pr.tgt = v
		}
		return pr, nil
	})
	if err != nil {
		return nil, fmt.Errorf("diffengine: storage: %w", err)
	}

	var out Diff
	for i, key := range union {
		if results[i].src == results[i].tgt {
			continue
		}
		out = append(out, Entry{Key: key, SrcValue: results[i].src, TargetValue: results[i].tgt})
	}
	return out.sorted(), nil
}
