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

// GetProofStrategy enumerates the source contract's key set at ToBlock via
// parity_listStorageKeys, then fetches one eth_getProof result from the
// source at FromBlock and one at ToBlock for that key list and compares
// values entry by entry. Keys created in the window are found; a key that
// held a value at FromBlock and is cleared by ToBlock is not in the
// enumerated set, so its change is not reported.
type GetProofStrategy struct{}

func (GetProofStrategy) Diff(ctx context.Context, p Params) (Diff, error) {
	keyList, err := keys.Enumerate(ctx, p.Src, p.Addr, p.ToBlock, p.PageSize)
	if err != nil {
		return nil, fmt.Errorf("diffengine: getProof: enumerate: %w", err)
	}
	if len(keyList) == 0 {
		return nil, nil
	}

	oldResult, err := p.Src.GetProof(ctx, p.Addr, keyList, p.FromBlock)
	if err != nil {
		return nil, fmt.Errorf("diffengine: getProof: proof at %s: %w", p.FromBlock, err)
	}
	newResult, err := p.Src.GetProof(ctx, p.Addr, keyList, p.ToBlock)
	if err != nil {
		return nil, fmt.Errorf("diffengine: getProof: proof at %s: %w", p.ToBlock, err)
	}

	oldValues := valuesByKey(oldResult.StorageProof)
	newValues := valuesByKey(newResult.StorageProof)

	var out Diff
	for _, key := range keyList {
		oldV := oldValues[key]
		newV := newValues[key]
		if oldV == newV {
			continue
		}
		out = append(out, Entry{Key: key, SrcValue: newV, TargetValue: oldV})
	}
	return out.sorted(), nil
}

// valuesByKey indexes a GetProof response's storage entries by raw 32-byte
// key, left-padding each reported value to a full word.
func valuesByKey(entries []rpcx.StorageResult) map[common.Hash]common.Hash {
	out := make(map[common.Hash]common.Hash, len(entries))
	for _, e := range entries {
		var v common.Hash
		if e.Value != nil {
			v = common.BigToHash(e.Value)
		}
		out[common.HexToHash(e.Key)] = v
	}
	return out
}
