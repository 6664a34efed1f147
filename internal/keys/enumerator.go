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

// Package keys enumerates a contract's full storage key set via the
// Parity-style parity_listStorageKeys pagination extension, preserving the
// source node's trie pre-order so downstream proof assembly never needs to
// re-sort what it was handed.
package keys

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/storagemirror/engine/internal/rpcx"
)

// DefaultPageSize is the page size used when callers don't override it;
// the spec caps pages at 256 and the engine defaults to that ceiling.
const DefaultPageSize = 256

// MaxPageSize is the hard ceiling callers may request a page at.
const MaxPageSize = 256

// Enumerate pages through addr's full storage trie at tag via
// cl.ParityListStorageKeys, returning every key in the order the node
// reported it. Some node implementations return the cursor key itself as
// the first entry of the next page; Enumerate defensively drops any key
// already seen rather than assuming clean non-overlapping pages (see
// SPEC_FULL.md's open-question resolution for parity_listStorageKeys
// pagination).
func Enumerate(ctx context.Context, cl *rpcx.Client, addr common.Address, tag rpcx.BlockTag, pageSize int) ([]common.Hash, error) {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}

	var (
		out    []common.Hash
		seen   = make(map[common.Hash]struct{})
		cursor *common.Hash
		pages  int
	)
	for {
		page, err := cl.ParityListStorageKeys(ctx, addr, pageSize, cursor, tag)
		if err != nil {
			return nil, fmt.Errorf("keys: enumerate %s at %s: %w", addr, tag, err)
		}
		pages++
		overlap := 0
		for _, k := range page.Keys {
			if _, dup := seen[k]; dup {
				overlap++
				continue
			}
			seen[k] = struct{}{}
			out = append(out, k)
		}
		if overlap > 0 {
			log.Warn("keys: dropped overlapping keys across pagination boundary", "contract", addr, "page", pages, "overlap", overlap)
		}
		if page.NextOffset == nil {
			break
		}
		cursor = page.NextOffset
	}
	log.Debug("keys: enumeration complete", "contract", addr, "block", tag, "pages", pages, "keys", len(out))
	return out, nil
}
