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

package rpcx

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// BlockTag identifies a block either by number or by one of the sentinel
// tags (latest/earliest/pending) accepted by every JSON-RPC method the
// facade consumes.
type BlockTag struct {
	number *big.Int
	named  string
}

// BlockNumber returns a tag identifying an exact block number.
func BlockNumber(n uint64) BlockTag {
	return BlockTag{number: new(big.Int).SetUint64(n)}
}

// BlockNumberBig returns a tag identifying an exact block number.
func BlockNumberBig(n *big.Int) BlockTag {
	return BlockTag{number: new(big.Int).Set(n)}
}

// Latest, Earliest and Pending are the three sentinel tags.
func Latest() BlockTag   { return BlockTag{named: "latest"} }
func Earliest() BlockTag { return BlockTag{named: "earliest"} }
func Pending() BlockTag  { return BlockTag{named: "pending"} }

// IsNumber reports whether the tag names an exact block number.
func (t BlockTag) IsNumber() bool { return t.number != nil }

// Uint64 returns the block number. Valid only when IsNumber is true.
func (t BlockTag) Uint64() uint64 { return t.number.Uint64() }

// Arg renders the tag as the JSON-RPC parameter go-ethereum's own RPC
// server and every Parity-derived node expect: a 0x-prefixed quantity for
// exact block numbers, or the bare sentinel string otherwise.
func (t BlockTag) Arg() string {
	if t.number != nil {
		return hexutil.EncodeBig(t.number)
	}
	if t.named == "" {
		return "latest"
	}
	return t.named
}

func (t BlockTag) String() string { return t.Arg() }

// BigInt returns the block number, or nil for a named tag. Used by callers
// (e.g. ethclient.CodeAt) that take *big.Int rather than a tagged string.
func (t BlockTag) BigInt() *big.Int {
	if t.number == nil {
		return nil
	}
	return new(big.Int).Set(t.number)
}
