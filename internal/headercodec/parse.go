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

package headercodec

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/storagemirror/engine/internal/rpcx"
)

var zeroHash common.Hash

// Parse builds a Header from the raw JSON fields an eth_getBlockByNumber
// response carries. A go-ethereum-family node always emits mixHash/nonce in
// the response regardless of consensus engine, so their presence in JSON
// can't signal the PoW/PoA split the wire RLP needs; instead Parse treats
// both fields as real (PoW, 15-field RLP) only when at least one is
// non-zero, and as Clique's zero-filled placeholders (PoA, 13-field RLP)
// otherwise. Callers should always follow up with Header.Verify against the
// node-reported hash, which is the actual authority on whether the guess
// was right.
func Parse(raw *rpcx.RawBlockHeader) *Header {
	h := &Header{
		ParentHash:  raw.ParentHash,
		UncleHash:   raw.UncleHash,
		Miner:       raw.Miner,
		StateRoot:   raw.StateRoot,
		TxRoot:      raw.TxRoot,
		ReceiptRoot: raw.ReceiptRoot,
		Bloom:       []byte(raw.Bloom),
		Extra:       []byte(raw.Extra),
	}
	if raw.Difficulty != nil {
		h.Difficulty = raw.Difficulty.ToInt().Uint64()
	}
	if raw.Number != nil {
		h.Number = raw.Number.ToInt().Uint64()
	}
	h.GasLimit = uint64(raw.GasLimit)
	h.GasUsed = uint64(raw.GasUsed)
	h.Time = uint64(raw.Time)

	nonce := decodeNonce(raw.Nonce)
	if raw.MixDigest != zeroHash || nonce != [8]byte{} {
		mix := raw.MixDigest
		h.MixDigest = &mix
		h.Nonce = &nonce
	}
	return h
}

// decodeNonce right-aligns raw into a fixed 8-byte array, preserving any
// leading zero bytes the node reported rather than collapsing them away —
// the nonce's canonical RLP encoding depends on all 8 bytes being present.
func decodeNonce(raw []byte) [8]byte {
	var n [8]byte
	if len(raw) > len(n) {
		raw = raw[len(raw)-len(n):]
	}
	copy(n[len(n)-len(raw):], raw)
	return n
}
