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

// Package headercodec rebuilds the exact RLP a node hashed for one of its
// block headers, from the JSON fields an eth_getBlockByNumber response
// exposes. types.Header's own EncodeRLP always emits 15 fields (or more,
// post-merge); the relay's verifyMigrateContract is handed the target
// chain's latest header, and that chain may be PoW (15 fields) or PoA
// (13 fields, no mixHash/nonce), so this package re-derives the RLP shape
// from what the node actually reported rather than assuming one.
package headercodec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// Header holds the 13 mandatory fields every Ethereum-family header carries,
// plus the two PoW-only fields when the source node reported them.
type Header struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Miner       common.Address
	StateRoot   common.Hash
	TxRoot      common.Hash
	ReceiptRoot common.Hash
	Bloom       []byte
	Difficulty  uint64
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte

	// MixDigest and Nonce are both nil, or both set: the node's header
	// either carries the PoW fields or it doesn't, there is no third state.
	// Nonce is the raw 8-byte field exactly as the node reported it — unlike
	// every other integer field here, it is not a minimal big-endian
	// integer on the wire, so it can't be carried as a uint64 without
	// losing leading zero bytes that are part of its canonical encoding.
	MixDigest *common.Hash
	Nonce     *[8]byte
}

// IsPoW reports whether the header carries the 14th/15th PoW fields.
func (h *Header) IsPoW() bool { return h.MixDigest != nil && h.Nonce != nil }

// rlpFields13 is the wire shape of a PoA header: 13 fields, RLP-encoded in
// this exact order. Integer fields use rlp.Uint64-compatible plain uint64s,
// which go-ethereum's rlp package already encodes as minimal big-endian
// with no leading zero byte — satisfying the "minimal big-endian" rule for
// free.
type rlpFields13 struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Miner       common.Address
	StateRoot   common.Hash
	TxRoot      common.Hash
	ReceiptRoot common.Hash
	Bloom       []byte
	Difficulty  uint64
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
}

// rlpFields15 appends MixDigest and Nonce to the 13 mandatory fields. Nonce
// is a fixed [8]byte array rather than a uint64: rlp encodes a byte array as
// a string of exactly its declared length, which is the canonical 8-byte
// nonce encoding — a uint64 would instead emit a minimal big-endian integer,
// dropping any leading zero byte the real nonce carries.
type rlpFields15 struct {
	ParentHash  common.Hash
	UncleHash   common.Hash
	Miner       common.Address
	StateRoot   common.Hash
	TxRoot      common.Hash
	ReceiptRoot common.Hash
	Bloom       []byte
	Difficulty  uint64
	Number      uint64
	GasLimit    uint64
	GasUsed     uint64
	Time        uint64
	Extra       []byte
	MixDigest   common.Hash
	Nonce       [8]byte
}

// EncodeRLP produces the byte-exact RLP list this header's source chain
// hashed to produce its block hash: 13 items for a PoA header, 15 for PoW.
func (h *Header) EncodeRLP() ([]byte, error) {
	base := rlpFields13{
		ParentHash:  h.ParentHash,
		UncleHash:   h.UncleHash,
		Miner:       h.Miner,
		StateRoot:   h.StateRoot,
		TxRoot:      h.TxRoot,
		ReceiptRoot: h.ReceiptRoot,
		Bloom:       h.Bloom,
		Difficulty:  h.Difficulty,
		Number:      h.Number,
		GasLimit:    h.GasLimit,
		GasUsed:     h.GasUsed,
		Time:        h.Time,
		Extra:       h.Extra,
	}
	if !h.IsPoW() {
		return rlp.EncodeToBytes(base)
	}
	full := rlpFields15{
		base.ParentHash, base.UncleHash, base.Miner, base.StateRoot, base.TxRoot, base.ReceiptRoot,
		base.Bloom, base.Difficulty, base.Number, base.GasLimit, base.GasUsed, base.Time, base.Extra,
		*h.MixDigest, *h.Nonce,
	}
	return rlp.EncodeToBytes(full)
}

// Hash returns the Keccak-256 hash of the header's canonical RLP encoding.
// For a header built from GetBlockHeader's RPC response, this must equal
// the node-reported block hash; callers are expected to check that
// themselves (see Verify) since a mismatch means the 13-vs-15 field
// decision was wrong for this chain.
func (h *Header) Hash() (common.Hash, error) {
	enc, err := h.EncodeRLP()
	if err != nil {
		return common.Hash{}, fmt.Errorf("headercodec: encode: %w", err)
	}
	return crypto.Keccak256Hash(enc), nil
}

// Verify re-derives the header's hash and compares it against want,
// returning an error that names both hashes on mismatch.
func (h *Header) Verify(want common.Hash) error {
	got, err := h.Hash()
	if err != nil {
		return err
	}
	if got != want {
		return fmt.Errorf("headercodec: recomputed hash %s does not match reported hash %s", got, want)
	}
	return nil
}
