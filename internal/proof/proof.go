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

// Package proof canonicalizes an eth_getProof response into the RLP shape
// the relay/proxy's on-chain Merkle-Patricia verifier expects, and checks
// each proof locally before the engine ever spends gas submitting it.
package proof

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethdb/memorydb"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/ethereum/go-ethereum/trie"

	"github.com/storagemirror/engine/internal/rpcx"
)

// Account is the canonical [nonce, balance, storageHash, codeHash] record
// the state trie actually stores — the "account" item of the outer proof.
type Account struct {
	Nonce       uint64
	Balance     *big.Int
	StorageHash common.Hash
	CodeHash    common.Hash
}

// StorageEntry is one [key, valueRLP, nodesRLP] triple of the assembled
// storage proof list.
type StorageEntry struct {
	Key   common.Hash
	Value *big.Int
	Nodes [][]byte
}

// Bundle is a fully assembled proof, ready to be RLP-encoded for the
// relay's verifyMigrateContract. Assemble does not verify it; call
// VerifyLocally for that.
type Bundle struct {
	Account      Account
	AccountNodes [][]byte
	Storage      []StorageEntry

	// Optimize selects the prefix-factored storage-proof encoding instead
	// of the plain concatenation. Only the plain form is implemented:
	// with Optimize false Encode emits it, and with Optimize true Encode
	// returns an error.
	Optimize bool
}

// Assemble canonicalizes an eth_getProof result into a Bundle: every hex
// proof node is decoded to raw bytes, and storage keys/values are carried
// as common.Hash / *big.Int so Encode can left-pad and RLP-encode them
// uniformly regardless of how short the node returned them.
func Assemble(result *rpcx.AccountResult) (*Bundle, error) {
	accountNodes, err := decodeHexNodes(result.AccountProof)
	if err != nil {
		return nil, fmt.Errorf("proof: account proof: %w", err)
	}

	b := &Bundle{
		Account: Account{
			Nonce:       result.Nonce,
			Balance:     result.Balance,
			StorageHash: result.StorageHash,
			CodeHash:    result.CodeHash,
		},
		AccountNodes: accountNodes,
	}
	for _, sp := range result.StorageProof {
		nodes, err := decodeHexNodes(sp.Proof)
		if err != nil {
			return nil, fmt.Errorf("proof: storage proof for key %s: %w", sp.Key, err)
		}
		b.Storage = append(b.Storage, StorageEntry{
			Key:   common.HexToHash(sp.Key),
			Value: sp.Value,
			Nodes: nodes,
		})
	}
	return b, nil
}

func decodeHexNodes(hexNodes []string) ([][]byte, error) {
	nodes := make([][]byte, len(hexNodes))
	for i, h := range hexNodes {
		b, err := hexutil.Decode(h)
		if err != nil {
			return nil, fmt.Errorf("proof: decode node %d: %w", i, err)
		}
		nodes[i] = b
	}
	return nodes, nil
}

// rlpAccount mirrors Account's field order exactly, so RLP encoding emits
// the wire shape the verifier parses: [nonce, balance, storageHash, codeHash].
type rlpAccount struct {
	Nonce       uint64
	Balance     *big.Int
	StorageHash common.Hash
	CodeHash    common.Hash
}

func (b *Bundle) encodeAccount() ([]byte, error) {
	return rlp.EncodeToBytes(rlpAccount{
		Nonce:       b.Account.Nonce,
		Balance:     b.Account.Balance,
		StorageHash: b.Account.StorageHash,
		CodeHash:    b.Account.CodeHash,
	})
}

// rlpStorageEntry is the wire shape of one storage-proof triple:
// [key32, valueRLP, nodesRLP]. valueRLP is itself an RLP-encoded scalar
// (minimal big-endian, per the assembler's canonicalization rule), carried
// here as a nested byte string so the outer encoding doesn't double-wrap it.
type rlpStorageEntry struct {
	Key   common.Hash
	Value []byte
	Nodes [][]byte
}

func (b *Bundle) encodeStorageProofs() ([]byte, error) {
	entries := make([]rlpStorageEntry, len(b.Storage))
	for i, se := range b.Storage {
		valueRLP, err := rlp.EncodeToBytes(se.Value)
		if err != nil {
			return nil, fmt.Errorf("proof: encode storage value for key %s: %w", se.Key, err)
		}
		entries[i] = rlpStorageEntry{Key: se.Key, Value: valueRLP, Nodes: se.Nodes}
	}
	return rlp.EncodeToBytes(entries)
}

// Encode produces the outer RLP list the proxy/relay verifier consumes:
// [accountRecord, accountNodesRLP, optimizedFlag, storageProofsRLP].
// accountNodesRLP and storageProofsRLP are themselves RLP-encoded lists,
// matching eth_getProof's own "list of raw nodes" shape rather than a
// nested node trie. optimizedFlag is always false (see Bundle.Optimize);
// it is still encoded explicitly so the on-chain verifier's parse offsets
// never depend on which implementation produced the payload.
func (b *Bundle) Encode() ([]byte, error) {
	accountRLP, err := b.encodeAccount()
	if err != nil {
		return nil, fmt.Errorf("proof: encode account: %w", err)
	}
	accountNodesRLP, err := rlp.EncodeToBytes(b.AccountNodes)
	if err != nil {
		return nil, fmt.Errorf("proof: encode account nodes: %w", err)
	}
	if b.Optimize {
		return nil, fmt.Errorf("proof: prefix-factored optimized encoding is not implemented")
	}
	flagRLP, err := rlp.EncodeToBytes(b.Optimize)
	if err != nil {
		return nil, fmt.Errorf("proof: encode optimize flag: %w", err)
	}
	storageRLP, err := b.encodeStorageProofs()
	if err != nil {
		return nil, err
	}
	return rlp.EncodeToBytes([][]byte{accountRLP, accountNodesRLP, flagRLP, storageRLP})
}

// EncodeAccountProof produces just the [accountRecord, accountNodesRLP]
// pair, the shape the relay's verifyMigrateContract wants for both the
// source and the proxy account proof — a full storage-proof list makes no
// sense there, since the relay re-derives the storage root from the
// account record itself rather than walking individual slots.
func (b *Bundle) EncodeAccountProof() ([]byte, error) {
	accountRLP, err := b.encodeAccount()
	if err != nil {
		return nil, fmt.Errorf("proof: encode account: %w", err)
	}
	accountNodesRLP, err := rlp.EncodeToBytes(b.AccountNodes)
	if err != nil {
		return nil, fmt.Errorf("proof: encode account nodes: %w", err)
	}
	return rlp.EncodeToBytes([][]byte{accountRLP, accountNodesRLP})
}

// VerifyLocally checks that every storage proof in b terminates at
// b.Account.StorageHash, and that the account proof terminates at
// stateRoot with the exact account record b carries. It returns an error
// naming the failing key on the first mismatch rather than panicking; the
// migration coordinator treats any non-nil return as fatal.
func (b *Bundle) VerifyLocally(stateRoot common.Hash, addr common.Address) error {
	accountRLP, err := b.encodeAccount()
	if err != nil {
		return fmt.Errorf("proof: encode account: %w", err)
	}
	if err := verifyProof(stateRoot, crypto.Keccak256(addr.Bytes()), b.AccountNodes, accountRLP); err != nil {
		return fmt.Errorf("proof: account proof does not verify against state root %s: %w", stateRoot, err)
	}
	for _, se := range b.Storage {
		valueRLP, err := rlp.EncodeToBytes(se.Value)
		if err != nil {
			return fmt.Errorf("proof: encode storage value for key %s: %w", se.Key, err)
		}
		if err := verifyProof(b.Account.StorageHash, crypto.Keccak256(se.Key.Bytes()), se.Nodes, valueRLP); err != nil {
			return fmt.Errorf("proof: storage proof for key %s does not verify against storage root %s: %w", se.Key, b.Account.StorageHash, err)
		}
	}
	return nil
}

// verifyProof feeds nodes into an in-memory key-value store keyed by each
// node's own hash and asks trie.VerifyProof to walk them from root down to
// key. An RPC-only client never has a real trie.Database backing the
// source node's state, so this in-memory substitute is how it verifies a
// fetched proof before trusting it.
func verifyProof(root common.Hash, key []byte, nodes [][]byte, wantValue []byte) error {
	db := memorydb.New()
	for _, n := range nodes {
		if err := db.Put(crypto.Keccak256(n), n); err != nil {
			return err
		}
	}
	got, err := trie.VerifyProof(root, key, db)
	if err != nil {
		return err
	}
	// A key absent from the trie proves by exclusion: VerifyProof returns a
	// nil value rather than the RLP encoding of zero. Both mean "zero slot".
	if len(got) == 0 && isZeroRLP(wantValue) {
		return nil
	}
	if string(got) != string(wantValue) {
		return fmt.Errorf("proof value mismatch: got %x want %x", got, wantValue)
	}
	return nil
}

// isZeroRLP reports whether b is the RLP encoding of the integer zero,
// i.e. the single byte 0x80.
func isZeroRLP(b []byte) bool {
	return len(b) == 1 && b[0] == 0x80
}
