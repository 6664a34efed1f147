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

// Package slot derives the storage keys Solidity's layout rules assign to
// mapping and dynamic-array entries, so tests and diff-verification tooling
// can name a slot by its source-level meaning instead of a raw 32-byte
// integer.
package slot

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/holiman/uint256"
)

// MappingKey computes the storage key of mapping[key] where mapping itself
// occupies base: keccak256(pad32(key) ‖ pad32(base)), the layout every
// Solidity compiler version uses for value-type mapping keys.
func MappingKey(base uint64, key common.Hash) common.Hash {
	var baseWord uint256.Int
	baseWord.SetUint64(base)
	baseBytes := baseWord.Bytes32()

	buf := make([]byte, 64)
	copy(buf[:32], key[:])
	copy(buf[32:], baseBytes[:])
	return crypto.Keccak256Hash(buf)
}

// ArrayElement computes the storage key of a dynamic array's nth element,
// given the array length slot base: keccak256(pad32(base)) + n.
func ArrayElement(base uint64, n uint64) common.Hash {
	var baseWord uint256.Int
	baseWord.SetUint64(base)
	baseBytes := baseWord.Bytes32()
	start := crypto.Keccak256Hash(baseBytes[:])

	var startWord, offset uint256.Int
	startWord.SetBytes32(start[:])
	offset.SetUint64(n)
	startWord.Add(&startWord, &offset)
	result := startWord.Bytes32()
	return common.Hash(result)
}
