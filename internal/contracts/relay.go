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

// Package contracts holds hand-written bind.BoundContract wrappers for the
// relay and proxy contracts, one struct per contract carrying both its
// view and its transacting methods (not abigen's split Caller/Transactor/
// session types) — there is no .sol source in this repo to run
// abigen against, so these are written directly from the ABI surface the
// engine depends on.
package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// RelayABI is the input ABI used to bind Relay.
const RelayABI = `[
	{"inputs":[{"internalType":"address","name":"source","type":"address"}],"stateMutability":"nonpayable","type":"constructor"},
	{"inputs":[{"internalType":"bytes32","name":"stateRoot","type":"bytes32"},{"internalType":"uint256","name":"blockNumber","type":"uint256"}],"name":"addBlock","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"blockNumber","type":"uint256"}],"name":"getStateRoot","outputs":[{"internalType":"bytes32","name":"","type":"bytes32"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getSource","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"proxy","type":"address"}],"name":"getMigrationState","outputs":[{"internalType":"bool","name":"","type":"bool"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"address","name":"proxy","type":"address"}],"name":"getCurrentBlockNumber","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getLatestBlockNumber","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"},
	{"inputs":[{"internalType":"bytes","name":"srcAccountProof","type":"bytes"},{"internalType":"bytes","name":"proxyAccountProof","type":"bytes"},{"internalType":"bytes","name":"encodedHeader","type":"bytes"},{"internalType":"address","name":"proxy","type":"address"},{"internalType":"uint256","name":"targetBlockNum","type":"uint256"},{"internalType":"uint256","name":"srcBlockNum","type":"uint256"}],"name":"verifyMigrateContract","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"uint256","name":"blockHash","type":"uint256"}],"name":"setCurrentStateBlock","outputs":[],"stateMutability":"nonpayable","type":"function"}
]`

// DeployRelay deploys a new Relay contract, binding an instance to the
// returned address. bytecode is the compiled init code for the relay
// contract; this package does not compile Solidity, so the caller supplies
// it (typically loaded from a build artifact named in Config).
func DeployRelay(auth *bind.TransactOpts, backend bind.ContractBackend, bytecode []byte, source common.Address) (common.Address, *types.Transaction, *Relay, error) {
	parsed, err := abi.JSON(strings.NewReader(RelayABI))
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	address, tx, contract, err := bind.DeployContract(auth, parsed, bytecode, backend, source)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Relay{contract: contract, address: address}, nil
}

// NewRelay binds an existing Relay contract at address.
func NewRelay(address common.Address, backend bind.ContractBackend) (*Relay, error) {
	parsed, err := abi.JSON(strings.NewReader(RelayABI))
	if err != nil {
		return nil, err
	}
	return &Relay{contract: bind.NewBoundContract(address, parsed, backend, backend, backend), address: address}, nil
}

// Relay is a Go binding around the relay contract: it holds attested
// source-chain state roots per block number and the per-proxy migration
// flag the coordinator polls.
type Relay struct {
	contract *bind.BoundContract
	address  common.Address
}

// Address returns the contract's own bound address.
func (r *Relay) Address() common.Address { return r.address }

// AddBlock registers an attested source-chain state root for blockNumber.
func (r *Relay) AddBlock(opts *bind.TransactOpts, stateRoot common.Hash, blockNumber *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "addBlock", stateRoot, blockNumber)
}

// GetStateRoot reads back the state root registered for blockNumber.
func (r *Relay) GetStateRoot(opts *bind.CallOpts, blockNumber *big.Int) (common.Hash, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getStateRoot", blockNumber); err != nil {
		return common.Hash{}, err
	}
	return *abi.ConvertType(out[0], new(common.Hash)).(*common.Hash), nil
}

// GetSource returns the source-chain contract address this relay attests for.
func (r *Relay) GetSource(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getSource"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetMigrationState reports whether proxy has completed its initial migration.
func (r *Relay) GetMigrationState(opts *bind.CallOpts, proxy common.Address) (bool, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getMigrationState", proxy); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// GetCurrentBlockNumber returns the source block number proxy is currently
// synchronized to.
func (r *Relay) GetCurrentBlockNumber(opts *bind.CallOpts, proxy common.Address) (*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getCurrentBlockNumber", proxy); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// GetLatestBlockNumber returns the highest source block number the relay
// has an attested state root for, across all proxies.
func (r *Relay) GetLatestBlockNumber(opts *bind.CallOpts) (*big.Int, error) {
	var out []interface{}
	if err := r.contract.Call(opts, &out, "getLatestBlockNumber"); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new(*big.Int)).(**big.Int), nil
}

// VerifyMigrateContract submits the proxy's post-migration account proof,
// the attested source account proof, and the target-chain block header
// they must both be consistent with; a successful call flips proxy's
// migration flag from false to true exactly once.
func (r *Relay) VerifyMigrateContract(opts *bind.TransactOpts, srcAccountProof, proxyAccountProof, encodedHeader []byte, proxy common.Address, targetBlockNum, srcBlockNum *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "verifyMigrateContract", srcAccountProof, proxyAccountProof, encodedHeader, proxy, targetBlockNum, srcBlockNum)
}

// SetCurrentStateBlock is invoked by the proxy contract itself during
// updateStorage, not by the engine; it is exposed here only so tests can
// assert on the ABI surface without a separate fixture.
func (r *Relay) SetCurrentStateBlock(opts *bind.TransactOpts, blockHash *big.Int) (*types.Transaction, error) {
	return r.contract.Transact(opts, "setCurrentStateBlock", blockHash)
}
