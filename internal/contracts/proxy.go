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

package contracts

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ProxyABI is the input ABI used to bind Proxy.
const ProxyABI = `[
	{"inputs":[{"internalType":"address","name":"relay","type":"address"},{"internalType":"address","name":"logic","type":"address"},{"internalType":"address","name":"source","type":"address"}],"stateMutability":"nonpayable","type":"constructor"},
	{"inputs":[{"internalType":"bytes32[]","name":"keys","type":"bytes32[]"},{"internalType":"bytes32[]","name":"values","type":"bytes32[]"}],"name":"addStorage","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[{"internalType":"bytes","name":"rlpProof","type":"bytes"},{"internalType":"uint256","name":"blockNumber","type":"uint256"}],"name":"updateStorage","outputs":[],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"getSourceAddress","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getLogicAddress","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"},
	{"inputs":[],"name":"getRelayAddress","outputs":[{"internalType":"address","name":"","type":"address"}],"stateMutability":"view","type":"function"}
]`

// DeployProxy deploys a new Proxy contract bound to relay, logic, and
// source, binding an instance to the returned address. bytecode is the
// compiled init code for the proxy contract (see DeployRelay for why the
// caller, not this package, supplies it); it must already carry the
// cloned source bytecode as its own runtime code, which this engine
// builds with internal/clone before deployment.
func DeployProxy(auth *bind.TransactOpts, backend bind.ContractBackend, bytecode []byte, relay, logic, source common.Address) (common.Address, *types.Transaction, *Proxy, error) {
	parsed, err := abi.JSON(strings.NewReader(ProxyABI))
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	address, tx, contract, err := bind.DeployContract(auth, parsed, bytecode, backend, relay, logic, source)
	if err != nil {
		return common.Address{}, nil, nil, err
	}
	return address, tx, &Proxy{contract: contract, address: address}, nil
}

// NewProxy binds an existing Proxy contract at address.
func NewProxy(address common.Address, backend bind.ContractBackend) (*Proxy, error) {
	parsed, err := abi.JSON(strings.NewReader(ProxyABI))
	if err != nil {
		return nil, err
	}
	return &Proxy{contract: bind.NewBoundContract(address, parsed, backend, backend, backend), address: address}, nil
}

// Proxy is a Go binding around the proxy contract: the cloned-bytecode
// shell deployed on the target chain that the engine keeps in sync with
// the source contract's storage.
type Proxy struct {
	contract *bind.BoundContract
	address  common.Address
}

// Address returns the contract's own bound address.
func (p *Proxy) Address() common.Address { return p.address }

// AddStorage writes the initial batch of cloned storage slots during
// migration, before the relay has attested any state root the proxy could
// verify a proof against.
func (p *Proxy) AddStorage(opts *bind.TransactOpts, keys, values []common.Hash) (*types.Transaction, error) {
	return p.contract.Transact(opts, "addStorage", keys, values)
}

// UpdateStorage submits an RLP-encoded proof bundle (account proof plus
// per-key storage proofs) for blockNumber; the proxy verifies it against
// the relay's attested state root for that block before applying the
// changed slots.
func (p *Proxy) UpdateStorage(opts *bind.TransactOpts, rlpProof []byte, blockNumber *big.Int) (*types.Transaction, error) {
	return p.contract.Transact(opts, "updateStorage", rlpProof, blockNumber)
}

// GetSourceAddress returns the source-chain contract address this proxy mirrors.
func (p *Proxy) GetSourceAddress(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getSourceAddress"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetLogicAddress returns the logic contract the proxy delegates calls to.
func (p *Proxy) GetLogicAddress(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getLogicAddress"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// GetRelayAddress returns the relay contract this proxy trusts for attested
// state roots.
func (p *Proxy) GetRelayAddress(opts *bind.CallOpts) (common.Address, error) {
	var out []interface{}
	if err := p.contract.Call(opts, &out, "getRelayAddress"); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}
