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

package main

import (
	"fmt"
	"net/url"
	"os"

	"github.com/ethereum/go-ethereum/common"

	"github.com/storagemirror/engine/internal/migration"
)

// Config holds the storagemirror daemon's full configuration surface, as
// named in SPEC_FULL.md §6: endpoints, credentials, contract addresses
// (any subset of which may already exist), and the batch/chunk sizing
// knobs the coordinator's fan-out obeys.
type Config struct {
	SrcRPCEndpoint string
	SrcAPIKey      string
	TgtRPCEndpoint string
	TgtAPIKey      string

	KeystorePath     string
	Passphrase       string
	PassphraseFile   string
	UnlockedAccount  common.Address

	GasLimit  uint64
	BatchSize int // spec's B: in-flight RPC/tx concurrency
	ChunkSize int // spec's K: addStorage batch size
	PageSize  int // parity_listStorageKeys page size

	SourceAddr common.Address
	RelayAddr  common.Address
	ProxyAddr  common.Address

	RelayBytecodeFile string
	ProxyBytecodeFile string
}

// Validate checks the configuration is internally consistent, mirroring
// the conservative all-required-or-nothing checks a fresh migration needs;
// a pre-existing proxy (handled by Coordinator.Init) relaxes several of
// these at runtime.
func (c *Config) Validate() error {
	if c.SrcRPCEndpoint == "" {
		return fmt.Errorf("src-endpoint is required")
	}
	if c.TgtRPCEndpoint == "" {
		return fmt.Errorf("tgt-endpoint is required")
	}
	if c.KeystorePath == "" && c.UnlockedAccount == (common.Address{}) {
		return fmt.Errorf("either keystore-path or unlocked-account is required")
	}
	if c.KeystorePath != "" && c.Passphrase == "" && c.PassphraseFile == "" {
		return fmt.Errorf("passphrase or passphrase-file is required when keystore-path is set")
	}
	if c.SourceAddr == (common.Address{}) {
		return fmt.Errorf("source-addr is required")
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be > 0")
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk-size must be > 0")
	}
	if c.RelayAddr == (common.Address{}) && c.RelayBytecodeFile == "" {
		return fmt.Errorf("relay-bytecode-file is required when relay-addr is not pre-existing")
	}
	if c.ProxyAddr == (common.Address{}) && c.ProxyBytecodeFile == "" {
		return fmt.Errorf("proxy-bytecode-file is required when proxy-addr is not pre-existing")
	}
	return nil
}

// withAPIKey folds an optional API key into endpoint as a query parameter,
// the form most hosted-node providers (Infura, Alchemy-style gateways)
// expect when the key isn't already embedded in the path.
func withAPIKey(endpoint, apiKey string) (string, error) {
	if apiKey == "" {
		return endpoint, nil
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", endpoint, err)
	}
	q := u.Query()
	q.Set("apikey", apiKey)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// migrationParams builds the migration.Params the coordinator needs,
// loading any configured bytecode files from disk.
func (c *Config) migrationParams() (migration.Params, error) {
	p := migration.Params{
		SrcAddr:     c.SourceAddr,
		RelayAddr:   c.RelayAddr,
		ProxyAddr:   c.ProxyAddr,
		ChunkSize:   c.ChunkSize,
		Concurrency: c.BatchSize,
		PageSize:    c.PageSize,
		GasLimit:    c.GasLimit,
	}
	if c.RelayBytecodeFile != "" {
		b, err := os.ReadFile(c.RelayBytecodeFile)
		if err != nil {
			return migration.Params{}, fmt.Errorf("read relay-bytecode-file: %w", err)
		}
		p.RelayBytecode = b
	}
	if c.ProxyBytecodeFile != "" {
		b, err := os.ReadFile(c.ProxyBytecodeFile)
		if err != nil {
			return migration.Params{}, fmt.Errorf("read proxy-bytecode-file: %w", err)
		}
		p.ProxyBytecode = b
	}
	return p, nil
}
