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
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		SrcRPCEndpoint:    "http://src.example:8545",
		TgtRPCEndpoint:    "http://tgt.example:8545",
		UnlockedAccount:   common.HexToAddress("0x01"),
		SourceAddr:        common.HexToAddress("0x02"),
		BatchSize:         10,
		ChunkSize:         100,
		RelayBytecodeFile: "relay.bin",
		ProxyBytecodeFile: "proxy.bin",
	}
}

func TestConfig_Validate_OK(t *testing.T) {
	require.NoError(t, validConfig().Validate())
}

func TestConfig_Validate_MissingEndpoints(t *testing.T) {
	cfg := validConfig()
	cfg.SrcRPCEndpoint = ""
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.TgtRPCEndpoint = ""
	require.Error(t, cfg.Validate())
}

func TestConfig_Validate_RequiresCredential(t *testing.T) {
	cfg := validConfig()
	cfg.UnlockedAccount = common.Address{}
	require.Error(t, cfg.Validate())

	cfg.KeystorePath = "key.json"
	require.Error(t, cfg.Validate(), "keystore without a passphrase must fail")

	cfg.Passphrase = "secret"
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RequiresBytecodeWhenAddressMissing(t *testing.T) {
	cfg := validConfig()
	cfg.RelayBytecodeFile = ""
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RelayAddr = common.HexToAddress("0x03")
	cfg.RelayBytecodeFile = ""
	require.NoError(t, cfg.Validate())
}

func TestConfig_Validate_RejectsNonPositiveSizes(t *testing.T) {
	cfg := validConfig()
	cfg.BatchSize = 0
	require.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.ChunkSize = 0
	require.Error(t, cfg.Validate())
}

func TestWithAPIKey(t *testing.T) {
	got, err := withAPIKey("http://node.example:8545/v1", "abc123")
	require.NoError(t, err)
	require.Equal(t, "http://node.example:8545/v1?apikey=abc123", got)
}

func TestWithAPIKey_NoKeyLeavesEndpointUntouched(t *testing.T) {
	got, err := withAPIKey("http://node.example:8545/v1", "")
	require.NoError(t, err)
	require.Equal(t, "http://node.example:8545/v1", got)
}

func TestMigrationParams_LoadsBytecodeFiles(t *testing.T) {
	dir := t.TempDir()
	relayPath := dir + "/relay.bin"
	proxyPath := dir + "/proxy.bin"
	require.NoError(t, os.WriteFile(relayPath, []byte{0xde, 0xad}, 0o600))
	require.NoError(t, os.WriteFile(proxyPath, []byte{0xbe, 0xef}, 0o600))

	cfg := validConfig()
	cfg.RelayBytecodeFile = relayPath
	cfg.ProxyBytecodeFile = proxyPath

	params, err := cfg.migrationParams()
	require.NoError(t, err)
	require.Equal(t, []byte{0xde, 0xad}, params.RelayBytecode)
	require.Equal(t, []byte{0xbe, 0xef}, params.ProxyBytecode)
	require.Equal(t, cfg.SourceAddr, params.SrcAddr)
}
