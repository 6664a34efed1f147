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

// storagemirror drives one run of the storage synchronization engine: a
// single migrate/sync/status invocation against a configured source and
// target chain pair, then exits.
package main

import (
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/storagemirror/engine/internal/migration"
	"github.com/storagemirror/engine/internal/rpcx"
	"github.com/storagemirror/engine/internal/signer"
)

var (
	srcEndpointFlag = &cli.StringFlag{Name: "src-endpoint", Usage: "Source chain JSON-RPC endpoint", Required: true}
	srcAPIKeyFlag   = &cli.StringFlag{Name: "src-api-key", Usage: "Optional API key for the source endpoint"}
	tgtEndpointFlag = &cli.StringFlag{Name: "tgt-endpoint", Usage: "Target chain JSON-RPC endpoint", Required: true}
	tgtAPIKeyFlag   = &cli.StringFlag{Name: "tgt-api-key", Usage: "Optional API key for the target endpoint"}

	keystorePathFlag    = &cli.StringFlag{Name: "keystore-path", Usage: "Path to a V3 encrypted JSON keystore file for the target signer"}
	passphraseFlag      = &cli.StringFlag{Name: "passphrase", Usage: "Keystore passphrase (prefer --passphrase-file)"}
	passphraseFileFlag  = &cli.StringFlag{Name: "passphrase-file", Usage: "Path to a file holding the keystore passphrase"}
	unlockedAccountFlag = &cli.StringFlag{Name: "unlocked-account", Usage: "Address already unlocked on the target node, used instead of a keystore"}

	gasLimitFlag   = &cli.Uint64Flag{Name: "gas-limit", Usage: "Gas limit override for submitted transactions (0 = node estimate)"}
	batchSizeFlag  = &cli.IntFlag{Name: "batch-size", Usage: "Maximum in-flight RPC calls / chunk transactions (spec's B)", Value: migration.DefaultConcurrency}
	chunkSizeFlag  = &cli.IntFlag{Name: "chunk-size", Usage: "Key/value pairs per addStorage transaction (spec's K)", Value: migration.DefaultChunkSize}
	pageSizeFlag   = &cli.IntFlag{Name: "page-size", Usage: "parity_listStorageKeys page size (max 256)"}

	sourceAddrFlag = &cli.StringFlag{Name: "source-addr", Usage: "Source contract address", Required: true}
	relayAddrFlag  = &cli.StringFlag{Name: "relay-addr", Usage: "Pre-existing relay contract address"}
	proxyAddrFlag  = &cli.StringFlag{Name: "proxy-addr", Usage: "Pre-existing proxy contract address"}

	relayBytecodeFileFlag = &cli.StringFlag{Name: "relay-bytecode-file", Usage: "Path to the relay contract's compiled init code, required when relay-addr is unset"}
	proxyBytecodeFileFlag = &cli.StringFlag{Name: "proxy-bytecode-file", Usage: "Path to the proxy contract's compiled init code, required when proxy-addr is unset"}

	srcBlockFlag    = &cli.Uint64Flag{Name: "src-block", Usage: "Source block number to migrate at (migrate command)", Required: true}
	targetBlockFlag = &cli.Uint64Flag{Name: "target-block", Usage: "Source block number this sync applies to (sync command)", Required: true}
	changedKeysFlag = &cli.StringSliceFlag{Name: "changed-key", Usage: "A changed storage key (0x-prefixed, repeatable) (sync command)"}
)

func commonFlags() []cli.Flag {
	return []cli.Flag{
		srcEndpointFlag, srcAPIKeyFlag, tgtEndpointFlag, tgtAPIKeyFlag,
		keystorePathFlag, passphraseFlag, passphraseFileFlag, unlockedAccountFlag,
		gasLimitFlag, batchSizeFlag, chunkSizeFlag, pageSizeFlag,
		sourceAddrFlag, relayAddrFlag, proxyAddrFlag,
		relayBytecodeFileFlag, proxyBytecodeFileFlag,
	}
}

func main() {
	app := &cli.App{
		Name:  "storagemirror",
		Usage: "mirror a source-chain contract's storage onto a target chain",
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "perform the initial bulk migration at a source block",
				Flags:  append(commonFlags(), srcBlockFlag),
				Action: runMigrate,
			},
			{
				Name:   "sync",
				Usage:  "apply an incremental diff to an already-migrated proxy",
				Flags:  append(commonFlags(), targetBlockFlag, changedKeysFlag),
				Action: runSync,
			},
			{
				Name:   "status",
				Usage:  "report the relay's latest and current block numbers",
				Flags:  commonFlags(),
				Action: runStatus,
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func configFromCLI(ctx *cli.Context) *Config {
	return &Config{
		SrcRPCEndpoint:     ctx.String(srcEndpointFlag.Name),
		SrcAPIKey:          ctx.String(srcAPIKeyFlag.Name),
		TgtRPCEndpoint:     ctx.String(tgtEndpointFlag.Name),
		TgtAPIKey:          ctx.String(tgtAPIKeyFlag.Name),
		KeystorePath:       ctx.String(keystorePathFlag.Name),
		Passphrase:         ctx.String(passphraseFlag.Name),
		PassphraseFile:     ctx.String(passphraseFileFlag.Name),
		UnlockedAccount:    common.HexToAddress(ctx.String(unlockedAccountFlag.Name)),
		GasLimit:           ctx.Uint64(gasLimitFlag.Name),
		BatchSize:          ctx.Int(batchSizeFlag.Name),
		ChunkSize:          ctx.Int(chunkSizeFlag.Name),
		PageSize:           ctx.Int(pageSizeFlag.Name),
		SourceAddr:         common.HexToAddress(ctx.String(sourceAddrFlag.Name)),
		RelayAddr:          common.HexToAddress(ctx.String(relayAddrFlag.Name)),
		ProxyAddr:          common.HexToAddress(ctx.String(proxyAddrFlag.Name)),
		RelayBytecodeFile:  ctx.String(relayBytecodeFileFlag.Name),
		ProxyBytecodeFile:  ctx.String(proxyBytecodeFileFlag.Name),
	}
}

// buildCoordinator wires a Config into a ready-to-use migration.Coordinator:
// dials both endpoints, resolves the target signer, and reads the target
// chain ID the signer needs for transaction construction.
func buildCoordinator(ctx *cli.Context, cfg *Config) (*migration.Coordinator, error) {
	srcEndpoint, err := withAPIKey(cfg.SrcRPCEndpoint, cfg.SrcAPIKey)
	if err != nil {
		return nil, err
	}
	tgtEndpoint, err := withAPIKey(cfg.TgtRPCEndpoint, cfg.TgtAPIKey)
	if err != nil {
		return nil, err
	}

	src, err := rpcx.Dial(ctx.Context, "src", srcEndpoint, cfg.BatchSize)
	if err != nil {
		return nil, err
	}
	tgt, err := rpcx.Dial(ctx.Context, "tgt", tgtEndpoint, cfg.BatchSize)
	if err != nil {
		return nil, err
	}

	chainID, err := tgt.ChainID(ctx.Context)
	if err != nil {
		return nil, fmt.Errorf("read target chain id: %w", err)
	}

	sgn, err := signer.Resolve(signer.Config{
		KeystorePath:    cfg.KeystorePath,
		Passphrase:      cfg.Passphrase,
		PassphraseFile:  cfg.PassphraseFile,
		UnlockedAccount: cfg.UnlockedAccount,
	}, tgt, chainID)
	if err != nil {
		return nil, err
	}

	params, err := cfg.migrationParams()
	if err != nil {
		return nil, err
	}
	return migration.New(src, tgt, sgn, chainID, params), nil
}

func runMigrate(ctx *cli.Context) error {
	cfg := configFromCLI(ctx)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	coord, err := buildCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	if err := coord.Init(ctx.Context); err != nil {
		return err
	}
	srcBlock := ctx.Uint64(srcBlockFlag.Name)
	if err := coord.MigrateSrcContract(ctx.Context, srcBlock); err != nil {
		return err
	}
	log.Info("storagemirror: migration complete", "srcBlock", srcBlock)
	return nil
}

func runSync(ctx *cli.Context) error {
	cfg := configFromCLI(ctx)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	coord, err := buildCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	if err := coord.Init(ctx.Context); err != nil {
		return err
	}

	raw := ctx.StringSlice(changedKeysFlag.Name)
	keys := make([]common.Hash, len(raw))
	for i, s := range raw {
		keys[i] = common.HexToHash(s)
	}

	targetBlock := ctx.Uint64(targetBlockFlag.Name)
	err = coord.MigrateChangesToProxy(ctx.Context, keys, targetBlock)
	if err != nil && migration.IsNoOp(err) {
		log.Info("storagemirror: sync is a no-op, no changed keys", "targetBlock", targetBlock)
		return nil
	}
	if err != nil {
		return err
	}
	log.Info("storagemirror: sync complete", "targetBlock", targetBlock, "keys", len(keys))
	return nil
}

func runStatus(ctx *cli.Context) error {
	cfg := configFromCLI(ctx)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	coord, err := buildCoordinator(ctx, cfg)
	if err != nil {
		return err
	}
	if err := coord.Init(ctx.Context); err != nil {
		return err
	}

	latest, err := coord.GetLatestBlockNumber(ctx.Context)
	if err != nil {
		return err
	}
	current, err := coord.GetCurrentBlockNumber(ctx.Context)
	if err != nil {
		return err
	}
	log.Info("storagemirror: status", "state", coord.State(), "latestBlock", latest, "currentBlock", current)
	return nil
}
