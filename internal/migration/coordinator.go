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

// Package migration drives the end-to-end storage migration: deploying the
// relay/logic/proxy triad, performing the initial bulk copy with an
// on-chain verifiable anchor, and applying incremental diffs.
//
// The Coordinator's state machine, cached addresses, and migration flag are
// touched only by the goroutine that calls its exported methods — the
// caller is expected to serialize its own calls (see SPEC_FULL.md §5); no
// mutex guards them, mirroring the teacher's single-threaded-per-instance
// daemons in cmd/ubtconv, where the apply loop owns its own state without
// locking.
package migration

import (
	"context"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/storagemirror/engine/internal/clone"
	"github.com/storagemirror/engine/internal/contracts"
	"github.com/storagemirror/engine/internal/diffengine"
	"github.com/storagemirror/engine/internal/headercodec"
	"github.com/storagemirror/engine/internal/keys"
	"github.com/storagemirror/engine/internal/proof"
	"github.com/storagemirror/engine/internal/rpcx"
	"github.com/storagemirror/engine/internal/signer"
)

// DefaultChunkSize is the default number of key/value pairs per
// proxy.addStorage transaction during bulk migration (spec's K).
const DefaultChunkSize = 100

// DefaultConcurrency is the default number of in-flight chunk transactions
// during bulk migration (spec's B).
const DefaultConcurrency = 50

// Params configures a Coordinator instance. RelayAddr and ProxyAddr may
// name pre-existing contracts; RelayBytecode/ProxyBytecode are required
// only when the corresponding address is zero, since this engine does not
// compile Solidity and needs the compiled init code supplied.
type Params struct {
	SrcAddr common.Address

	RelayAddr     common.Address
	ProxyAddr     common.Address
	RelayBytecode []byte
	ProxyBytecode []byte

	ChunkSize   int
	Concurrency int
	PageSize    int

	// GasLimit overrides the gas limit every submitted transaction
	// requests; zero leaves bind.TransactOpts.GasLimit unset, which
	// makes the target node fall back to its own gas estimation.
	GasLimit uint64
}

func (p *Params) setDefaults() {
	if p.ChunkSize <= 0 {
		p.ChunkSize = DefaultChunkSize
	}
	if p.Concurrency <= 0 {
		p.Concurrency = DefaultConcurrency
	}
}

// Coordinator is one engine instance: a source/target client pair, a
// resolved target signer, and the relay/logic/proxy bindings it either
// attached to or minted.
type Coordinator struct {
	Src, Tgt *rpcx.Client
	Signer   *signer.Signer
	ChainID  *big.Int
	Params   Params

	state State
	relay *contracts.Relay
	proxy *contracts.Proxy
	logic common.Address

	srcBlock uint64
}

// New builds a Coordinator in state Uninitialized; call Init before any
// other operation.
func New(src, tgt *rpcx.Client, sgn *signer.Signer, chainID *big.Int, params Params) *Coordinator {
	params.setDefaults()
	return &Coordinator{Src: src, Tgt: tgt, Signer: sgn, ChainID: chainID, Params: params}
}

// State reports the coordinator's current lifecycle state.
func (c *Coordinator) State() State { return c.state }

// opts builds fresh TransactOpts for one transaction, applying the
// configured gas limit override.
func (c *Coordinator) opts(ctx context.Context) (*bind.TransactOpts, error) {
	opts, err := c.Signer.Opts(ctx)
	if err != nil {
		return nil, err
	}
	if c.Params.GasLimit != 0 {
		opts.GasLimit = c.Params.GasLimit
	}
	return opts, nil
}

// Init resolves the relay/proxy bindings named in Params, reading back the
// proxy's embedded addresses and the relay's migration flag when a proxy
// is pre-existing.
func (c *Coordinator) Init(ctx context.Context) error {
	const op = "migration.Init"
	if err := requireState(op, c.state, Uninitialized); err != nil {
		return err
	}

	if c.Params.RelayAddr != (common.Address{}) {
		relay, err := contracts.NewRelay(c.Params.RelayAddr, c.Signer.Backend)
		if err != nil {
			return newErr(op, KindConfig, fmt.Errorf("bind relay %s: %w", c.Params.RelayAddr, err))
		}
		c.relay = relay
	}

	if c.Params.ProxyAddr != (common.Address{}) {
		proxy, err := contracts.NewProxy(c.Params.ProxyAddr, c.Signer.Backend)
		if err != nil {
			return newErr(op, KindConfig, fmt.Errorf("bind proxy %s: %w", c.Params.ProxyAddr, err))
		}
		callOpts := &bind.CallOpts{Context: ctx}
		src, err := proxy.GetSourceAddress(callOpts)
		if err != nil {
			return newErr(op, KindRPC, fmt.Errorf("proxy.getSourceAddress: %w", err))
		}
		if c.Params.SrcAddr != (common.Address{}) && src != c.Params.SrcAddr {
			return newErr(op, KindConfig, fmt.Errorf("proxy %s mirrors %s, not configured source %s", c.Params.ProxyAddr, src, c.Params.SrcAddr))
		}
		c.Params.SrcAddr = src
		logic, err := proxy.GetLogicAddress(callOpts)
		if err != nil {
			return newErr(op, KindRPC, fmt.Errorf("proxy.getLogicAddress: %w", err))
		}
		c.logic = logic
		relayAddr, err := proxy.GetRelayAddress(callOpts)
		if err != nil {
			return newErr(op, KindRPC, fmt.Errorf("proxy.getRelayAddress: %w", err))
		}
		if c.relay == nil {
			relay, err := contracts.NewRelay(relayAddr, c.Signer.Backend)
			if err != nil {
				return newErr(op, KindConfig, fmt.Errorf("bind relay %s: %w", relayAddr, err))
			}
			c.relay = relay
		}
		c.proxy = proxy

		migrated, err := c.relay.GetMigrationState(callOpts, c.Params.ProxyAddr)
		if err != nil {
			return newErr(op, KindRPC, fmt.Errorf("relay.getMigrationState: %w", err))
		}
		current, err := c.relay.GetCurrentBlockNumber(callOpts, c.Params.ProxyAddr)
		if err != nil {
			return newErr(op, KindRPC, fmt.Errorf("relay.getCurrentBlockNumber: %w", err))
		}
		c.srcBlock = current.Uint64()
		if migrated {
			log.Info("migration: attached to already-migrated proxy", "proxy", c.Params.ProxyAddr, "srcBlock", c.srcBlock)
			c.state = Migrated
			return nil
		}
		log.Info("migration: attached to proxy pending migration", "proxy", c.Params.ProxyAddr)
	}

	c.state = Initialized
	return nil
}

// MigrateSrcContract performs the initial bulk migration at srcBlock,
// deploying a relay only when none is bound and always deploying a fresh
// logic clone and proxy, and leaves
// the coordinator in state Migrated on success.
func (c *Coordinator) MigrateSrcContract(ctx context.Context, srcBlock uint64) error {
	const op = "migration.MigrateSrcContract"
	if err := requireState(op, c.state, Initialized); err != nil {
		return err
	}

	srcTag := rpcx.BlockNumber(srcBlock)
	code, err := c.Src.CodeAt(ctx, c.Params.SrcAddr, srcTag)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("eth_getCode(%s, %d): %w", c.Params.SrcAddr, srcBlock, err))
	}
	if len(code) == 0 {
		return newErr(op, KindNotFound, fmt.Errorf("%s has no code at source block %d", c.Params.SrcAddr, srcBlock))
	}

	if c.relay == nil {
		log.Info("migration: deploying fresh relay", "source", c.Params.SrcAddr)
		if len(c.Params.RelayBytecode) == 0 {
			return newErr(op, KindConfig, fmt.Errorf("no relay address and no relay bytecode configured"))
		}
		opts, err := c.opts(ctx)
		if err != nil {
			return newErr(op, KindConfig, err)
		}
		addr, tx, relay, err := contracts.DeployRelay(opts, c.Signer.Backend, c.Params.RelayBytecode, c.Params.SrcAddr)
		if err != nil {
			return newErr(op, KindRPC, fmt.Errorf("deploy relay: %w", err))
		}
		if _, err := bind.WaitMined(ctx, c.Tgt.EthClient(), tx); err != nil {
			return newErr(op, KindRPC, fmt.Errorf("wait relay deployment: %w", err))
		}
		log.Info("migration: relay deployed", "address", addr)
		c.relay = relay
	}

	srcHeader, err := c.Src.GetBlockHeader(ctx, srcTag)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("eth_getBlockByNumber(%d): %w", srcBlock, err))
	}

	srcKeys, err := keys.Enumerate(ctx, c.Src, c.Params.SrcAddr, srcTag, c.Params.PageSize)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("enumerate source keys: %w", err))
	}
	log.Info("migration: enumerated source keys", "contract", c.Params.SrcAddr, "block", srcBlock, "keys", len(srcKeys))

	srcProofResult, err := c.Src.GetProof(ctx, c.Params.SrcAddr, srcKeys, srcTag)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("eth_getProof: %w", err))
	}
	srcBundle, err := proof.Assemble(srcProofResult)
	if err != nil {
		return newErr(op, KindVerification, err)
	}
	if err := srcBundle.VerifyLocally(srcHeader.StateRoot, c.Params.SrcAddr); err != nil {
		return newErr(op, KindVerification, err)
	}

	opts, err := c.opts(ctx)
	if err != nil {
		return newErr(op, KindConfig, err)
	}
	tx, err := c.relay.AddBlock(opts, srcHeader.StateRoot, new(big.Int).SetUint64(srcBlock))
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("relay.addBlock: %w", err))
	}
	if _, err := bind.WaitMined(ctx, c.Tgt.EthClient(), tx); err != nil {
		return newErr(op, KindRPC, fmt.Errorf("wait addBlock: %w", err))
	}
	log.Info("migration: attested source state root", "block", srcBlock, "stateRoot", srcHeader.StateRoot)

	logicAddr, err := c.deployLogic(ctx)
	if err != nil {
		return newErr(op, KindRPC, err)
	}
	c.logic = logicAddr
	c.state = LogicDeployed

	opts, err = c.opts(ctx)
	if err != nil {
		return newErr(op, KindConfig, err)
	}
	if len(c.Params.ProxyBytecode) == 0 {
		return newErr(op, KindConfig, fmt.Errorf("no proxy bytecode configured"))
	}
	proxyAddr, ptx, proxy, err := contracts.DeployProxy(opts, c.Signer.Backend, c.Params.ProxyBytecode, c.relay.Address(), logicAddr, c.Params.SrcAddr)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("deploy proxy: %w", err))
	}
	if _, err := bind.WaitMined(ctx, c.Tgt.EthClient(), ptx); err != nil {
		return newErr(op, KindRPC, fmt.Errorf("wait proxy deployment: %w", err))
	}
	log.Info("migration: proxy deployed", "address", proxyAddr, "logic", logicAddr, "relay", c.relay.Address())
	c.proxy = proxy
	c.Params.ProxyAddr = proxyAddr
	c.state = ProxyDeployed

	if err := c.bulkMigrate(ctx, srcKeys, srcBundle); err != nil {
		return newErr(op, KindFatal, err)
	}

	if err := c.verifyMigration(ctx, srcBundle, srcHeader, srcBlock); err != nil {
		return err
	}

	c.srcBlock = srcBlock
	c.state = Migrated
	log.Info("migration: initial migration complete", "proxy", proxyAddr, "srcBlock", srcBlock)
	return nil
}

// deployLogic clones the source contract's runtime bytecode into
// deployable initcode and deploys it with no constructor ABI, since the
// logic contract is never called directly — the proxy DELEGATECALLs it.
func (c *Coordinator) deployLogic(ctx context.Context) (common.Address, error) {
	runtime, err := c.Src.CodeAt(ctx, c.Params.SrcAddr, rpcx.Latest())
	if err != nil {
		return common.Address{}, fmt.Errorf("fetch source runtime code: %w", err)
	}
	initcode, err := clone.Initcode(runtime)
	if err != nil {
		return common.Address{}, fmt.Errorf("build logic initcode: %w", err)
	}
	opts, err := c.opts(ctx)
	if err != nil {
		return common.Address{}, err
	}
	addr, tx, _, err := bind.DeployContract(opts, noArgsABI, initcode, c.Signer.Backend)
	if err != nil {
		return common.Address{}, fmt.Errorf("deploy logic: %w", err)
	}
	if _, err := bind.WaitMined(ctx, c.Tgt.EthClient(), tx); err != nil {
		return common.Address{}, fmt.Errorf("wait logic deployment: %w", err)
	}
	log.Info("migration: logic deployed", "address", addr, "runtimeSize", len(runtime))
	return addr, nil
}

// bulkMigrate splits keys/values into Params.ChunkSize batches and
// dispatches up to Params.Concurrency proxy.addStorage transactions at
// once. Any reverted chunk is fatal — a partial bulk migration leaves the
// proxy's storage root unreconstructable, so there is no meaningful
// continuation short of restarting MigrateSrcContract at the same
// srcBlock.
func (c *Coordinator) bulkMigrate(ctx context.Context, srcKeys []common.Hash, bundle *proof.Bundle) error {
	valueOf := make(map[common.Hash]*big.Int, len(bundle.Storage))
	for _, se := range bundle.Storage {
		valueOf[se.Key] = se.Value
	}

	type chunk struct {
		keys, values []common.Hash
	}
	var chunks []chunk
	for i := 0; i < len(srcKeys); i += c.Params.ChunkSize {
		end := i + c.Params.ChunkSize
		if end > len(srcKeys) {
			end = len(srcKeys)
		}
		part := srcKeys[i:end]
		values := make([]common.Hash, len(part))
		for j, k := range part {
			if v, ok := valueOf[k]; ok {
				values[j] = common.BigToHash(v)
			}
		}
		chunks = append(chunks, chunk{keys: part, values: values})
	}
	log.Info("migration: bulk-migrating storage", "keys", len(srcKeys), "chunks", len(chunks), "chunkSize", c.Params.ChunkSize)

	return rpcx.FanOutEach(ctx, c.Params.Concurrency, chunks, func(ctx context.Context, ch chunk) error {
		opts, err := c.opts(ctx)
		if err != nil {
			return err
		}
		tx, err := c.proxy.AddStorage(opts, ch.keys, ch.values)
		if err != nil {
			return fmt.Errorf("proxy.addStorage: %w", err)
		}
		receipt, err := bind.WaitMined(ctx, c.Tgt.EthClient(), tx)
		if err != nil {
			return fmt.Errorf("wait addStorage: %w", err)
		}
		if receipt.Status == 0 {
			return fmt.Errorf("addStorage chunk reverted: tx %s", tx.Hash())
		}
		return nil
	})
}

// verifyMigration fetches a post-migration account proof of the proxy,
// encodes the target block header, and submits both account proofs to the
// relay so it can re-derive and compare storage roots before flipping the
// migration flag.
func (c *Coordinator) verifyMigration(ctx context.Context, srcBundle *proof.Bundle, srcHeader *rpcx.RawBlockHeader, srcBlock uint64) error {
	const op = "migration.verifyMigration"

	targetTag := rpcx.Latest()
	tgtHeader, err := c.Tgt.GetBlockHeader(ctx, targetTag)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("target eth_getBlockByNumber: %w", err))
	}
	if tgtHeader.Hash == (common.Hash{}) {
		return newErr(op, KindRPC, fmt.Errorf("target header missing its own hash"))
	}
	targetBlock := tgtHeader.Number.ToInt().Uint64()

	proxyResult, err := c.Tgt.GetProof(ctx, c.Params.ProxyAddr, nil, rpcx.BlockNumber(targetBlock))
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("target eth_getProof: %w", err))
	}
	proxyBundle, err := proof.Assemble(proxyResult)
	if err != nil {
		return newErr(op, KindVerification, err)
	}
	if err := proxyBundle.VerifyLocally(tgtHeader.StateRoot, c.Params.ProxyAddr); err != nil {
		return newErr(op, KindVerification, err)
	}

	srcAccountProof, err := srcBundle.EncodeAccountProof()
	if err != nil {
		return newErr(op, KindVerification, err)
	}
	proxyAccountProof, err := proxyBundle.EncodeAccountProof()
	if err != nil {
		return newErr(op, KindVerification, err)
	}

	header := headercodec.Parse(tgtHeader)
	if err := header.Verify(tgtHeader.Hash); err != nil {
		return newErr(op, KindVerification, fmt.Errorf("target header re-hash: %w", err))
	}
	encodedHeader, err := header.EncodeRLP()
	if err != nil {
		return newErr(op, KindVerification, err)
	}

	opts, err := c.opts(ctx)
	if err != nil {
		return newErr(op, KindConfig, err)
	}
	tx, err := c.relay.VerifyMigrateContract(opts, srcAccountProof, proxyAccountProof, encodedHeader, c.Params.ProxyAddr, new(big.Int).SetUint64(targetBlock), new(big.Int).SetUint64(srcBlock))
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("relay.verifyMigrateContract: %w", err))
	}
	if _, err := bind.WaitMined(ctx, c.Tgt.EthClient(), tx); err != nil {
		return newErr(op, KindRPC, fmt.Errorf("wait verifyMigrateContract: %w", err))
	}

	migrated, err := c.relay.GetMigrationState(&bind.CallOpts{Context: ctx}, c.Params.ProxyAddr)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("relay.getMigrationState: %w", err))
	}
	if !migrated {
		return newErr(op, KindVerification, fmt.Errorf("migration flag still false after verifyMigrateContract"))
	}
	return nil
}

// MigrateChangesToProxy fetches a single proof for changedKeys at
// targetBlock and submits it to proxy.updateStorage. An empty changedKeys
// is a no-op success, per the spec's tie-break rule.
func (c *Coordinator) MigrateChangesToProxy(ctx context.Context, changedKeys []common.Hash, targetBlock uint64) error {
	const op = "migration.MigrateChangesToProxy"
	if err := requireOneOf(op, c.state, Migrated, Synchronizing); err != nil {
		return err
	}
	if len(changedKeys) == 0 {
		log.Debug("migration: no changed keys, synchronization is a no-op", "targetBlock", targetBlock)
		return newErr(op, KindNoOp, nil)
	}

	prevState := c.state
	c.state = Synchronizing
	if err := c.syncChanges(ctx, changedKeys, targetBlock); err != nil {
		c.state = Failed
		return err
	}
	c.state = prevState
	return nil
}

func (c *Coordinator) syncChanges(ctx context.Context, changedKeys []common.Hash, targetBlock uint64) error {
	const op = "migration.syncChanges"
	srcTag := rpcx.BlockNumber(targetBlock)

	srcHeader, err := c.Src.GetBlockHeader(ctx, srcTag)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("source eth_getBlockByNumber(%d): %w", targetBlock, err))
	}
	proofResult, err := c.Src.GetProof(ctx, c.Params.SrcAddr, changedKeys, srcTag)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("eth_getProof: %w", err))
	}
	bundle, err := proof.Assemble(proofResult)
	if err != nil {
		return newErr(op, KindVerification, err)
	}
	if err := bundle.VerifyLocally(srcHeader.StateRoot, c.Params.SrcAddr); err != nil {
		return newErr(op, KindVerification, err)
	}

	opts, err := c.opts(ctx)
	if err != nil {
		return newErr(op, KindConfig, err)
	}
	atx, err := c.relay.AddBlock(opts, srcHeader.StateRoot, new(big.Int).SetUint64(targetBlock))
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("relay.addBlock: %w", err))
	}
	if _, err := bind.WaitMined(ctx, c.Tgt.EthClient(), atx); err != nil {
		return newErr(op, KindRPC, fmt.Errorf("wait addBlock: %w", err))
	}

	encoded, err := bundle.Encode()
	if err != nil {
		return newErr(op, KindVerification, err)
	}
	opts, err = c.opts(ctx)
	if err != nil {
		return newErr(op, KindConfig, err)
	}
	utx, err := c.proxy.UpdateStorage(opts, encoded, new(big.Int).SetUint64(targetBlock))
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("proxy.updateStorage: %w", err))
	}
	receipt, err := bind.WaitMined(ctx, c.Tgt.EthClient(), utx)
	if err != nil {
		return newErr(op, KindRPC, fmt.Errorf("wait updateStorage: %w", err))
	}
	if receipt.Status == 0 {
		return newErr(op, KindVerification, fmt.Errorf("updateStorage reverted: tx %s", utx.Hash()))
	}

	c.srcBlock = targetBlock
	log.Info("migration: applied incremental diff", "keys", len(changedKeys), "targetBlock", targetBlock)
	return nil
}

// GetLatestBlockNumber reads the relay's highest attested source block
// number across all proxies.
func (c *Coordinator) GetLatestBlockNumber(ctx context.Context) (uint64, error) {
	const op = "migration.GetLatestBlockNumber"
	if c.relay == nil {
		return 0, newErr(op, KindState, fmt.Errorf("no relay bound"))
	}
	n, err := c.relay.GetLatestBlockNumber(&bind.CallOpts{Context: ctx})
	if err != nil {
		return 0, newErr(op, KindRPC, err)
	}
	return n.Uint64(), nil
}

// GetCurrentBlockNumber reads the relay's record of this coordinator's
// proxy's synchronized source block and rewrites the coordinator's cached
// srcBlock to match, keeping subsequent diffs aligned with the relay's
// view rather than the coordinator's own possibly-stale memory.
func (c *Coordinator) GetCurrentBlockNumber(ctx context.Context) (uint64, error) {
	const op = "migration.GetCurrentBlockNumber"
	if c.relay == nil || c.proxy == nil {
		return 0, newErr(op, KindState, fmt.Errorf("no relay/proxy bound"))
	}
	n, err := c.relay.GetCurrentBlockNumber(&bind.CallOpts{Context: ctx}, c.Params.ProxyAddr)
	if err != nil {
		return 0, newErr(op, KindRPC, err)
	}
	c.srcBlock = n.Uint64()
	return c.srcBlock, nil
}

// Diff runs strategy over [fromBlock, toBlock] against this coordinator's
// source/target pair. A source block past the target block is a
// successful empty diff, not an error, per the spec's tie-break rule.
func (c *Coordinator) Diff(ctx context.Context, strategy diffengine.Strategy, fromBlock, toBlock uint64) (diffengine.Diff, error) {
	if fromBlock > toBlock {
		return nil, nil
	}
	return strategy.Diff(ctx, diffengine.Params{
		Src:         c.Src,
		Tgt:         c.Tgt,
		Addr:        c.Params.SrcAddr,
		TgtAddr:     c.Params.ProxyAddr,
		SrcTag:      rpcx.Latest(),
		TgtTag:      rpcx.Latest(),
		FromBlock:   rpcx.BlockNumber(fromBlock),
		ToBlock:     rpcx.BlockNumber(toBlock),
		PageSize:    c.Params.PageSize,
		Concurrency: c.Params.Concurrency,
	})
}

// noArgsABI is the empty ABI used to deploy the logic contract: it has no
// externally callable surface since the proxy only ever DELEGATECALLs into
// its bytecode, never invokes it through an ABI-described function.
var noArgsABI = mustParseABI("[]")

func mustParseABI(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(fmt.Sprintf("migration: parse empty ABI: %v", err))
	}
	return parsed
}
