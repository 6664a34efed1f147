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

// Package rpcx provides a typed façade over a single JSON-RPC endpoint,
// bundling the standard eth namespace (via ethclient/gethclient) with the
// handful of Parity/OpenEthereum-only extension methods the engine needs
// for full storage enumeration and historical trace replay.
package rpcx

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/ethclient/gethclient"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rpc"
)

// Client wraps a single endpoint with bounded admission control: however
// many goroutines call into it concurrently, at most Concurrency requests
// are ever in flight on the wire at once. Component A is deliberately a
// thin façade rather than a cache or a retrying client: a failed request
// is returned to the caller as an error and is not retried.
type Client struct {
	name string // "src" or "tgt", used only in log lines and error messages
	rc   *rpc.Client
	eth  *ethclient.Client
	geth *gethclient.Client
	sem  chan struct{}
}

// Dial connects to endpoint and returns a Client that admits at most
// concurrency requests to the transport at a time. concurrency <= 0 means
// unbounded (direct pass-through), matching ethclient's own default.
func Dial(ctx context.Context, name, endpoint string, concurrency int) (*Client, error) {
	rc, err := rpc.DialContext(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("rpcx: dial %s (%s): %w", name, endpoint, err)
	}
	c := &Client{
		name: name,
		rc:   rc,
		eth:  ethclient.NewClient(rc),
		geth: gethclient.New(rc),
	}
	if concurrency > 0 {
		c.sem = make(chan struct{}, concurrency)
	}
	log.Info("rpcx: connected", "endpoint", name, "concurrency", concurrency)
	return c, nil
}

func (c *Client) acquire(ctx context.Context) error {
	if c.sem == nil {
		return nil
	}
	select {
	case c.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) release() {
	if c.sem != nil {
		<-c.sem
	}
}

// Close releases the underlying connection.
func (c *Client) Close() { c.rc.Close() }

// Name returns the label the Client was dialed with ("src" or "tgt").
func (c *Client) Name() string { return c.name }

// EthClient exposes the underlying *ethclient.Client so contract bindings
// (accounts/abi/bind.BoundContract) can use the facade as their
// bind.ContractBackend without reimplementing CallContract/EstimateGas/etc.
func (c *Client) EthClient() *ethclient.Client { return c.eth }

// ContractBackend satisfies the subset of bind.ContractBackend the signer
// and the contract bindings need, delegating straight to ethclient.
func (c *Client) ContractBackend() bind.ContractBackend { return c.eth }

// ChainID returns the endpoint's chain ID, used to build signed transactors.
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	return c.eth.ChainID(ctx)
}

// BlockNumber returns the endpoint's current canonical head number.
func (c *Client) BlockNumber(ctx context.Context) (uint64, error) {
	if err := c.acquire(ctx); err != nil {
		return 0, err
	}
	defer c.release()
	return c.eth.BlockNumber(ctx)
}

// CodeAt returns the contract bytecode deployed at addr as of tag.
func (c *Client) CodeAt(ctx context.Context, addr common.Address, tag BlockTag) ([]byte, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	return c.eth.CodeAt(ctx, addr, tag.BigInt())
}

// StorageAt returns the raw 32-byte value at addr's storage slot key, as of
// tag. The diff engine's storage strategy calls this once per candidate key.
func (c *Client) StorageAt(ctx context.Context, addr common.Address, key common.Hash, tag BlockTag) (common.Hash, error) {
	if err := c.acquire(ctx); err != nil {
		return common.Hash{}, err
	}
	defer c.release()
	raw, err := c.eth.StorageAt(ctx, addr, key, tag.BigInt())
	if err != nil {
		return common.Hash{}, err
	}
	return common.BytesToHash(raw), nil
}

// NonceAt returns addr's account nonce as of tag.
func (c *Client) NonceAt(ctx context.Context, addr common.Address, tag BlockTag) (uint64, error) {
	if err := c.acquire(ctx); err != nil {
		return 0, err
	}
	defer c.release()
	return c.eth.NonceAt(ctx, addr, tag.BigInt())
}

// TransactionByHash returns the transaction identified by hash. The bool
// return mirrors ethclient: true means the transaction is still pending.
func (c *Client) TransactionByHash(ctx context.Context, hash common.Hash) (*types.Transaction, bool, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, false, err
	}
	defer c.release()
	return c.eth.TransactionByHash(ctx, hash)
}

// TransactionReceipt returns the receipt for a mined transaction.
func (c *Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	return c.eth.TransactionReceipt(ctx, hash)
}

// SendTransaction broadcasts a fully signed transaction.
func (c *Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	return c.eth.SendTransaction(ctx, tx)
}

// CallContext issues an arbitrary JSON-RPC method, for callers needing a
// node extension the facade has no typed wrapper for.
func (c *Client) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	if err := c.acquire(ctx); err != nil {
		return err
	}
	defer c.release()
	return c.rc.CallContext(ctx, result, method, args...)
}

// AccountResult mirrors gethclient.AccountResult; re-exported under the
// facade's own name so callers never need to import ethclient/gethclient
// directly.
type AccountResult = gethclient.AccountResult

// StorageResult mirrors gethclient.StorageResult, one entry of
// AccountResult.StorageProof.
type StorageResult = gethclient.StorageResult

// GetProof retrieves the EIP-1186 account-and-storage proof bundle for addr
// at the given keys, as of tag. This is the node method component D builds
// every submitted proof from.
func (c *Client) GetProof(ctx context.Context, addr common.Address, keys []common.Hash, tag BlockTag) (*AccountResult, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	keyStrs := make([]string, len(keys))
	for i, k := range keys {
		keyStrs[i] = k.Hex()
	}
	return c.geth.GetProof(ctx, addr, keyStrs, tag.BigInt())
}

// ParityListStorageKeysPage is one page of a parity_listStorageKeys result:
// up to count keys in trie order, continuing from a previous call's
// NextOffset (nil on the first call and once the contract's storage is
// exhausted).
type ParityListStorageKeysPage struct {
	Keys       []common.Hash
	NextOffset *common.Hash
}

// ParityListStorageKeys pages through a contract's storage trie, returning
// raw keys in trie order. OpenEthereum/Nethermind/Erigon all accept the
// 4-argument form (address, count, hash, blockNumber); the engine always
// passes its offset as the 3rd ("hash") argument and pins the block with
// the 4th, since full enumeration must be repeatable against a fixed state
// even while the chain keeps advancing underneath it.
func (c *Client) ParityListStorageKeys(ctx context.Context, addr common.Address, count int, offset *common.Hash, tag BlockTag) (ParityListStorageKeysPage, error) {
	if err := c.acquire(ctx); err != nil {
		return ParityListStorageKeysPage{}, err
	}
	defer c.release()

	var offsetArg interface{}
	if offset != nil {
		offsetArg = offset.Hex()
	}
	var raw []string
	if err := c.rc.CallContext(ctx, &raw, "parity_listStorageKeys", addr, count, offsetArg, tag.Arg()); err != nil {
		return ParityListStorageKeysPage{}, fmt.Errorf("rpcx: parity_listStorageKeys: %w", err)
	}
	keys := make([]common.Hash, len(raw))
	for i, s := range raw {
		keys[i] = common.HexToHash(s)
	}
	page := ParityListStorageKeysPage{Keys: keys}
	// A short page (fewer than requested) means enumeration is exhausted;
	// a full page continues from its own last key.
	if len(keys) == count && count > 0 {
		last := keys[len(keys)-1]
		page.NextOffset = &last
	}
	return page, nil
}

// TraceReplayResult is the subset of trace_replayTransaction's response the
// srcTx diff strategy reads: the per-account storage deltas it produced.
// Each entry is kept as a raw JSON object, preserving Parity's tagged-union
// delta encoding ("=" unchanged, {"+": to} created, {"*": {from,to}}
// changed); diffengine decodes the shape itself since no fixed Go struct
// represents all three as one type.
type TraceReplayResult struct {
	StateDiff map[common.Address]struct {
		Storage map[common.Hash]json.RawMessage `json:"storage"`
	} `json:"stateDiff"`
}

// TraceReplayTransaction replays hash with the requested trace types
// (the engine only ever asks for "stateDiff"). It is the single node method
// the srcTx diff strategy depends on, and is only available on
// Parity/OpenEthereum/Erigon-family nodes with the trace module enabled.
func (c *Client) TraceReplayTransaction(ctx context.Context, hash common.Hash, traceTypes []string) (*TraceReplayResult, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	var out TraceReplayResult
	if err := c.rc.CallContext(ctx, &out, "trace_replayTransaction", hash, traceTypes); err != nil {
		return nil, fmt.Errorf("rpcx: trace_replayTransaction: %w", err)
	}
	return &out, nil
}

// RawBlockHeader is the JSON shape eth_getBlockByNumber returns for a
// header, kept in RPC string/hex form so headercodec can parse each field
// into exactly the integer width it needs without ethclient's own (lossier)
// *types.Header decoding getting in the way.
type RawBlockHeader struct {
	Hash             common.Hash    `json:"hash"`
	ParentHash       common.Hash    `json:"parentHash"`
	UncleHash        common.Hash    `json:"sha3Uncles"`
	Miner            common.Address `json:"miner"`
	StateRoot        common.Hash    `json:"stateRoot"`
	TxRoot           common.Hash    `json:"transactionsRoot"`
	ReceiptRoot      common.Hash    `json:"receiptsRoot"`
	Bloom            hexutil.Bytes  `json:"logsBloom"`
	Difficulty       *hexutil.Big   `json:"difficulty"`
	Number           *hexutil.Big   `json:"number"`
	GasLimit         hexutil.Uint64 `json:"gasLimit"`
	GasUsed          hexutil.Uint64 `json:"gasUsed"`
	Time             hexutil.Uint64 `json:"timestamp"`
	Extra            hexutil.Bytes  `json:"extraData"`
	MixDigest        common.Hash    `json:"mixHash"`
	Nonce            hexutil.Bytes  `json:"nonce"`
	BaseFee          *hexutil.Big   `json:"baseFeePerGas,omitempty"`
	WithdrawalsRoot  *common.Hash   `json:"withdrawalsRoot,omitempty"`
	BlobGasUsed      *hexutil.Uint64 `json:"blobGasUsed,omitempty"`
	ExcessBlobGas    *hexutil.Uint64 `json:"excessBlobGas,omitempty"`
	ParentBeaconRoot *common.Hash    `json:"parentBeaconBlockRoot,omitempty"`
}

// GetBlockHeader fetches the raw header fields for tag, without its
// transaction bodies, so headercodec.Parse can rebuild the exact RLP the
// source chain hashed.
func (c *Client) GetBlockHeader(ctx context.Context, tag BlockTag) (*RawBlockHeader, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	var out RawBlockHeader
	if err := c.rc.CallContext(ctx, &out, "eth_getBlockByNumber", tag.Arg(), false); err != nil {
		return nil, fmt.Errorf("rpcx: eth_getBlockByNumber: %w", err)
	}
	if out.Number == nil {
		return nil, fmt.Errorf("rpcx: block %s not found", tag)
	}
	return &out, nil
}

// BlockTransactionHashes fetches the hashes of every transaction in the
// block identified by tag, via eth_getBlockByNumber(tag, false) — the same
// "hydrated=false" form every go-ethereum-family node returns as a bare
// hash list rather than full transaction objects.
func (c *Client) BlockTransactionHashes(ctx context.Context, tag BlockTag) ([]common.Hash, error) {
	if err := c.acquire(ctx); err != nil {
		return nil, err
	}
	defer c.release()
	var out struct {
		Transactions []common.Hash `json:"transactions"`
	}
	if err := c.rc.CallContext(ctx, &out, "eth_getBlockByNumber", tag.Arg(), false); err != nil {
		return nil, fmt.Errorf("rpcx: eth_getBlockByNumber: %w", err)
	}
	return out.Transactions, nil
}
