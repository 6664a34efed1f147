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

// Package signer resolves the target-chain credential the migration
// coordinator submits transactions with, via either a local encrypted
// keystore file or an account already unlocked on the target node.
package signer

import (
	"context"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"

	"github.com/storagemirror/engine/internal/rpcx"
)

// Config selects how the engine signs target-chain transactions. One of
// KeystorePath or UnlockedAccount must be set; when both are, the keystore
// is used.
type Config struct {
	// KeystorePath is the path to a V3 encrypted JSON keystore file.
	KeystorePath string
	// Passphrase decrypts KeystorePath. Read from file, not flag value,
	// when PassphraseFile is set, to avoid leaking it via ps(1).
	Passphrase     string
	PassphraseFile string

	// UnlockedAccount is a target-node account already unlocked via
	// personal_unlockAccount (or a dev chain where every account is
	// unlocked by default); transactions are submitted with
	// eth_sendTransaction rather than signed locally.
	UnlockedAccount common.Address
}

func (c Config) resolvePassphrase() (string, error) {
	if c.PassphraseFile != "" {
		raw, err := os.ReadFile(c.PassphraseFile)
		if err != nil {
			return "", fmt.Errorf("signer: read passphrase file: %w", err)
		}
		return trimNewline(string(raw)), nil
	}
	return c.Passphrase, nil
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}

// Signer bundles the resolved sending address, a per-transaction
// bind.TransactOpts factory, and the bind.ContractBackend the engine's
// contracts package must be bound against — the keystore path uses the
// target client's ordinary backend, the unlocked-account path wraps it to
// submit via eth_sendTransaction instead of eth_sendRawTransaction.
type Signer struct {
	From    common.Address
	Backend bind.ContractBackend

	newOpts func(ctx context.Context) (*bind.TransactOpts, error)
}

// Opts returns TransactOpts bound to ctx, ready for a single transaction.
func (s *Signer) Opts(ctx context.Context) (*bind.TransactOpts, error) {
	return s.newOpts(ctx)
}

// Resolve builds a Signer for chainID, either by decrypting
// cfg.KeystorePath or by delegating to cfg.UnlockedAccount on cl.
func Resolve(cfg Config, cl *rpcx.Client, chainID *big.Int) (*Signer, error) {
	switch {
	case cfg.KeystorePath != "":
		return resolveKeystore(cfg, cl, chainID)
	case cfg.UnlockedAccount != (common.Address{}):
		return resolveUnlocked(cfg, cl), nil
	default:
		return nil, fmt.Errorf("signer: neither a keystore path nor an unlocked account address was configured")
	}
}

func resolveKeystore(cfg Config, cl *rpcx.Client, chainID *big.Int) (*Signer, error) {
	keyJSON, err := os.ReadFile(cfg.KeystorePath)
	if err != nil {
		return nil, fmt.Errorf("signer: read keystore file: %w", err)
	}
	passphrase, err := cfg.resolvePassphrase()
	if err != nil {
		return nil, err
	}
	key, err := keystore.DecryptKey(keyJSON, passphrase)
	if err != nil {
		return nil, fmt.Errorf("signer: decrypt keystore file: %w", err)
	}
	from := crypto.PubkeyToAddress(key.PrivateKey.PublicKey)
	return &Signer{
		From:    from,
		Backend: cl.ContractBackend(),
		newOpts: func(ctx context.Context) (*bind.TransactOpts, error) {
			opts, err := bind.NewKeyedTransactorWithChainID(key.PrivateKey, chainID)
			if err != nil {
				return nil, fmt.Errorf("signer: build transactor: %w", err)
			}
			opts.Context = ctx
			return opts, nil
		},
	}, nil
}

// resolveUnlocked builds a Signer whose Backend submits through
// eth_sendTransaction, and whose TransactOpts.Signer is a no-op that
// leaves the transaction unsigned — the target node signs it itself using
// the already-unlocked account named by From.
func resolveUnlocked(cfg Config, cl *rpcx.Client) *Signer {
	from := cfg.UnlockedAccount
	backend := &nodeAccountBackend{
		ContractBackend: cl.ContractBackend(),
		client:          cl,
		unlockedFrom:    from,
	}
	return &Signer{
		From:    from,
		Backend: backend,
		newOpts: func(ctx context.Context) (*bind.TransactOpts, error) {
			return &bind.TransactOpts{
				From:    from,
				Context: ctx,
				Signer: func(addr common.Address, tx *types.Transaction) (*types.Transaction, error) {
					return tx, nil
				},
			}, nil
		},
	}
}

// nodeAccountBackend overrides SendTransaction to submit via
// eth_sendTransaction, the form a node accepts for an account it already
// has the private key for, rather than eth_sendRawTransaction which
// requires a signature this engine never produces on the unlocked-account
// path.
type nodeAccountBackend struct {
	bind.ContractBackend
	client       *rpcx.Client
	unlockedFrom common.Address
}

func (b *nodeAccountBackend) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	args := map[string]interface{}{
		"from":  b.fromOf(tx),
		"gas":   hexutil.EncodeUint64(tx.Gas()),
		"value": (*hexutil.Big)(tx.Value()),
		"data":  hexutil.Bytes(tx.Data()),
	}
	if to := tx.To(); to != nil {
		args["to"] = to.Hex()
	}
	if gasPrice := tx.GasPrice(); gasPrice != nil {
		args["gasPrice"] = (*hexutil.Big)(gasPrice)
	}
	return b.client.CallContext(ctx, nil, "eth_sendTransaction", args)
}

// fromOf recovers the sender the transaction was built for. Transactions
// produced by this package's no-op Signer are never actually signed, so
// tx.From-style recovery is unavailable; the coordinator always submits on
// behalf of a single configured account, so the backend is constructed
// knowing which one that is.
func (b *nodeAccountBackend) fromOf(tx *types.Transaction) common.Address {
	return b.unlockedFrom
}
