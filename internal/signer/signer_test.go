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

package signer

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/keystore"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"

	"github.com/storagemirror/engine/internal/rpcx"
)

func dialFakeClient(t *testing.T) *rpcx.Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"jsonrpc":"2.0","id":1,"result":null}`))
	}))
	t.Cleanup(srv.Close)
	cl, err := rpcx.Dial(context.Background(), "tgt", srv.URL, 0)
	require.NoError(t, err)
	t.Cleanup(func() { cl.Close() })
	return cl
}

func emptyLegacyTx(t *testing.T) *types.Transaction {
	t.Helper()
	to := common.HexToAddress("0xdddd000000000000000000000000000000dddd")
	return types.NewTx(&types.LegacyTx{
		Nonce:    0,
		GasPrice: big.NewInt(1),
		Gas:      21000,
		To:       &to,
		Value:    big.NewInt(0),
	})
}

func writeKeystoreFile(t *testing.T, passphrase string) (path string, want common.Address) {
	t.Helper()
	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	want = crypto.PubkeyToAddress(key.PublicKey)

	keyJSON, err := keystore.EncryptKey(&keystore.Key{
		PrivateKey: key,
		Address:    want,
	}, passphrase, keystore.LightScryptN, keystore.LightScryptP)
	require.NoError(t, err)

	path = filepath.Join(t.TempDir(), "key.json")
	require.NoError(t, os.WriteFile(path, keyJSON, 0o600))
	return path, want
}

func TestResolve_Keystore(t *testing.T) {
	path, want := writeKeystoreFile(t, "correct-passphrase")

	sgn, err := Resolve(Config{KeystorePath: path, Passphrase: "correct-passphrase"}, dialFakeClient(t), big.NewInt(1337))
	require.NoError(t, err)
	require.Equal(t, want, sgn.From)

	opts, err := sgn.Opts(context.Background())
	require.NoError(t, err)
	require.Equal(t, want, opts.From)
}

func TestResolve_KeystoreWrongPassphrase(t *testing.T) {
	path, _ := writeKeystoreFile(t, "correct-passphrase")

	_, err := Resolve(Config{KeystorePath: path, Passphrase: "wrong"}, dialFakeClient(t), big.NewInt(1337))
	require.Error(t, err)
}

func TestResolve_PassphraseFile(t *testing.T) {
	path, want := writeKeystoreFile(t, "from-file")
	passphrasePath := filepath.Join(t.TempDir(), "passphrase.txt")
	require.NoError(t, os.WriteFile(passphrasePath, []byte("from-file\n"), 0o600))

	sgn, err := Resolve(Config{KeystorePath: path, PassphraseFile: passphrasePath}, dialFakeClient(t), big.NewInt(1337))
	require.NoError(t, err)
	require.Equal(t, want, sgn.From)
}

func TestResolve_NeitherConfigured(t *testing.T) {
	_, err := Resolve(Config{}, dialFakeClient(t), big.NewInt(1337))
	require.Error(t, err)
}

func TestResolve_UnlockedAccountSendsEthSendTransaction(t *testing.T) {
	from := common.HexToAddress("0xcccc000000000000000000000000000000cccc")

	var gotMethod string
	var gotParams []interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID     json.RawMessage `json:"id"`
			Method string          `json:"method"`
			Params []interface{}   `json:"params"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotMethod = req.Method
		gotParams = req.Params
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      req.ID,
			"jsonrpc": "2.0",
			"result":  "0x" + "11" + "22",
		}))
	}))
	defer srv.Close()

	cl, err := rpcx.Dial(context.Background(), "tgt", srv.URL, 0)
	require.NoError(t, err)
	defer cl.Close()

	sgn, err := Resolve(Config{UnlockedAccount: from}, cl, big.NewInt(1337))
	require.NoError(t, err)
	require.Equal(t, from, sgn.From)

	opts, err := sgn.Opts(context.Background())
	require.NoError(t, err)
	require.Equal(t, from, opts.From)

	tx := emptyLegacyTx(t)
	require.NoError(t, sgn.Backend.SendTransaction(context.Background(), tx))
	require.Equal(t, "eth_sendTransaction", gotMethod)
	require.Len(t, gotParams, 1)
}
