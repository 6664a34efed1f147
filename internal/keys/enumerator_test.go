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

package keys

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/storagemirror/engine/internal/rpcx"
)

type rpcEnvelope struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []interface{}   `json:"params"`
}

// pagedFakeServer serves parity_listStorageKeys from a fixed sequence of
// pages, ignoring the requested offset/count beyond advancing to the next
// canned page on every call — enough to exercise Enumerate's loop and
// dedup logic without a real node.
func pagedFakeServer(t *testing.T, pages [][]string) *httptest.Server {
	t.Helper()
	call := 0
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcEnvelope
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var result []string
		if call < len(pages) {
			result = pages[call]
		}
		call++
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0",
			"id":      req.ID,
			"result":  result,
		}))
	}))
}

func TestEnumerate_PagesUntilShortPage(t *testing.T) {
	k := func(b byte) string { return common.BytesToHash([]byte{b}).Hex() }
	srv := pagedFakeServer(t, [][]string{
		{k(1), k(2)},
		{k(3)}, // short page, fewer than pageSize=2, ends enumeration
	})
	defer srv.Close()

	cl, err := rpcx.Dial(context.Background(), "src", srv.URL, 0)
	require.NoError(t, err)
	defer cl.Close()

	addr := common.HexToAddress("0xeeee000000000000000000000000000000eeee")
	out, err := Enumerate(context.Background(), cl, addr, rpcx.Latest(), 2)
	require.NoError(t, err)
	require.Len(t, out, 3)
}

func TestEnumerate_DropsOverlappingKey(t *testing.T) {
	k := func(b byte) string { return common.BytesToHash([]byte{b}).Hex() }
	srv := pagedFakeServer(t, [][]string{
		{k(1), k(2)},
		{k(2), k(3)}, // k(2) repeats the previous page's cursor
	})
	defer srv.Close()

	cl, err := rpcx.Dial(context.Background(), "src", srv.URL, 0)
	require.NoError(t, err)
	defer cl.Close()

	addr := common.HexToAddress("0xffff000000000000000000000000000000ffff")
	out, err := Enumerate(context.Background(), cl, addr, rpcx.Latest(), 2)
	require.NoError(t, err)
	require.Len(t, out, 3)
}

func TestEnumerate_EmptyContract(t *testing.T) {
	srv := pagedFakeServer(t, [][]string{{}})
	defer srv.Close()

	cl, err := rpcx.Dial(context.Background(), "src", srv.URL, 0)
	require.NoError(t, err)
	defer cl.Close()

	addr := common.HexToAddress("0x1111000000000000000000000000000000111a")
	out, err := Enumerate(context.Background(), cl, addr, rpcx.Latest(), 2)
	require.NoError(t, err)
	require.Empty(t, out)
}
