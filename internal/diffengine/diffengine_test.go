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

package diffengine

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/require"

	"github.com/storagemirror/engine/internal/rpcx"
)

type rpcReq struct {
	ID     json.RawMessage `json:"id"`
	Method string          `json:"method"`
	Params []interface{}   `json:"params"`
}

// deploymentFakeServer models a chain where addr has code from
// deployedAt onward and nothing before it, driving eth_blockNumber and
// eth_getCode for FindDeploymentBlock's binary search.
func deploymentFakeServer(t *testing.T, head, deployedAt uint64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var result interface{}
		switch req.Method {
		case "eth_blockNumber":
			result = hexUint(head)
		case "eth_getCode":
			blockArg, _ := req.Params[1].(string)
			n := parseHexOrTag(blockArg, head)
			if n >= deployedAt {
				result = "0x600160010160005260206000f3"
			} else {
				result = "0x"
			}
		default:
			t.Fatalf("unexpected method %s", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		}))
	}))
}

func hexUint(n uint64) string { return hexutil.EncodeUint64(n) }

func parseHexOrTag(s string, head uint64) uint64 {
	if s == "latest" {
		return head
	}
	var n uint64
	for i := 2; i < len(s); i++ {
		c := s[i]
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		}
		n = n*16 + d
	}
	return n
}

func TestFindDeploymentBlock(t *testing.T) {
	srv := deploymentFakeServer(t, 1000, 237)
	defer srv.Close()
	cl, err := rpcx.Dial(context.Background(), "src", srv.URL, 0)
	require.NoError(t, err)
	defer cl.Close()

	addr := common.HexToAddress("0xaaaa000000000000000000000000000000aaaa")
	got, err := FindDeploymentBlock(context.Background(), cl, addr)
	require.NoError(t, err)
	require.Equal(t, uint64(237), got)
}

func TestDecodeStorageDelta(t *testing.T) {
	from, to, err := decodeStorageDelta(json.RawMessage(`"="`))
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, from)
	require.Equal(t, common.Hash{}, to)

	from, to, err = decodeStorageDelta(json.RawMessage(`{"+":"0x0000000000000000000000000000000000000000000000000000000000000005"}`))
	require.NoError(t, err)
	require.Equal(t, common.Hash{}, from)
	require.Equal(t, common.HexToHash("0x05"), to)

	from, to, err = decodeStorageDelta(json.RawMessage(`{"*":{"from":"0x0000000000000000000000000000000000000000000000000000000000000001","to":"0x0000000000000000000000000000000000000000000000000000000000000002"}}`))
	require.NoError(t, err)
	require.Equal(t, common.HexToHash("0x01"), from)
	require.Equal(t, common.HexToHash("0x02"), to)
}
