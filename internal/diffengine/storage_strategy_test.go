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
	"github.com/stretchr/testify/require"

	"github.com/storagemirror/engine/internal/rpcx"
)

// chainFakeServer answers parity_listStorageKeys with a single canned page
// and eth_getStorageAt from a fixed key->value map, enough to drive
// StorageStrategy end to end against two independent "chains".
func chainFakeServer(t *testing.T, keyList []string, values map[string]string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req rpcReq
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		var result interface{}
		switch req.Method {
		case "parity_listStorageKeys":
			result = keyList
		case "eth_getStorageAt":
			key, _ := req.Params[1].(string)
			v, ok := values[key]
			if !ok {
				v = "0x0000000000000000000000000000000000000000000000000000000000000000"
			}
			result = v
		default:
			t.Fatalf("unexpected method %s", req.Method)
		}
		w.Header().Set("Content-Type", "application/json")
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"jsonrpc": "2.0", "id": req.ID, "result": result,
		}))
	}))
}

func TestStorageStrategy_EmitsDisagreeingKeys(t *testing.T) {
	k1 := common.HexToHash("0x01").Hex()
	k2 := common.HexToHash("0x02").Hex()

	srcSrv := chainFakeServer(t, []string{k1, k2}, map[string]string{
		k1: common.HexToHash("0x0a").Hex(),
		k2: common.HexToHash("0x0b").Hex(),
	})
	defer srcSrv.Close()
	tgtSrv := chainFakeServer(t, []string{k1, k2}, map[string]string{
		k1: common.HexToHash("0x0a").Hex(), // same as source: no diff
		k2: common.HexToHash("0xff").Hex(), // differs: should appear in diff
	})
	defer tgtSrv.Close()

	src, err := rpcx.Dial(context.Background(), "src", srcSrv.URL, 0)
	require.NoError(t, err)
	defer src.Close()
	tgt, err := rpcx.Dial(context.Background(), "tgt", tgtSrv.URL, 0)
	require.NoError(t, err)
	defer tgt.Close()

	addr := common.HexToAddress("0xaaaa000000000000000000000000000000aaaa")
	tgtAddr := common.HexToAddress("0xbbbb000000000000000000000000000000bbbb")

	d, err := StorageStrategy{}.Diff(context.Background(), Params{
		Src: src, Tgt: tgt, Addr: addr, TgtAddr: tgtAddr,
		SrcTag: rpcx.Latest(), TgtTag: rpcx.Latest(),
		PageSize: 10, Concurrency: 4,
	})
	require.NoError(t, err)
	require.Len(t, d, 1)
	require.Equal(t, common.HexToHash("0x02"), d[0].Key)
	require.Equal(t, common.HexToHash("0x0b"), d[0].SrcValue)
	require.Equal(t, common.HexToHash("0xff"), d[0].TargetValue)
}
