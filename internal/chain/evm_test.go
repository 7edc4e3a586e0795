package chain

import (
	"context"
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---------------------------------------------------------------------------
// helpers
// ---------------------------------------------------------------------------

// rpcMock creates a test HTTP server that serves a fixed JSON-RPC response
// per method. Pass method→result pairs; any unknown method returns an RPC error.
func rpcMock(t *testing.T, responses map[string]interface{}) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Method string `json:"method"`
			ID     int    `json:"id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if result, ok := responses[req.Method]; ok {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"result":  result,
			})
		} else {
			json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
				"jsonrpc": "2.0",
				"id":      req.ID,
				"error":   map[string]interface{}{"code": -32601, "message": "method not found"},
			})
		}
	}))
}

// rpcErrorServer creates a test HTTP server that always returns a JSON-RPC error.
func rpcErrorServer(t *testing.T, code int, msg string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID int `json:"id"`
		}
		json.NewDecoder(r.Body).Decode(&req) //nolint:errcheck
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{ //nolint:errcheck
			"jsonrpc": "2.0",
			"id":      req.ID,
			"error":   map[string]interface{}{"code": code, "message": msg},
		})
	}))
}

func ctx() context.Context { return context.Background() }

// ---------------------------------------------------------------------------
// parseBigHex
// ---------------------------------------------------------------------------

func TestParseBigHexValid(t *testing.T) {
	n, ok := parseBigHex("0x64")
	require.True(t, ok)
	assert.Equal(t, int64(100), n.Int64())
}

func TestParseBigHexEmptyIsZero(t *testing.T) {
	n, ok := parseBigHex("0x")
	require.True(t, ok)
	assert.Equal(t, int64(0), n.Int64())
}

func TestParseBigHexInvalidString(t *testing.T) {
	_, ok := parseBigHex("xyz")
	assert.False(t, ok)
}

func TestParseBigHexLargeValue(t *testing.T) {
	// 1e18 = 0xDE0B6B3A7640000
	n, ok := parseBigHex("0xDE0B6B3A7640000")
	require.True(t, ok)
	expected := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	assert.Equal(t, expected, n)
}

// ---------------------------------------------------------------------------
// EVMClient — reads
// ---------------------------------------------------------------------------

func TestGetTokenBalanceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_call": "0x000000000000000000000000000000000000000000000000000000003B9ACA00",
	})
	defer srv.Close()

	bal, err := NewEVMClient(srv.URL).GetTokenBalance(ctx(),
		"0x1d70d57ccd2798323232b2dd027b3abca5c00091",
		"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000_000), bal.Int64())
}

func TestGetTokenBalanceRPCError(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "execution reverted")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).GetTokenBalance(ctx(), "0xtoken", "0xwallet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RPC error")
}

func TestGetAllowanceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_call": "0x0000000000000000000000000000000000000000000000000000000001c9c380",
	})
	defer srv.Close()

	allowance, err := NewEVMClient(srv.URL).GetAllowance(ctx(),
		"0xc891481a0aac630f4d89744ccd2c7d2c4215fd47",
		"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266",
		"0x8ba1f109551bd432803012645ac136ddd64dba72")
	require.NoError(t, err)
	assert.Equal(t, int64(30_000_000), allowance.Int64())
}

func TestGetBlockNumberSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_blockNumber": "0x1388",
	})
	defer srv.Close()

	n, err := NewEVMClient(srv.URL).GetBlockNumber(ctx())
	require.NoError(t, err)
	assert.Equal(t, uint64(5000), n)
}

func TestChainIDSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_chainId": "0xaa36a7", // Sepolia
	})
	defer srv.Close()

	id, err := NewEVMClient(srv.URL).ChainID(ctx())
	require.NoError(t, err)
	assert.Equal(t, int64(11155111), id)
}

func TestGetNonceSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionCount": "0xa",
	})
	defer srv.Close()

	nonce, err := NewEVMClient(srv.URL).GetNonce(ctx(), "0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266")
	require.NoError(t, err)
	assert.Equal(t, uint64(10), nonce)
}

func TestSendRawTransactionSuccess(t *testing.T) {
	txHash := "0xaabbccddeeff00112233445566778899aabbccddeeff00112233445566778899"
	srv := rpcMock(t, map[string]interface{}{
		"eth_sendRawTransaction": txHash,
	})
	defer srv.Close()

	hash, err := NewEVMClient(srv.URL).SendRawTransaction(ctx(), "0xsignedtxdata")
	require.NoError(t, err)
	assert.Equal(t, txHash, hash)
}

func TestSendRawTransactionRPCError(t *testing.T) {
	srv := rpcErrorServer(t, -32000, "nonce too low")
	defer srv.Close()

	_, err := NewEVMClient(srv.URL).SendRawTransaction(ctx(), "0xbadtx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nonce too low")
}

func TestContextCancellationAborts(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{"eth_blockNumber": "0x1"})
	defer srv.Close()

	cancelled, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEVMClient(srv.URL).GetBlockNumber(cancelled)
	require.Error(t, err)
}

// ---------------------------------------------------------------------------
// receipts
// ---------------------------------------------------------------------------

func TestGetTransactionReceiptPending(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": nil,
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(ctx(), "0xabc")
	require.NoError(t, err)
	assert.Nil(t, receipt)
}

func TestGetTransactionReceiptMined(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0xABC",
			"gasUsed":     "0xC350",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).GetTransactionReceipt(ctx(), "0xabc")
	require.NoError(t, err)
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(1), receipt.Status)
	assert.Equal(t, uint64(0xABC), receipt.BlockNumber)
	assert.Equal(t, uint64(50000), receipt.GasUsed)
}

func TestWaitForReceiptSuccess(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x1",
			"blockNumber": "0x1",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(ctx(), "0xabc", 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), receipt.Status)
}

func TestWaitForReceiptReverted(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getTransactionReceipt": map[string]interface{}{
			"status":      "0x0",
			"blockNumber": "0x1",
			"gasUsed":     "0x5208",
		},
	})
	defer srv.Close()

	receipt, err := NewEVMClient(srv.URL).WaitForReceipt(ctx(), "0xabc", 10*time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reverted")
	require.NotNil(t, receipt)
	assert.Equal(t, uint64(0), receipt.Status)
}

// ---------------------------------------------------------------------------
// logs
// ---------------------------------------------------------------------------

func TestGetLogsParsesEntries(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getLogs": []map[string]interface{}{
			{
				"address": "0x1d70d57ccd2798323232b2dd027b3abca5c00091",
				"topics": []string{
					"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef",
					"0x000000000000000000000000f39fd6e51aad88f6f4ce6ab8827279cfffb92266",
					"0x0000000000000000000000008ba1f109551bd432803012645ac136ddd64dba72",
				},
				"data":            "0x0000000000000000000000000000000000000000000000000de0b6b3a7640000",
				"blockNumber":     "0x10",
				"transactionHash": "0xdeadbeef",
				"logIndex":        "0x2",
			},
		},
	})
	defer srv.Close()

	logs, err := NewEVMClient(srv.URL).GetLogs(ctx(),
		"0x1d70d57ccd2798323232b2dd027b3abca5c00091",
		[]string{"0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef"},
		"0x1", "latest")
	require.NoError(t, err)
	require.Len(t, logs, 1)

	l := logs[0]
	assert.Len(t, l.Topics, 3)
	assert.Equal(t, "0xdeadbeef", l.TxHash)
	assert.Equal(t, uint64(16), l.Block())
	assert.Equal(t, uint64(2), l.Index())
}

func TestGetLogsEmpty(t *testing.T) {
	srv := rpcMock(t, map[string]interface{}{
		"eth_getLogs": []map[string]interface{}{},
	})
	defer srv.Close()

	logs, err := NewEVMClient(srv.URL).GetLogs(ctx(), "0xtoken", nil, "0x1", "latest")
	require.NoError(t, err)
	assert.Empty(t, logs)
}

// ---------------------------------------------------------------------------
// ExtractRevertReason
// ---------------------------------------------------------------------------

func TestExtractRevertReasonWithPrefix(t *testing.T) {
	got := ExtractRevertReason("RPC error -32000: execution reverted: ERC20: transfer amount exceeds balance")
	assert.Equal(t, "ERC20: transfer amount exceeds balance", got)
}

func TestExtractRevertReasonFallback(t *testing.T) {
	assert.Equal(t, "nonce too low", ExtractRevertReason("nonce too low"))
}
