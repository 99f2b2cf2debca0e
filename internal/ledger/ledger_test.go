package ledger

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/securechain/securechain/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveFileID_DeterministicAndPrefixed(t *testing.T) {
	url := "http://127.0.0.1:9000/vault/files/2026/8/29/abc"

	id1 := DeriveFileID(url)
	id2 := DeriveFileID(url)

	assert.Equal(t, id1, id2)
	assert.True(t, strings.HasPrefix(id1, "0x"))
	assert.Len(t, id1, 2+64)

	assert.NotEqual(t, id1, DeriveFileID(url+"x"))
}

func TestHashRecord_NonceChangesHash(t *testing.T) {
	rec := Record{FileID: "0xabc", Recipient: "0xdef", FileURL: "u", FileName: "f", UnlockTime: 1}

	h1 := HashRecord(rec, []byte{1})
	h2 := HashRecord(rec, []byte{2})

	assert.True(t, strings.HasPrefix(h1, "0x"))
	assert.NotEqual(t, h1, h2)
}

func gatewayStub(t *testing.T, handler http.HandlerFunc) *HTTPBinder {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	b := NewHTTPBinder(srv.URL, "test-token")
	b.maxRetries = 2
	return b
}

func TestHTTPBinder_SubmitSuccess(t *testing.T) {
	rec := Record{FileID: "0xabc", Recipient: "0xdef", FileURL: "u", FileName: "f", UnlockTime: 42}

	b := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/ledger/records", r.URL.Path)
		require.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var got Record
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		require.Equal(t, rec, got)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Receipt{TxHash: "0x1234", RecordedAt: time.Now()})
	})

	receipt, err := b.Submit(context.Background(), rec)
	require.NoError(t, err)
	assert.Equal(t, "0x1234", receipt.TxHash)
}

func TestHTTPBinder_SubmitDuplicateNotRetried(t *testing.T) {
	var calls atomic.Int64

	b := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusConflict)
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "file id already used"})
	})

	_, err := b.Submit(context.Background(), Record{FileID: "0xabc"})
	assert.ErrorIs(t, err, common.ErrDuplicateRecord)
	assert.Contains(t, err.Error(), "already used")
	assert.Equal(t, int64(1), calls.Load(), "duplicates are final, no retry")
}

func TestHTTPBinder_SubmitRejectedIsRetried(t *testing.T) {
	var calls atomic.Int64

	b := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_ = json.NewEncoder(w).Encode(map[string]string{"message": "congestion"})
			return
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(Receipt{TxHash: "0x99", RecordedAt: time.Now()})
	})

	receipt, err := b.Submit(context.Background(), Record{FileID: "0xabc"})
	require.NoError(t, err)
	assert.Equal(t, "0x99", receipt.TxHash)
	assert.Equal(t, int64(2), calls.Load())
}

func TestHTTPBinder_Lookup(t *testing.T) {
	rec := Record{FileID: "0xabc", Recipient: "0xdef", FileURL: "u", FileName: "f", UnlockTime: 7}

	b := gatewayStub(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/ledger/records/0xabc":
			_ = json.NewEncoder(w).Encode(rec)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})

	got, err := b.Lookup(context.Background(), "0xabc")
	require.NoError(t, err)
	assert.Equal(t, rec, *got)

	_, err = b.Lookup(context.Background(), "0xmissing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
