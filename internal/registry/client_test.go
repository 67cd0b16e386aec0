package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testFingerprint = "0x2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func TestNewClient(t *testing.T) {
	c, err := NewClient("https://registry.example/api/register")
	require.NoError(t, err)
	require.NotNil(t, c)

	_, err = NewClient("")
	require.Error(t, err)
}

func TestClient_Submit_Success(t *testing.T) {
	var got Submission
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NotEmpty(t, r.Header.Get("X-Request-Id"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Record{TxHash: "0xabc123", BlockNumber: 123})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	sub := Submission{
		FileHash:       testFingerprint,
		Signature:      "0xsig",
		User:           "0xUser",
		TurnstileToken: "tok",
	}
	record, err := c.Submit(context.Background(), sub)
	require.NoError(t, err)

	assert.Equal(t, "0xabc123", record.TxHash)
	assert.Equal(t, int64(123), record.BlockNumber)
	assert.Equal(t, sub, got, "submission should arrive on the wire unchanged")
}

func TestClient_Submit_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": "rate limited"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), Submission{FileHash: testFingerprint})
	require.Error(t, err)

	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusInternalServerError, svcErr.Status)
	assert.Equal(t, "rate limited", svcErr.Message)
}

func TestClient_Submit_ServiceErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), Submission{FileHash: testFingerprint})
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, http.StatusBadGateway, svcErr.Status)
	assert.Empty(t, svcErr.Message)
}

func TestClient_Submit_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // unreachable endpoint

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Submit(context.Background(), Submission{FileHash: testFingerprint})
	var netErr *NetworkError
	require.True(t, errors.As(err, &netErr))
}

func TestClient_Lookup_Found(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, testFingerprint, r.URL.Query().Get("hash"))

		_ = json.NewEncoder(w).Encode(LookupResult{
			Found:     true,
			Owner:     "0xOwner",
			Timestamp: 1700000000,
		})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	result, err := c.Lookup(context.Background(), testFingerprint)
	require.NoError(t, err)
	assert.True(t, result.Found)
	assert.Equal(t, "0xOwner", result.Owner)
	assert.Equal(t, int64(1700000000), result.Timestamp)
}

func TestClient_Lookup_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(LookupResult{Found: false})
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	result, err := c.Lookup(context.Background(), testFingerprint)
	require.NoError(t, err)
	assert.False(t, result.Found)
	assert.Empty(t, result.Owner)
}

func TestClient_Lookup_ServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error": "maintenance"}`))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL)
	require.NoError(t, err)

	_, err = c.Lookup(context.Background(), testFingerprint)
	var svcErr *ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, "maintenance", svcErr.Message)
}
