package http

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiconfig "github.com/weisyn/txledger/internal/config/api"
	logimpl "github.com/weisyn/txledger/internal/core/infrastructure/log"
	"github.com/weisyn/txledger/internal/core/store"
	"github.com/weisyn/txledger/internal/core/txledger"
)

func newTestServer(t *testing.T, options *apiconfig.APIOptions) *Server {
	t.Helper()
	ledger, err := txledger.NewLedger(txledger.Options{
		GetNetwork:        func() string { return "5" },
		GetCurrentChainID: func() string { return "0x5" },
	})
	require.NoError(t, err)
	return NewServer(options, logimpl.NewNop(), ledger, nil, nil)
}

func TestServer_Routes(t *testing.T) {
	// Arrange
	options := apiconfig.New(nil).GetOptions()
	server := newTestServer(t, options)

	tests := []struct {
		target string
		want   int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/v1/transactions", http.StatusOK},
		{"/api/v1/ws", http.StatusNotFound},
	}

	for _, tt := range tests {
		// Act
		w := httptest.NewRecorder()
		server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

		// Assert
		assert.Equal(t, tt.want, w.Code, tt.target)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	}
}

func TestServer_MetricsDisabled(t *testing.T) {
	options := apiconfig.New(nil).GetOptions()
	options.MetricsEnabled = false
	server := newTestServer(t, options)

	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestServer_PropagatesRequestID(t *testing.T) {
	server := newTestServer(t, apiconfig.New(nil).GetOptions())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/transactions/42", nil)
	req.Header.Set("X-Request-ID", "req-1")
	w := httptest.NewRecorder()
	server.Handler().ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))
	var body map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "req-1", body["error"]["requestId"])
}

func TestServer_StartStop(t *testing.T) {
	options := apiconfig.New(nil).GetOptions()
	options.HTTPListenAddr = "127.0.0.1:0"
	server := newTestServer(t, options)

	require.NoError(t, server.Start())
	assert.Error(t, server.Start(), "重复启动")

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"healthy"`)

	require.NoError(t, server.Stop(context.Background()))
	assert.Empty(t, server.Addr())
	assert.NoError(t, server.Stop(context.Background()), "重复停止")
}

func TestServer_StateRoute(t *testing.T) {
	// Arrange
	options := apiconfig.New(nil).GetOptions()
	ledger, err := txledger.NewLedger(txledger.Options{
		GetNetwork:        func() string { return "5" },
		GetCurrentChainID: func() string { return "0x5" },
	})
	require.NoError(t, err)
	tree := store.NewComposableStore(nil, map[string]store.Source{txledger.StateSourceName: ledger.AsSource()})

	withTree := NewServer(options, logimpl.NewNop(), ledger, nil, tree)
	withoutTree := newTestServer(t, options)

	// Act
	w1 := httptest.NewRecorder()
	withTree.Handler().ServeHTTP(w1, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))
	w2 := httptest.NewRecorder()
	withoutTree.Handler().ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/v1/state", nil))

	// Assert
	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Contains(t, w1.Body.String(), `"transactions"`)
	assert.Equal(t, http.StatusNotFound, w2.Code)
}
