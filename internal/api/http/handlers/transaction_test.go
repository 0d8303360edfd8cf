package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apitypes "github.com/weisyn/txledger/internal/api/http/types"
	logimpl "github.com/weisyn/txledger/internal/core/infrastructure/log"
	"github.com/weisyn/txledger/internal/core/txledger"
	"github.com/weisyn/txledger/pkg/types"
)

const (
	addrA = "0x1678a085c290ebd122dc42cba69373b5953b831d"
	addrB = "0xc684832530fcbddae4b4230a47e991ddcec2831d"
)

// newTestRouter 创建挂载交易路由的引擎，账本预置三条记录
func newTestRouter(t *testing.T) (*gin.Engine, *txledger.Ledger) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ledger, err := txledger.NewLedger(txledger.Options{
		TxHistoryLimit:    40,
		GetNetwork:        func() string { return "5" },
		GetCurrentChainID: func() string { return "0x5" },
	})
	require.NoError(t, err)

	for _, tx := range []*types.TxMeta{
		{ID: "1", Status: types.TxStatusUnapproved, Time: 1, TxParams: &types.TxParams{From: addrA, To: addrB, Nonce: "0x0"}},
		{ID: "2", Status: types.TxStatusUnapproved, Time: 2, TxParams: &types.TxParams{From: addrB, To: addrA, Nonce: "0x0"}},
		{ID: "3", Status: types.TxStatusUnapproved, Time: 3, TxParams: &types.TxParams{From: addrA, To: addrB, Nonce: "0x1"}},
	} {
		_, err := ledger.AddTransaction(tx)
		require.NoError(t, err)
	}
	require.NoError(t, ledger.SetTxStatusApproved("3"))
	require.NoError(t, ledger.SetTxStatusSigned("3"))
	require.NoError(t, ledger.SetTxStatusSubmitted("3"))

	router := gin.New()
	NewTransactionHandler(logimpl.NewNop(), ledger).RegisterRoutes(router.Group("/api/v1"))
	router.GET("/health", NewHealthHandler(ledger, "v-test").GetHealth)
	return router, ledger
}

// listBody 列表接口响应
type listBody struct {
	Data  []types.TxMeta `json:"data"`
	Count int            `json:"count"`
}

func doGet(router *gin.Engine, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	return w
}

func TestListTransactions(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name   string
		target string
		want   []string
	}{
		{"全部", "/api/v1/transactions", []string{"1", "2", "3"}},
		{"按状态", "/api/v1/transactions?status=submitted", []string{"3"}},
		{"按发送方忽略大小写", "/api/v1/transactions?from=0x1678A085C290EBD122DC42CBA69373B5953B831D", []string{"1", "3"}},
		{"按 nonce 分组截断", "/api/v1/transactions?limit=1", []string{"3"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Act
			w := doGet(router, tt.target)

			// Assert
			require.Equal(t, http.StatusOK, w.Code)
			var body listBody
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			got := make([]string, 0, len(body.Data))
			for _, tx := range body.Data {
				got = append(got, tx.ID)
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), body.Count)
		})
	}
}

func TestListTransactions_BadRequest(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, target := range []string{
		"/api/v1/transactions?limit=-1",
		"/api/v1/transactions?limit=abc",
		"/api/v1/transactions?status=pending",
	} {
		w := doGet(router, target)
		assert.Equal(t, http.StatusBadRequest, w.Code, target)

		var body apitypes.ErrorResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		assert.Equal(t, apitypes.ErrInvalidArgument, body.Error.Code)
	}
}

func TestGetUnapproved(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doGet(router, "/api/v1/transactions/unapproved")

	require.Equal(t, http.StatusOK, w.Code)
	var body listBody
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "1", body.Data[0].ID)
	assert.Equal(t, "2", body.Data[1].ID)
}

func TestGetTransaction(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doGet(router, "/api/v1/transactions/3")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data types.TxMeta `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, types.TxStatusSubmitted, body.Data.Status)

	w = doGet(router, "/api/v1/transactions/42")
	assert.Equal(t, http.StatusNotFound, w.Code)
	var errBody apitypes.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &errBody))
	assert.Equal(t, apitypes.ErrNotFound, errBody.Error.Code)
}

func TestGetHistory(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doGet(router, "/api/v1/transactions/3/history")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Data struct {
			ID      string               `json:"id"`
			Status  string               `json:"status"`
			History []types.HistoryEntry `json:"history"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "3", body.Data.ID)
	assert.Equal(t, "submitted", body.Data.Status)
	require.Len(t, body.Data.History, 4, "快照加三次状态迁移")
	assert.NotNil(t, body.Data.History[0].Snapshot)

	w = doGet(router, "/api/v1/transactions/42/history")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doGet(router, "/health")

	require.Equal(t, http.StatusOK, w.Code)
	var body apitypes.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, apitypes.HealthResponse{Status: "healthy", Records: 3, Version: "v-test"}, body)
}
