package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/txledger/internal/core/store"
	"github.com/weisyn/txledger/internal/core/txledger"
	"github.com/weisyn/txledger/pkg/types"
)

func TestGetState(t *testing.T) {
	// Arrange
	router, ledger := newTestRouter(t)
	tree := store.NewComposableStore(nil, map[string]store.Source{txledger.StateSourceName: ledger.AsSource()})
	NewStateHandler(tree).RegisterRoutes(router.Group("/api/v1"))

	// Act
	w := doGet(router, "/api/v1/state")

	// Assert
	require.Equal(t, http.StatusOK, w.Code)
	var flat struct {
		Data types.TxState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &flat))
	assert.Len(t, flat.Data.Transactions, 3)
	assert.Len(t, flat.Data.Transactions["3"].History, 4)

	w = doGet(router, "/api/v1/state?tree=true")
	require.Equal(t, http.StatusOK, w.Code)
	var nested struct {
		Data map[string]types.TxState `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &nested))
	assert.Len(t, nested.Data[txledger.StateSourceName].Transactions, 3)
}
