package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apitypes "github.com/weisyn/txledger/internal/api/http/types"
	txledgerif "github.com/weisyn/txledger/pkg/interfaces/txledger"
)

// HealthHandler 健康检查
type HealthHandler struct {
	ledger  txledgerif.Reader
	version string
}

// NewHealthHandler 创建健康检查处理器
func NewHealthHandler(ledger txledgerif.Reader, version string) *HealthHandler {
	return &HealthHandler{ledger: ledger, version: version}
}

// GetHealth GET /health
func (h *HealthHandler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, apitypes.HealthResponse{
		Status:  "healthy",
		Records: len(h.ledger.GetState().Transactions),
		Version: h.version,
	})
}
