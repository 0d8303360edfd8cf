package handlers

import (
	"net/http"
	"sort"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/txledger/internal/api/http/middleware"
	apitypes "github.com/weisyn/txledger/internal/api/http/types"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
	txledgerif "github.com/weisyn/txledger/pkg/interfaces/txledger"
	"github.com/weisyn/txledger/pkg/types"
)

// TransactionHandler 交易账本只读端点
//
// - GET /transactions: 按条件查询（all、limit、status、from）
// - GET /transactions/unapproved: 当前网络的待确认草稿
// - GET /transactions/:id: 单条记录
// - GET /transactions/:id/history: 单条记录的审计历史
type TransactionHandler struct {
	logger log.Logger
	ledger txledgerif.Reader
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(logger log.Logger, ledger txledgerif.Reader) *TransactionHandler {
	return &TransactionHandler{logger: logger, ledger: ledger}
}

// RegisterRoutes 注册交易路由
func (h *TransactionHandler) RegisterRoutes(r *gin.RouterGroup) {
	txs := r.Group("/transactions")
	{
		txs.GET("", h.ListTransactions)
		txs.GET("/unapproved", h.GetUnapproved)
		txs.GET("/:id", h.GetTransaction)
		txs.GET("/:id/history", h.GetHistory)
	}
}

// listQuery GET /transactions 的查询参数
type listQuery struct {
	All    bool   `form:"all"`
	Limit  int    `form:"limit" binding:"min=0"`
	Status string `form:"status"`
	From   string `form:"from"`
}

// ListTransactions 查询交易列表
//
// GET /api/v1/transactions?all=true&limit=10&status=submitted&from=0x...
func (h *TransactionHandler) ListTransactions(c *gin.Context) {
	var q listQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, apitypes.NewErrorResponse(
			apitypes.ErrInvalidArgument, "查询参数不合法", err.Error(),
		).WithRequestID(middleware.GetRequestID(c)))
		return
	}

	txs, err := h.ledger.ListTransactions(types.TxQuery{
		AllNetworks: q.All,
		Status:      types.TxStatus(q.Status),
		From:        q.From,
		Limit:       q.Limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, apitypes.NewListResponse(txs, len(txs)))
}

// GetUnapproved 当前网络的待确认草稿，按ID排序
//
// GET /api/v1/transactions/unapproved
func (h *TransactionHandler) GetUnapproved(c *gin.Context) {
	unapproved := h.ledger.GetUnapprovedTxList()
	ids := make([]string, 0, len(unapproved))
	for id := range unapproved {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	txs := make([]*types.TxMeta, 0, len(ids))
	for _, id := range ids {
		txs = append(txs, unapproved[id])
	}
	respondOK(c, apitypes.NewListResponse(txs, len(txs)))
}

// GetTransaction 单条记录
//
// GET /api/v1/transactions/:id
func (h *TransactionHandler) GetTransaction(c *gin.Context) {
	tx, err := h.ledger.GetTransaction(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	respondOK(c, apitypes.NewSuccessResponse(tx))
}

// GetHistory 单条记录的审计历史：第0条为快照，其后为变更批次
//
// GET /api/v1/transactions/:id/history
func (h *TransactionHandler) GetHistory(c *gin.Context) {
	tx, err := h.ledger.GetTransaction(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	history := tx.History
	if history == nil {
		history = []types.HistoryEntry{}
	}
	respondOK(c, apitypes.NewSuccessResponse(apitypes.HistoryResponse{
		ID:      tx.ID,
		Status:  string(tx.Status),
		History: history,
	}))
}
