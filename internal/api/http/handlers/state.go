package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/weisyn/txledger/internal/api/http/types"
)

// StateTree 具名状态树
type StateTree interface {
	GetState() map[string]any
	GetFlatState() map[string]any
}

// StateHandler 状态导出
type StateHandler struct {
	tree StateTree
}

// NewStateHandler 创建状态导出处理器
func NewStateHandler(tree StateTree) *StateHandler {
	return &StateHandler{tree: tree}
}

// RegisterRoutes 注册状态路由
func (h *StateHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/state", h.GetState)
}

// GetState 导出当前状态
//
// GET /api/v1/state           扁平状态，即 {"transactions": {...}} 快照，可直接作为 state_file 装入
// GET /api/v1/state?tree=true 按来源名称分组的状态树
func (h *StateHandler) GetState(c *gin.Context) {
	if c.Query("tree") == "true" {
		respondOK(c, types.NewSuccessResponse(h.tree.GetState()))
		return
	}
	respondOK(c, types.NewSuccessResponse(h.tree.GetFlatState()))
}
