package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/weisyn/txledger/internal/api/http/middleware"
	"github.com/weisyn/txledger/internal/api/http/types"
	"github.com/weisyn/txledger/internal/core/txledger"
)

// respondOK 写入成功响应
func respondOK(c *gin.Context, resp *types.SuccessResponse) {
	c.JSON(http.StatusOK, resp.WithRequestID(middleware.GetRequestID(c)))
}

// respondError 把账本错误映射为 HTTP 状态码与错误码
func respondError(c *gin.Context, err error) {
	status, code := http.StatusInternalServerError, types.ErrInternal
	switch {
	case txledger.IsNotFoundError(err):
		status, code = http.StatusNotFound, types.ErrNotFound
	case txledger.IsInvalidArgumentError(err), txledger.IsValidationError(err):
		status, code = http.StatusBadRequest, types.ErrInvalidArgument
	}
	_ = c.Error(err)
	c.JSON(status, types.NewErrorResponse(code, err.Error(), nil).WithRequestID(middleware.GetRequestID(c)))
}
