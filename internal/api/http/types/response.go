// Package types HTTP 接口的响应结构
package types

// SuccessResponse 统一成功响应格式
type SuccessResponse struct {
	Data      interface{} `json:"data"`
	Count     *int        `json:"count,omitempty"` // 列表接口返回的条数
	RequestID string      `json:"requestId,omitempty"`
}

// NewSuccessResponse 创建成功响应
func NewSuccessResponse(data interface{}) *SuccessResponse {
	return &SuccessResponse{Data: data}
}

// NewListResponse 创建带条数的列表响应
func NewListResponse(data interface{}, count int) *SuccessResponse {
	return &SuccessResponse{Data: data, Count: &count}
}

// WithRequestID 添加请求ID
func (r *SuccessResponse) WithRequestID(requestID string) *SuccessResponse {
	r.RequestID = requestID
	return r
}

// HistoryResponse 交易历史响应
type HistoryResponse struct {
	ID      string      `json:"id"`
	Status  string      `json:"status"`
	History interface{} `json:"history"`
}

// HealthResponse 健康检查响应
type HealthResponse struct {
	Status  string `json:"status"` // healthy
	Records int    `json:"records"`
	Version string `json:"version,omitempty"`
}
