// Package txledger provides the transaction ledger error types and codes.
// 本文件定义账本统一错误类型与错误码，以及按错误码分类的判断工具。
package txledger

import (
	"errors"
	"fmt"
)

// =========================================================================
// 🚨 错误代码定义
// =========================================================================

// LedgerErrorCode 账本错误代码
type LedgerErrorCode int

const (
	// ErrCodeValidation 交易参数或状态不合法，写入被整体回滚
	ErrCodeValidation LedgerErrorCode = 2000 + iota
	// ErrCodeNotFound 引用的交易ID不存在
	ErrCodeNotFound
	// ErrCodeInvalidArgument 查询参数不合法
	ErrCodeInvalidArgument
	// ErrCodeInvalidTransition 状态机拒绝的状态迁移
	ErrCodeInvalidTransition
)

// =========================================================================
// 🚨 错误类型定义
// =========================================================================

// LedgerError 账本统一错误类型
type LedgerError struct {
	Code    LedgerErrorCode
	Message string
	Field   string // 出错的字段（校验错误时填写）
	Value   any    // 出错的取值
	Cause   error
}

// Error 实现 error 接口
func (e *LedgerError) Error() string {
	msg := fmt.Sprintf("txledger错误[%d]: %s", e.Code, e.Message)
	if e.Field != "" {
		msg += fmt.Sprintf(" (字段 %s=%v)", e.Field, e.Value)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (原因: %v)", e.Cause)
	}
	return msg
}

// Unwrap 支持 errors.Unwrap
func (e *LedgerError) Unwrap() error { return e.Cause }

// Is 支持 errors.Is 比较（按错误码等价）
func (e *LedgerError) Is(target error) bool {
	if targetErr, ok := target.(*LedgerError); ok {
		return e.Code == targetErr.Code
	}
	return false
}

// 按错误码比较的哨兵错误
var (
	ErrValidation        = &LedgerError{Code: ErrCodeValidation, Message: "校验失败"}
	ErrNotFound          = &LedgerError{Code: ErrCodeNotFound, Message: "交易不存在"}
	ErrInvalidArgument   = &LedgerError{Code: ErrCodeInvalidArgument, Message: "参数不合法"}
	ErrInvalidTransition = &LedgerError{Code: ErrCodeInvalidTransition, Message: "状态迁移不合法"}
)

// =========================================================================
// 🔧 错误构造
// =========================================================================

// NewValidationError 创建校验错误
func NewValidationError(field string, value any, message string) *LedgerError {
	return &LedgerError{Code: ErrCodeValidation, Message: message, Field: field, Value: value}
}

// NewNotFoundError 创建交易不存在错误
func NewNotFoundError(id string) *LedgerError {
	return &LedgerError{Code: ErrCodeNotFound, Message: "交易不存在", Field: "id", Value: id}
}

// NewInvalidArgumentError 创建参数错误
func NewInvalidArgumentError(field string, message string) *LedgerError {
	return &LedgerError{Code: ErrCodeInvalidArgument, Message: message, Field: field}
}

// NewInvalidTransitionError 创建状态迁移错误
func NewInvalidTransitionError(id string, from, to fmt.Stringer) *LedgerError {
	return &LedgerError{
		Code:    ErrCodeInvalidTransition,
		Message: fmt.Sprintf("不允许从 %s 迁移到 %s", from, to),
		Field:   "id",
		Value:   id,
	}
}

// =========================================================================
// 🎯 错误分类判断
// =========================================================================

// IsValidationError 检查是否为校验错误
func IsValidationError(err error) bool { return errors.Is(err, ErrValidation) }

// IsNotFoundError 检查是否为交易不存在错误
func IsNotFoundError(err error) bool { return errors.Is(err, ErrNotFound) }

// IsInvalidArgumentError 检查是否为参数错误
func IsInvalidArgumentError(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsInvalidTransitionError 检查是否为状态迁移错误
func IsInvalidTransitionError(err error) bool { return errors.Is(err, ErrInvalidTransition) }
