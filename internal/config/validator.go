package config

import (
	"fmt"
	"net"
	"strings"

	"github.com/weisyn/txledger/pkg/types"
)

// ValidationError 配置验证错误
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("配置验证失败 [%s]: %s", e.Field, e.Message)
}

// ValidationErrors 多个验证错误
type ValidationErrors struct {
	Errors []error
}

func (e *ValidationErrors) Error() string {
	msg := "配置验证失败，发现以下问题：\n"
	for i, err := range e.Errors {
		msg += fmt.Sprintf("  %d. %s\n", i+1, err.Error())
	}
	return msg
}

// Unwrap 返回全部子错误
func (e *ValidationErrors) Unwrap() []error {
	return e.Errors
}

// validLogLevels 允许的日志级别
var validLogLevels = map[types.LogLevel]bool{
	types.DebugLevel: true,
	types.InfoLevel:  true,
	types.WarnLevel:  true,
	types.ErrorLevel: true,
	types.FatalLevel: true,
}

// ValidateAppConfig 校验用户配置中显式设置的字段，未设置的字段使用默认值不参与校验
func ValidateAppConfig(appConfig *types.AppConfig) error {
	if appConfig == nil {
		return nil
	}
	var errors []error

	// 1. 日志
	if lc := appConfig.Log; lc != nil {
		if lc.Level != nil && !validLogLevels[types.LogLevel(strings.ToLower(*lc.Level))] {
			errors = append(errors, &ValidationError{
				Field:   "log.level",
				Message: fmt.Sprintf("未知的日志级别 %q（可选 debug/info/warn/error/fatal）", *lc.Level),
			})
		}
		for field, v := range map[string]*int{
			"log.max_size":    lc.MaxSize,
			"log.max_backups": lc.MaxBackups,
			"log.max_age":     lc.MaxAge,
		} {
			if v != nil && *v < 0 {
				errors = append(errors, &ValidationError{Field: field, Message: "不能为负数"})
			}
		}
	}

	// 2. 事件总线
	if ec := appConfig.Event; ec != nil && ec.QueueSize != nil && *ec.QueueSize < 0 {
		errors = append(errors, &ValidationError{Field: "event.queue_size", Message: "不能为负数"})
	}

	// 3. 账本：network_id 与 chain_id 至少一个非空
	if lc := appConfig.Ledger; lc != nil {
		emptyNetwork := lc.NetworkID != nil && strings.TrimSpace(*lc.NetworkID) == ""
		emptyChain := lc.ChainID != nil && strings.TrimSpace(*lc.ChainID) == ""
		if emptyNetwork && emptyChain {
			errors = append(errors, &ValidationError{
				Field:   "ledger",
				Message: "network_id 与 chain_id 不能同时为空",
			})
		}
		if lc.ChainID != nil && strings.TrimSpace(*lc.ChainID) != "" && !strings.HasPrefix(*lc.ChainID, "0x") {
			errors = append(errors, &ValidationError{
				Field:   "ledger.chain_id",
				Message: fmt.Sprintf("链ID必须是 0x 前缀的十六进制字符串: %q", *lc.ChainID),
			})
		}
	}

	// 4. API
	if ac := appConfig.API; ac != nil && ac.HTTPListenAddr != nil && *ac.HTTPListenAddr != "" {
		if _, _, err := net.SplitHostPort(*ac.HTTPListenAddr); err != nil {
			errors = append(errors, &ValidationError{
				Field:   "api.http_listen_addr",
				Message: fmt.Sprintf("监听地址格式无效: %v", err),
			})
		}
	}

	if len(errors) > 0 {
		return &ValidationErrors{Errors: errors}
	}
	return nil
}
