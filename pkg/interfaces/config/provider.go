package config

import (
	apiconfig "github.com/weisyn/txledger/internal/config/api"
	eventconfig "github.com/weisyn/txledger/internal/config/event"
	logconfig "github.com/weisyn/txledger/internal/config/log"
	txledgerconfig "github.com/weisyn/txledger/internal/config/txledger"
	"github.com/weisyn/txledger/pkg/types"
)

// Provider 配置提供者：合并默认值与用户配置后输出各模块选项
type Provider interface {
	// GetLog 获取日志配置
	GetLog() *logconfig.LogOptions

	// GetEvent 获取事件总线配置
	GetEvent() *eventconfig.EventOptions

	// GetLedger 获取交易账本配置
	GetLedger() *txledgerconfig.LedgerOptions

	// GetAPI 获取API服务配置
	GetAPI() *apiconfig.APIOptions

	// GetAppConfig 获取原始用户配置
	GetAppConfig() *types.AppConfig
}
