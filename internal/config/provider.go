package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/txledger/internal/config/api"
	"github.com/weisyn/txledger/internal/config/event"
	"github.com/weisyn/txledger/internal/config/log"
	"github.com/weisyn/txledger/internal/config/txledger"
	"github.com/weisyn/txledger/pkg/interfaces/config"
	"github.com/weisyn/txledger/pkg/types"
)

// Provider 实现配置提供者接口
type Provider struct {
	appConfig *types.AppConfig
}

// NewProvider 创建配置提供者，appConfig 可为 nil（全部使用默认值）
func NewProvider(appConfig *types.AppConfig) config.Provider {
	return &Provider{
		appConfig: appConfig,
	}
}

// GetLog 获取日志配置
func (p *Provider) GetLog() *log.LogOptions {
	var userLogConfig *types.UserLogConfig
	if p.appConfig != nil {
		userLogConfig = p.appConfig.Log
	}
	return log.New(userLogConfig).GetOptions()
}

// GetEvent 获取事件总线配置
func (p *Provider) GetEvent() *event.EventOptions {
	var userEventConfig *types.UserEventConfig
	if p.appConfig != nil {
		userEventConfig = p.appConfig.Event
	}
	return event.New(userEventConfig).GetOptions()
}

// GetLedger 获取交易账本配置
func (p *Provider) GetLedger() *txledger.LedgerOptions {
	var userLedgerConfig *types.UserLedgerConfig
	if p.appConfig != nil {
		userLedgerConfig = p.appConfig.Ledger
	}
	return txledger.New(userLedgerConfig).GetOptions()
}

// GetAPI 获取API服务配置
func (p *Provider) GetAPI() *api.APIOptions {
	var userAPIConfig *types.UserAPIConfig
	if p.appConfig != nil {
		userAPIConfig = p.appConfig.API
	}
	return api.New(userAPIConfig).GetOptions()
}

// GetAppConfig 获取原始用户配置
func (p *Provider) GetAppConfig() *types.AppConfig {
	return p.appConfig
}

// LoadAppConfig 从 JSON 文件读取用户配置
func LoadAppConfig(path string) (*types.AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	}
	var appConfig types.AppConfig
	if err := json.Unmarshal(data, &appConfig); err != nil {
		return nil, fmt.Errorf("解析配置文件 %s 失败: %w", path, err)
	}
	if err := ValidateAppConfig(&appConfig); err != nil {
		return nil, err
	}
	return &appConfig, nil
}
