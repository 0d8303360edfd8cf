package api

import (
	"time"

	"github.com/weisyn/txledger/pkg/types"
)

// APIOptions API服务配置选项
type APIOptions struct {
	HTTPEnabled      bool   `json:"http_enabled"`
	HTTPListenAddr   string `json:"http_listen_addr"`
	WebSocketEnabled bool   `json:"websocket_enabled"` // 挂载 /api/v1/ws 状态推送
	MetricsEnabled   bool   `json:"metrics_enabled"`   // 挂载 /metrics

	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

// Config API配置实现
type Config struct {
	options *APIOptions
}

// New 创建API配置，userConfig 可为 nil
func New(userConfig *types.UserAPIConfig) *Config {
	options := &APIOptions{
		HTTPEnabled:      defaultHTTPEnabled,
		HTTPListenAddr:   defaultHTTPListenAddr,
		WebSocketEnabled: defaultWebSocketEnabled,
		MetricsEnabled:   defaultMetricsEnabled,
		ReadTimeout:      defaultReadTimeout,
		WriteTimeout:     defaultWriteTimeout,
		ShutdownTimeout:  defaultShutdownTimeout,
	}
	if userConfig != nil {
		if userConfig.HTTPEnabled != nil {
			options.HTTPEnabled = *userConfig.HTTPEnabled
		}
		if userConfig.HTTPListenAddr != nil && *userConfig.HTTPListenAddr != "" {
			options.HTTPListenAddr = *userConfig.HTTPListenAddr
		}
		if userConfig.WebSocketEnabled != nil {
			options.WebSocketEnabled = *userConfig.WebSocketEnabled
		}
		if userConfig.MetricsEnabled != nil {
			options.MetricsEnabled = *userConfig.MetricsEnabled
		}
	}
	return &Config{options: options}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *APIOptions {
	return c.options
}
