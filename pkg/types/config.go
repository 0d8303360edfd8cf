// Package types provides configuration type definitions.
package types

// AppConfig 应用程序根配置
// 只包含JSON配置文件解析所需的结构，指针字段为空表示未配置
// 默认值在 internal/config/*/defaults.go 中定义
type AppConfig struct {
	AppName *string `json:"app_name,omitempty"` // 应用名称

	Log    *UserLogConfig    `json:"log,omitempty"`    // 日志配置
	Event  *UserEventConfig  `json:"event,omitempty"`  // 事件总线配置
	Ledger *UserLedgerConfig `json:"ledger,omitempty"` // 交易账本配置
	API    *UserAPIConfig    `json:"api,omitempty"`    // API服务配置
}

// UserLogConfig 用户日志配置
type UserLogConfig struct {
	Level      *string `json:"level,omitempty"`
	ToConsole  *bool   `json:"to_console,omitempty"`
	FilePath   *string `json:"file_path,omitempty"`
	MaxSize    *int    `json:"max_size,omitempty"`
	MaxBackups *int    `json:"max_backups,omitempty"`
	MaxAge     *int    `json:"max_age,omitempty"`
	Compress   *bool   `json:"compress,omitempty"`
}

// UserEventConfig 用户事件总线配置
type UserEventConfig struct {
	Enabled   *bool `json:"enabled,omitempty"`
	QueueSize *int  `json:"queue_size,omitempty"`
}

// UserLedgerConfig 用户交易账本配置
type UserLedgerConfig struct {
	NetworkID      *string `json:"network_id,omitempty"`
	ChainID        *string `json:"chain_id,omitempty"`
	TxHistoryLimit *int    `json:"tx_history_limit,omitempty"`
	StateFile      *string `json:"state_file,omitempty"`
}

// UserAPIConfig 用户API服务配置
type UserAPIConfig struct {
	HTTPEnabled      *bool   `json:"http_enabled,omitempty"`
	HTTPListenAddr   *string `json:"http_listen_addr,omitempty"`
	WebSocketEnabled *bool   `json:"websocket_enabled,omitempty"`
	MetricsEnabled   *bool   `json:"metrics_enabled,omitempty"`
}
