package event

import "github.com/weisyn/txledger/pkg/types"

// EventOptions 事件总线配置选项
type EventOptions struct {
	Enabled   bool `json:"enabled"`    // 是否启用事件系统
	QueueSize int  `json:"queue_size"` // 分发队列积压告警阈值
}

// Config 事件配置实现
type Config struct {
	options *EventOptions
}

// New 创建事件配置，userConfig 可为 nil
func New(userConfig *types.UserEventConfig) *Config {
	options := &EventOptions{
		Enabled:   defaultEnabled,
		QueueSize: defaultQueueSize,
	}
	if userConfig != nil {
		if userConfig.Enabled != nil {
			options.Enabled = *userConfig.Enabled
		}
		if userConfig.QueueSize != nil && *userConfig.QueueSize > 0 {
			options.QueueSize = *userConfig.QueueSize
		}
	}
	return &Config{options: options}
}

// NewFromOptions 直接包装已解析的选项
func NewFromOptions(options *EventOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *EventOptions {
	return c.options
}

// IsEnabled 是否启用事件系统
func (c *Config) IsEnabled() bool {
	return c.options.Enabled
}

// GetQueueSize 获取队列告警阈值
func (c *Config) GetQueueSize() int {
	return c.options.QueueSize
}
