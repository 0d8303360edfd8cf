package txledger

import "github.com/weisyn/txledger/pkg/types"

// LedgerOptions 交易账本配置选项
type LedgerOptions struct {
	NetworkID      string `json:"network_id"`       // 当前网络ID
	ChainID        string `json:"chain_id"`         // 当前链ID（十六进制）
	TxHistoryLimit int    `json:"tx_history_limit"` // 每个网络保留的 nonce 分组数
	StateFile      string `json:"state_file"`       // 启动时加载的状态快照
}

// Config 账本配置实现
type Config struct {
	options *LedgerOptions
}

// New 创建账本配置，userConfig 可为 nil
func New(userConfig *types.UserLedgerConfig) *Config {
	options := &LedgerOptions{
		NetworkID:      defaultNetworkID,
		ChainID:        defaultChainID,
		TxHistoryLimit: defaultTxHistoryLimit,
		StateFile:      defaultStateFile,
	}
	if userConfig != nil {
		if userConfig.NetworkID != nil {
			options.NetworkID = *userConfig.NetworkID
		}
		if userConfig.ChainID != nil {
			options.ChainID = *userConfig.ChainID
		}
		if userConfig.TxHistoryLimit != nil && *userConfig.TxHistoryLimit > 0 {
			options.TxHistoryLimit = *userConfig.TxHistoryLimit
		}
		if userConfig.StateFile != nil {
			options.StateFile = *userConfig.StateFile
		}
	}
	return &Config{options: options}
}

// NewFromOptions 直接包装已解析的选项
func NewFromOptions(options *LedgerOptions) *Config {
	if options == nil {
		return New(nil)
	}
	return &Config{options: options}
}

// GetOptions 获取完整配置选项
func (c *Config) GetOptions() *LedgerOptions {
	return c.options
}

// GetNetworkID 获取当前网络ID
func (c *Config) GetNetworkID() string {
	return c.options.NetworkID
}

// GetChainID 获取当前链ID
func (c *Config) GetChainID() string {
	return c.options.ChainID
}

// GetTxHistoryLimit 获取保留上限
func (c *Config) GetTxHistoryLimit() int {
	return c.options.TxHistoryLimit
}

// GetStateFile 获取启动状态文件路径
func (c *Config) GetStateFile() string {
	return c.options.StateFile
}
