package txledger

// 交易账本配置默认值
const (
	// defaultTxHistoryLimit 每个网络保留的 (from, nonce) 分组上限
	defaultTxHistoryLimit = 40

	defaultNetworkID = "1"
	defaultChainID   = "0x1"

	// defaultStateFile 为空表示从空账本启动
	defaultStateFile = ""
)
