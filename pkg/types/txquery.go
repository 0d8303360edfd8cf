package types

// TxQuery 面向外部调用方（HTTP、CLI）的简单查询条件
type TxQuery struct {
	AllNetworks bool     `json:"all,omitempty"`    // 跨网络查询
	Status      TxStatus `json:"status,omitempty"` // 状态过滤，空为不限
	From        string   `json:"from,omitempty"`   // 发送方地址过滤，空为不限
	Limit       int      `json:"limit,omitempty"`  // 最近 N 个 nonce 分组，0 为不限
}
