package types

// TxStatus 交易在账本中的生命周期状态
//
// 主路径：unapproved → approved → signed → submitted → confirmed
// 旁路：rejected / failed / dropped（任意未终结状态均可进入）
type TxStatus string

const (
	TxStatusUnapproved TxStatus = "unapproved" // 草稿，等待用户确认
	TxStatusApproved   TxStatus = "approved"   // 用户已确认
	TxStatusSigned     TxStatus = "signed"     // 已签名
	TxStatusSubmitted  TxStatus = "submitted"  // 已提交到网络
	TxStatusConfirmed  TxStatus = "confirmed"  // 已上链确认（终态）
	TxStatusRejected   TxStatus = "rejected"   // 用户拒绝（终态）
	TxStatusFailed     TxStatus = "failed"     // 处理失败（终态）
	TxStatusDropped    TxStatus = "dropped"    // 被网络丢弃（终态）
)

// allTxStatuses 按主路径顺序排列，旁路状态在后
var allTxStatuses = []TxStatus{
	TxStatusUnapproved,
	TxStatusApproved,
	TxStatusSigned,
	TxStatusSubmitted,
	TxStatusConfirmed,
	TxStatusRejected,
	TxStatusFailed,
	TxStatusDropped,
}

// AllTxStatuses 返回全部已知状态
func AllTxStatuses() []TxStatus {
	out := make([]TxStatus, len(allTxStatuses))
	copy(out, allTxStatuses)
	return out
}

// IsValid 是否为已知状态
func (s TxStatus) IsValid() bool {
	for _, known := range allTxStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsFinal 是否为终态。终态记录可以被保留策略淘汰。
func (s TxStatus) IsFinal() bool {
	switch s {
	case TxStatusConfirmed, TxStatusRejected, TxStatusFailed, TxStatusDropped:
		return true
	default:
		return false
	}
}

// String 实现 fmt.Stringer
func (s TxStatus) String() string { return string(s) }

// TxStatusUpdate 通用状态变更事件的载荷
type TxStatusUpdate struct {
	ID     string   `json:"id"`
	Status TxStatus `json:"status"`
}
