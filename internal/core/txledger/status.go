package txledger

import (
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/types"
)

// TopicStatusUpdate 通用状态变更事件主题，载荷为 types.TxStatusUpdate
const TopicStatusUpdate event.EventType = "tx:status-update"

// StatusEventType 单笔交易的状态事件主题 "<id>:<status>"，载荷为记录副本
func StatusEventType(id string, status types.TxStatus) event.EventType {
	return event.EventType(id + ":" + string(status))
}

// mainPath 主路径上各状态的位置
var mainPath = map[types.TxStatus]int{
	types.TxStatusUnapproved: 0,
	types.TxStatusApproved:   1,
	types.TxStatusSigned:     2,
	types.TxStatusSubmitted:  3,
	types.TxStatusConfirmed:  4,
}

// CanTransition 判断状态迁移是否被允许
//
//   - 相同状态：允许（幂等）
//   - 终态出发：拒绝
//   - 进入旁路（rejected/failed/dropped）：任意非终态均可
//   - 主路径：只能前进，可跳步
func CanTransition(from, to types.TxStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if from == to {
		return true
	}
	if from.IsFinal() {
		return false
	}
	toPos, onMain := mainPath[to]
	if !onMain {
		return true
	}
	return toPos > mainPath[from]
}
