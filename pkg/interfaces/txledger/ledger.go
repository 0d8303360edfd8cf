// Package txledger 定义交易账本的对外接口
//
// 🎯 **设计原则**
// - 读写分离：只读的外部入口（HTTP、CLI）只依赖 Reader
// - 写穿透：记录的状态与历史只能经由账本自身的操作修改
// - 副本语义：所有返回的记录都是调用方独占的深拷贝
package txledger

import (
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/types"
)

// Reader 账本只读接口
type Reader interface {
	// GetTransaction 按ID获取记录，不存在时返回 NotFound 错误
	GetTransaction(id string) (*types.TxMeta, error)

	// ListTransactions 按简单条件查询，结果按插入顺序排列
	ListTransactions(query types.TxQuery) ([]*types.TxMeta, error)

	// GetUnapprovedTxList 当前网络上的待确认草稿
	GetUnapprovedTxList() map[string]*types.TxMeta

	// GetState 整体状态快照
	GetState() types.TxState
}

// Writer 账本写接口
type Writer interface {
	AddTransaction(tx *types.TxMeta) (*types.TxMeta, error)
	UpdateTransaction(tx *types.TxMeta, note string) (*types.TxMeta, error)

	SetTxStatusUnapproved(id string) error
	SetTxStatusApproved(id string) error
	SetTxStatusSigned(id string) error
	SetTxStatusSubmitted(id string) error
	SetTxStatusConfirmed(id string) error
	SetTxStatusRejected(id string) error
	SetTxStatusDropped(id string) error
	SetTxStatusFailed(id string, cause error) error

	DeleteTransaction(id string) error
	WipeTransactions(address string) int
	ClearUnapprovedTxs() int
}

// Notifier 状态事件订阅
type Notifier interface {
	On(eventType event.EventType, handler event.EventHandler) (types.SubscriptionID, error)
	Once(eventType event.EventType, handler event.EventHandler) (types.SubscriptionID, error)
	Off(id types.SubscriptionID) error
	WaitAsync()
}

// TxLedger 完整的账本接口
type TxLedger interface {
	Reader
	Writer
	Notifier
}
