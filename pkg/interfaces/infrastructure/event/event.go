// Package event 定义事件总线接口
//
// 事件以主题（EventType）路由。发布是异步的：Publish 只负责入队，
// 由总线的分发协程在调用方返回之后依次投递给订阅者。
package event

import (
	"context"

	"github.com/weisyn/txledger/pkg/types"
)

// EventType 事件类型
type EventType = types.EventType

// EventHandler 事件处理函数
type EventHandler func(eventType EventType, data interface{})

// EventBus 事件总线接口
type EventBus interface {
	// Subscribe 订阅事件，返回可用于取消订阅的ID
	Subscribe(eventType EventType, handler EventHandler) (types.SubscriptionID, error)

	// SubscribeOnce 一次性订阅，首次投递后自动取消
	SubscribeOnce(eventType EventType, handler EventHandler) (types.SubscriptionID, error)

	// UnsubscribeByID 通过订阅ID取消订阅
	UnsubscribeByID(id types.SubscriptionID) error

	// Publish 发布事件（异步投递）
	Publish(eventType EventType, data interface{})

	// WaitAsync 等待所有已入队事件投递完成，不可在事件处理函数内调用
	WaitAsync()

	// HasCallback 检查指定事件类型是否有订阅者
	HasCallback(eventType EventType) bool

	// GetActiveSubscriptions 获取活跃订阅列表
	GetActiveSubscriptions() []*types.SubscriptionInfo

	// Start 启动分发协程
	Start(ctx context.Context) error

	// Stop 投递完剩余事件后停止分发协程
	Stop(ctx context.Context) error

	// IsRunning 是否正在运行
	IsRunning() bool
}
