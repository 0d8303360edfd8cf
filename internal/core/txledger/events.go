// 文件说明：
// 本文件定义账本的事件下沉接口（TxEventSink）及其实现。
// 账本只在状态迁移辅助方法返回前调用下沉接口，具体投递由事件总线的
// 分发协程在调用方返回之后完成。
package txledger

import (
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/types"
)

// TxEventSink 账本对外的事件下沉接口
//
// OnStatusChanged 在每次状态迁移辅助方法成功后调用一次（含幂等调用），
// tx 为调用方独占的记录副本。
type TxEventSink interface {
	OnStatusChanged(tx *types.TxMeta)
}

// NoopTxEventSink 空实现，未配置事件总线时使用
type NoopTxEventSink struct{}

// OnStatusChanged 空实现
func (NoopTxEventSink) OnStatusChanged(tx *types.TxMeta) {}

// busEventSink 把状态变更发布到事件总线
type busEventSink struct {
	bus event.EventBus
}

// NewBusEventSink 基于事件总线创建下沉实现
func NewBusEventSink(bus event.EventBus) TxEventSink {
	if bus == nil {
		return NoopTxEventSink{}
	}
	return &busEventSink{bus: bus}
}

// OnStatusChanged 依次发布单笔事件 "<id>:<status>" 与通用事件 tx:status-update
func (s *busEventSink) OnStatusChanged(tx *types.TxMeta) {
	s.bus.Publish(StatusEventType(tx.ID, tx.Status), tx)
	s.bus.Publish(TopicStatusUpdate, types.TxStatusUpdate{ID: tx.ID, Status: tx.Status})
}
