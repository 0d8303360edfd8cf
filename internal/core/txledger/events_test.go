package txledger

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/types"
)

// recordingBus 只记录 Publish 调用的事件总线桩
type recordingBus struct {
	event.EventBus
	published []event.EventType
	payloads  []interface{}
}

func (b *recordingBus) Publish(eventType event.EventType, data interface{}) {
	b.published = append(b.published, eventType)
	b.payloads = append(b.payloads, data)
}

func TestBusEventSink_PublishesPerIDThenGeneric(t *testing.T) {
	bus := &recordingBus{}
	sink := NewBusEventSink(bus)
	tx := &types.TxMeta{ID: "9", Status: types.TxStatusDropped}

	sink.OnStatusChanged(tx)

	assert.Equal(t, []event.EventType{"9:dropped", TopicStatusUpdate}, bus.published)
	assert.Same(t, tx, bus.payloads[0])
	assert.Equal(t, types.TxStatusUpdate{ID: "9", Status: types.TxStatusDropped}, bus.payloads[1])
}

func TestNewBusEventSink_NilBusIsNoop(t *testing.T) {
	sink := NewBusEventSink(nil)
	assert.IsType(t, NoopTxEventSink{}, sink)
	sink.OnStatusChanged(&types.TxMeta{ID: "1"})
}
