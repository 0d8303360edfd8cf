package event

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	eventconfig "github.com/weisyn/txledger/internal/config/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/types"
)

// newStartedBus 创建并启动事件总线，测试结束时停止
func newStartedBus(t *testing.T) *EventBus {
	t.Helper()
	bus := New(eventconfig.New(nil), nil)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	return bus
}

func TestEventBus_PublishSubscribe(t *testing.T) {
	bus := newStartedBus(t)

	var received []interface{}
	var mu sync.Mutex
	_, err := bus.Subscribe("tx:status-update", func(_ event.EventType, data interface{}) {
		mu.Lock()
		received = append(received, data)
		mu.Unlock()
	})
	require.NoError(t, err)

	bus.Publish("tx:status-update", "a")
	bus.Publish("tx:status-update", "b")
	bus.Publish("other", "ignored")
	bus.WaitAsync()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []interface{}{"a", "b"}, received, "事件应按发布顺序投递")
}

func TestEventBus_DeliveryIsAsynchronous(t *testing.T) {
	bus := New(eventconfig.New(nil), nil)

	var calls atomic.Int32
	_, err := bus.Subscribe("1:signed", func(event.EventType, interface{}) { calls.Add(1) })
	require.NoError(t, err)

	// 未启动时只入队
	bus.Publish("1:signed", nil)
	assert.Equal(t, int32(0), calls.Load(), "发布调用内不应同步执行处理器")

	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })
	bus.WaitAsync()
	assert.Equal(t, int32(1), calls.Load())
}

func TestEventBus_MultipleSubscribersAndUnsubscribe(t *testing.T) {
	bus := newStartedBus(t)

	var first, second atomic.Int32
	id1, err := bus.Subscribe("topic", func(event.EventType, interface{}) { first.Add(1) })
	require.NoError(t, err)
	_, err = bus.Subscribe("topic", func(event.EventType, interface{}) { second.Add(1) })
	require.NoError(t, err)
	assert.NotEqual(t, types.SubscriptionID(""), id1)

	bus.Publish("topic", nil)
	bus.WaitAsync()

	require.NoError(t, bus.UnsubscribeByID(id1))
	bus.Publish("topic", nil)
	bus.WaitAsync()

	assert.Equal(t, int32(1), first.Load(), "取消订阅后不应再收到事件")
	assert.Equal(t, int32(2), second.Load())
	assert.Error(t, bus.UnsubscribeByID(id1), "重复取消订阅应返回错误")
}

func TestEventBus_SubscribeOnce(t *testing.T) {
	bus := newStartedBus(t)

	var calls atomic.Int32
	_, err := bus.SubscribeOnce("topic", func(event.EventType, interface{}) { calls.Add(1) })
	require.NoError(t, err)

	bus.Publish("topic", nil)
	bus.Publish("topic", nil)
	bus.WaitAsync()

	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, bus.HasCallback("topic"))
}

func TestEventBus_HandlerPanicIsolated(t *testing.T) {
	bus := newStartedBus(t)

	var delivered atomic.Int32
	_, err := bus.Subscribe("topic", func(event.EventType, interface{}) { panic("boom") })
	require.NoError(t, err)
	_, err = bus.Subscribe("topic", func(event.EventType, interface{}) { delivered.Add(1) })
	require.NoError(t, err)

	bus.Publish("topic", nil)
	bus.WaitAsync()

	assert.Equal(t, int32(1), delivered.Load(), "一个处理器 panic 不应影响其他处理器")
}

func TestEventBus_HandlerCanPublishAndSubscribe(t *testing.T) {
	bus := newStartedBus(t)

	var chained atomic.Int32
	_, err := bus.Subscribe("first", func(event.EventType, interface{}) {
		_, _ = bus.Subscribe("second", func(event.EventType, interface{}) { chained.Add(1) })
		bus.Publish("second", nil)
	})
	require.NoError(t, err)

	bus.Publish("first", nil)
	bus.WaitAsync()

	assert.Equal(t, int32(1), chained.Load(), "处理器内可再次订阅并发布")
}

func TestEventBus_WaitAsyncInsideHandlerReturns(t *testing.T) {
	// Arrange
	bus := newStartedBus(t)
	returned := make(chan struct{})
	var later atomic.Int32
	_, err := bus.Subscribe("first", func(event.EventType, interface{}) {
		bus.WaitAsync()
		close(returned)
	})
	require.NoError(t, err)
	_, err = bus.Subscribe("second", func(event.EventType, interface{}) { later.Add(1) })
	require.NoError(t, err)

	// Act
	bus.Publish("first", nil)
	bus.Publish("second", nil)

	// Assert
	select {
	case <-returned:
	case <-time.After(2 * time.Second):
		t.Fatal("处理器内调用 WaitAsync 未返回")
	}
	bus.WaitAsync()
	assert.Equal(t, int32(1), later.Load(), "后续事件应继续投递")
}

func TestEventBus_WaitAsyncWaitsForRunningHandler(t *testing.T) {
	// Arrange
	bus := newStartedBus(t)
	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool
	_, err := bus.Subscribe("slow", func(event.EventType, interface{}) {
		close(started)
		<-release
		finished.Store(true)
	})
	require.NoError(t, err)

	// Act
	bus.Publish("slow", nil)
	<-started
	go func() {
		time.Sleep(50 * time.Millisecond)
		close(release)
	}()
	bus.WaitAsync()

	// Assert: 处理器外的调用方仍需等待正在执行的处理器
	assert.True(t, finished.Load())
}

func TestGoroutineID(t *testing.T) {
	id := goroutineID()
	assert.NotZero(t, id)
	assert.Equal(t, id, goroutineID())

	other := make(chan uint64)
	go func() { other <- goroutineID() }()
	assert.NotEqual(t, id, <-other)
}

func TestEventBus_Disabled(t *testing.T) {
	disabled := false
	bus := New(eventconfig.New(&types.UserEventConfig{Enabled: &disabled}), nil)
	require.NoError(t, bus.Start(context.Background()))
	t.Cleanup(func() { _ = bus.Stop(context.Background()) })

	var calls atomic.Int32
	_, err := bus.Subscribe("topic", func(event.EventType, interface{}) { calls.Add(1) })
	require.NoError(t, err)
	bus.Publish("topic", nil)
	bus.WaitAsync()

	assert.Equal(t, int32(0), calls.Load())
}

func TestEventBus_StopDrainsQueue(t *testing.T) {
	bus := New(eventconfig.New(nil), nil)
	var calls atomic.Int32
	_, err := bus.Subscribe("topic", func(event.EventType, interface{}) {
		time.Sleep(time.Millisecond)
		calls.Add(1)
	})
	require.NoError(t, err)
	require.NoError(t, bus.Start(context.Background()))

	for i := 0; i < 5; i++ {
		bus.Publish("topic", i)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, bus.Stop(ctx))

	assert.Equal(t, int32(5), calls.Load())
	assert.False(t, bus.IsRunning())
}

func TestEventBus_InvalidSubscribe(t *testing.T) {
	bus := New(nil, nil)

	_, err := bus.Subscribe("", func(event.EventType, interface{}) {})
	assert.Error(t, err)
	_, err = bus.Subscribe("topic", nil)
	assert.Error(t, err)
}
