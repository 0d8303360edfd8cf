// 基于asaskevich/EventBus的事件总线实现
//
// 主题路由交给 asaskevich/EventBus：每个有订阅者的主题在底层总线上挂一个
// 扇出处理器，订阅者列表由本层按订阅ID管理。发布只入队，由分发协程在
// 发布方返回后按入队顺序逐个投递；处理器 panic 会被恢复并记录日志。

package event

import (
	"bytes"
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/google/uuid"

	eventconfig "github.com/weisyn/txledger/internal/config/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/txledger/pkg/types"
)

// envelope 队列中的一条待投递事件
type envelope struct {
	eventType event.EventType
	data      interface{}
}

// subscription 订阅信息
type subscription struct {
	id        types.SubscriptionID
	eventType event.EventType
	handler   event.EventHandler
	once      bool
	createdAt time.Time
}

// EventBus 是基于asaskevich/EventBus的异步事件总线
type EventBus struct {
	bus    evbus.Bus           // 底层主题路由
	config *eventconfig.Config // 配置
	logger log.Logger

	// ================== 订阅管理 ==================
	subMu         sync.RWMutex
	subscriptions map[types.SubscriptionID]*subscription
	byType        map[event.EventType][]*subscription // 保持订阅顺序

	// ================== 分发队列 ==================
	queueMu sync.Mutex
	cond    *sync.Cond
	queue   []envelope
	pending int // 已入队但尚未投递完成的事件数
	running bool
	done    chan struct{}

	// deliveringOn 正在执行处理器的协程ID，0 表示空闲
	deliveringOn atomic.Uint64
}

// New 创建事件总线实例，logger 可为 nil
func New(config *eventconfig.Config, logger log.Logger) *EventBus {
	if config == nil {
		config = eventconfig.New(nil)
	}
	eb := &EventBus{
		bus:           evbus.New(),
		config:        config,
		logger:        logger,
		subscriptions: make(map[types.SubscriptionID]*subscription),
		byType:        make(map[event.EventType][]*subscription),
		queue:         make([]envelope, 0, config.GetQueueSize()),
	}
	eb.cond = sync.NewCond(&eb.queueMu)
	return eb
}

// ==================== 订阅 ====================

// Subscribe 实现订阅
func (eb *EventBus) Subscribe(eventType event.EventType, handler event.EventHandler) (types.SubscriptionID, error) {
	return eb.subscribe(eventType, handler, false)
}

// SubscribeOnce 实现一次性订阅
func (eb *EventBus) SubscribeOnce(eventType event.EventType, handler event.EventHandler) (types.SubscriptionID, error) {
	return eb.subscribe(eventType, handler, true)
}

func (eb *EventBus) subscribe(eventType event.EventType, handler event.EventHandler, once bool) (types.SubscriptionID, error) {
	if eventType == "" {
		return "", fmt.Errorf("事件类型不能为空")
	}
	if handler == nil {
		return "", fmt.Errorf("事件处理器不能为空")
	}

	sub := &subscription{
		id:        types.SubscriptionID(uuid.New().String()),
		eventType: eventType,
		handler:   handler,
		once:      once,
		createdAt: time.Now(),
	}

	eb.subMu.Lock()
	defer eb.subMu.Unlock()

	if len(eb.byType[eventType]) == 0 {
		// 异步模式下底层总线在投递前释放内部锁，处理器内可再次订阅/取消订阅
		if err := eb.bus.SubscribeAsync(string(eventType), eb.fanout, true); err != nil {
			return "", fmt.Errorf("注册事件主题 %s 失败: %w", eventType, err)
		}
	}
	eb.subscriptions[sub.id] = sub
	eb.byType[eventType] = append(eb.byType[eventType], sub)
	return sub.id, nil
}

// UnsubscribeByID 通过订阅ID取消订阅
func (eb *EventBus) UnsubscribeByID(id types.SubscriptionID) error {
	eb.subMu.Lock()
	defer eb.subMu.Unlock()

	sub, ok := eb.subscriptions[id]
	if !ok {
		return fmt.Errorf("订阅不存在: %s", id)
	}
	eb.removeLocked(sub)
	return nil
}

// removeLocked 移除订阅，调用方需持有 subMu 写锁
func (eb *EventBus) removeLocked(sub *subscription) {
	delete(eb.subscriptions, sub.id)

	subs := eb.byType[sub.eventType]
	for i, s := range subs {
		if s.id == sub.id {
			subs = append(subs[:i:i], subs[i+1:]...)
			break
		}
	}
	if len(subs) == 0 {
		delete(eb.byType, sub.eventType)
		_ = eb.bus.Unsubscribe(string(sub.eventType), eb.fanout)
		return
	}
	eb.byType[sub.eventType] = subs
}

// HasCallback 检查是否有订阅者
func (eb *EventBus) HasCallback(eventType event.EventType) bool {
	eb.subMu.RLock()
	defer eb.subMu.RUnlock()
	return len(eb.byType[eventType]) > 0
}

// GetActiveSubscriptions 获取活跃订阅列表
func (eb *EventBus) GetActiveSubscriptions() []*types.SubscriptionInfo {
	eb.subMu.RLock()
	defer eb.subMu.RUnlock()

	infos := make([]*types.SubscriptionInfo, 0, len(eb.subscriptions))
	for _, sub := range eb.subscriptions {
		infos = append(infos, &types.SubscriptionInfo{
			ID:        sub.id,
			EventType: sub.eventType,
			Once:      sub.once,
			CreatedAt: sub.createdAt,
		})
	}
	return infos
}

// ==================== 发布与分发 ====================

// Publish 入队事件，由分发协程异步投递
func (eb *EventBus) Publish(eventType event.EventType, data interface{}) {
	if !eb.config.IsEnabled() {
		return
	}

	eb.queueMu.Lock()
	eb.queue = append(eb.queue, envelope{eventType: eventType, data: data})
	eb.pending++
	backlog := len(eb.queue)
	eb.cond.Broadcast()
	eb.queueMu.Unlock()

	if backlog > eb.config.GetQueueSize() && eb.logger != nil {
		eb.logger.Warnf("事件分发队列积压: %d", backlog)
	}
}

// WaitAsync 等待所有已入队事件投递完成；总线未运行时立即返回
//
// 处理器内调用时立即返回：当前事件要等处理器返回才算投递完成，
// 其后的事件也排在它之后。
func (eb *EventBus) WaitAsync() {
	if id := eb.deliveringOn.Load(); id != 0 && id == goroutineID() {
		return
	}
	eb.queueMu.Lock()
	defer eb.queueMu.Unlock()
	for eb.pending > 0 && eb.running {
		eb.cond.Wait()
	}
}

// dispatchLoop 按入队顺序逐个投递，停止时先清空队列
func (eb *EventBus) dispatchLoop() {
	defer close(eb.done)
	for {
		eb.queueMu.Lock()
		for len(eb.queue) == 0 && eb.running {
			eb.cond.Wait()
		}
		if len(eb.queue) == 0 {
			eb.queueMu.Unlock()
			return
		}
		env := eb.queue[0]
		eb.queue[0] = envelope{}
		eb.queue = eb.queue[1:]
		eb.queueMu.Unlock()

		if eb.HasCallback(env.eventType) {
			eb.bus.Publish(string(env.eventType), env)
			eb.bus.WaitAsync()
		}

		eb.queueMu.Lock()
		eb.pending--
		if eb.pending == 0 {
			eb.cond.Broadcast()
		}
		eb.queueMu.Unlock()
	}
}

// fanout 底层总线上每个主题唯一的处理器，依次调用该主题的订阅者
func (eb *EventBus) fanout(env envelope) {
	eb.subMu.Lock()
	subs := make([]*subscription, len(eb.byType[env.eventType]))
	copy(subs, eb.byType[env.eventType])
	for _, sub := range subs {
		if sub.once {
			eb.removeLocked(sub)
		}
	}
	eb.subMu.Unlock()

	// 分发协程逐个等待 fanout 返回，同一时刻至多一个 fanout 在执行
	eb.deliveringOn.Store(goroutineID())
	defer eb.deliveringOn.Store(0)
	for _, sub := range subs {
		eb.invoke(sub, env)
	}
}

// goroutineID 从栈头 "goroutine N [" 解析当前协程ID，失败返回 0
func goroutineID() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	buf = bytes.TrimPrefix(buf, []byte("goroutine "))
	if i := bytes.IndexByte(buf, ' '); i > 0 {
		buf = buf[:i]
	}
	id, err := strconv.ParseUint(string(buf), 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// invoke 调用单个处理器，恢复 panic
func (eb *EventBus) invoke(sub *subscription, env envelope) {
	defer func() {
		if r := recover(); r != nil && eb.logger != nil {
			eb.logger.Errorf("事件处理器异常: type=%s subscription=%s panic=%v", env.eventType, sub.id, r)
		}
	}()
	sub.handler(env.eventType, env.data)
}

// ==================== 生命周期 ====================

// Start 启动分发协程
func (eb *EventBus) Start(ctx context.Context) error {
	eb.queueMu.Lock()
	defer eb.queueMu.Unlock()
	if eb.running {
		return nil
	}
	eb.running = true
	eb.done = make(chan struct{})
	go eb.dispatchLoop()
	if eb.logger != nil {
		eb.logger.Info("事件总线已启动")
	}
	return nil
}

// Stop 投递完剩余事件后停止分发协程
func (eb *EventBus) Stop(ctx context.Context) error {
	eb.queueMu.Lock()
	if !eb.running {
		eb.queueMu.Unlock()
		return nil
	}
	eb.running = false
	done := eb.done
	eb.cond.Broadcast()
	eb.queueMu.Unlock()

	select {
	case <-done:
		if eb.logger != nil {
			eb.logger.Info("事件总线已停止")
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("等待事件总线停止超时: %w", ctx.Err())
	}
}

// IsRunning 检查是否正在运行
func (eb *EventBus) IsRunning() bool {
	eb.queueMu.Lock()
	defer eb.queueMu.Unlock()
	return eb.running
}

var _ event.EventBus = (*EventBus)(nil)
