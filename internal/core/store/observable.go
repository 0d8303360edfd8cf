// Package store 提供可观察的内存状态容器
//
// ObservableStore 持有一个整体状态值，每次写入后同步通知订阅者；
// ComposableStore 把多个具名 Source 聚合为一棵 {name: state} 状态树。
// 状态值按不可变对象使用：写入方提交新值，不原地修改已提交的值。
package store

import (
	"sort"
	"sync"
)

// Listener 状态变更监听器，在写入方的协程上同步调用
type Listener[S any] func(state S)

// Source 类型无关的只读状态源，供 ComposableStore 聚合
type Source interface {
	// Snapshot 返回当前状态
	Snapshot() any
	// Watch 注册变更监听，返回取消函数
	Watch(fn func(state any)) (unsubscribe func())
}

// ObservableStore 可观察状态容器
type ObservableStore[S any] struct {
	mu        sync.RWMutex
	state     S
	listeners map[uint64]Listener[S]
	nextID    uint64
}

// NewObservableStore 以初始状态创建容器
func NewObservableStore[S any](initial S) *ObservableStore[S] {
	return &ObservableStore[S]{
		state:     initial,
		listeners: make(map[uint64]Listener[S]),
	}
}

// GetState 获取当前状态
func (s *ObservableStore[S]) GetState() S {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// PutState 整体替换状态并通知订阅者
func (s *ObservableStore[S]) PutState(state S) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
	s.notify(state)
}

// UpdateState 在当前状态的副本上执行 fn 后提交（合并写）
func (s *ObservableStore[S]) UpdateState(fn func(state *S)) {
	s.mu.Lock()
	next := s.state
	fn(&next)
	s.state = next
	s.mu.Unlock()
	s.notify(next)
}

// Subscribe 注册监听器
func (s *ObservableStore[S]) Subscribe(listener Listener[S]) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// notify 按注册顺序调用监听器，调用时不持有锁
func (s *ObservableStore[S]) notify(state S) {
	s.mu.RLock()
	ids := make([]uint64, 0, len(s.listeners))
	for id := range s.listeners {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	listeners := make([]Listener[S], 0, len(ids))
	for _, id := range ids {
		listeners = append(listeners, s.listeners[id])
	}
	s.mu.RUnlock()

	for _, listener := range listeners {
		listener(state)
	}
}

// Snapshot 实现 Source
func (s *ObservableStore[S]) Snapshot() any {
	return s.GetState()
}

// Watch 实现 Source
func (s *ObservableStore[S]) Watch(fn func(state any)) (unsubscribe func()) {
	return s.Subscribe(func(state S) { fn(state) })
}

var _ Source = (*ObservableStore[int])(nil)
