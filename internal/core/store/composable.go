package store

import (
	"encoding/json"
	"sort"
	"sync"
)

// ComposableStore 聚合多个具名状态源，状态形如 {name: childState}
type ComposableStore struct {
	*ObservableStore[map[string]any]

	structMu sync.Mutex
	sources  map[string]Source
	unwatch  []func()
}

// NewComposableStore 创建聚合容器，initial 与 sources 均可为 nil
func NewComposableStore(initial map[string]any, sources map[string]Source) *ComposableStore {
	if initial == nil {
		initial = map[string]any{}
	}
	c := &ComposableStore{
		ObservableStore: NewObservableStore(initial),
	}
	if sources != nil {
		c.UpdateStructure(sources)
	}
	return c
}

// UpdateStructure 重新挂接子状态源，旧的监听全部解除
func (c *ComposableStore) UpdateStructure(sources map[string]Source) {
	c.structMu.Lock()
	defer c.structMu.Unlock()

	for _, unwatch := range c.unwatch {
		unwatch()
	}
	c.unwatch = nil
	c.sources = make(map[string]Source, len(sources))

	names := sortedNames(sources)
	for _, name := range names {
		name, source := name, sources[name]
		c.sources[name] = source
		c.unwatch = append(c.unwatch, source.Watch(func(state any) {
			c.UpdateState(func(s *map[string]any) {
				*s = withKey(*s, name, state)
			})
		}))
	}

	c.UpdateState(func(s *map[string]any) {
		next := *s
		for _, name := range names {
			next = withKey(next, name, sources[name].Snapshot())
		}
		*s = next
	})
}

// GetFlatState 将各子状态（对象形式）按名称顺序合并为一个扁平映射
func (c *ComposableStore) GetFlatState() map[string]any {
	c.structMu.Lock()
	sources := make(map[string]Source, len(c.sources))
	for name, source := range c.sources {
		sources[name] = source
	}
	c.structMu.Unlock()

	flat := make(map[string]any)
	for _, name := range sortedNames(sources) {
		for k, v := range asObject(sources[name].Snapshot()) {
			flat[k] = v
		}
	}
	return flat
}

// withKey 复制映射并设置一个键
func withKey(m map[string]any, key string, value any) map[string]any {
	next := make(map[string]any, len(m)+1)
	for k, v := range m {
		next[k] = v
	}
	next[key] = value
	return next
}

// asObject 把子状态转换为 JSON 对象形式，非对象状态返回 nil
func asObject(state any) map[string]any {
	if m, ok := state.(map[string]any); ok {
		return m
	}
	data, err := json.Marshal(state)
	if err != nil {
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil {
		return nil
	}
	return m
}

func sortedNames(sources map[string]Source) []string {
	names := make([]string, 0, len(sources))
	for name := range sources {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
