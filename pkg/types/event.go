package types

import "time"

// EventType 事件类型（即事件主题）
type EventType string

// SubscriptionID 订阅ID
type SubscriptionID string

// SubscriptionInfo 订阅信息
type SubscriptionInfo struct {
	ID        SubscriptionID `json:"id"`         // 订阅ID
	EventType EventType      `json:"event_type"` // 事件类型
	Once      bool           `json:"once"`       // 是否一次性订阅
	CreatedAt time.Time      `json:"created_at"` // 创建时间
}
