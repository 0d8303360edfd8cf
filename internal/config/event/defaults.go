package event

// 事件总线配置默认值
const (
	defaultEnabled   = true
	defaultQueueSize = 1024 // 积压超过该值时记录告警，队列本身不丢弃事件
)
