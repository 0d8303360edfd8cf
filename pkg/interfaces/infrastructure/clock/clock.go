// Package clock 定义统一的时间源接口
package clock

import "time"

// Clock 提供统一的时间源，便于在测试中替换
type Clock interface {
	// Now 获取当前时间
	Now() time.Time

	// Since 计算从指定时间到现在的持续时间
	Since(t time.Time) time.Duration

	// UnixMilli 获取当前Unix时间戳（毫秒），账本时间戳均使用毫秒
	UnixMilli() int64
}
