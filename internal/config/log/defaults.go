package log

import (
	"go.uber.org/zap/zapcore"
)

// 日志配置默认值
const (
	// === 基础日志配置 ===
	defaultLogLevel  = "info"
	defaultToConsole = true
	defaultFilePath  = "" // 为空时只输出到控制台

	// === 日志轮转配置 ===
	defaultMaxSize    = 100 // MB
	defaultMaxBackups = 10
	defaultMaxAge     = 30 // 天
	defaultCompress   = true

	// === 调试配置 ===
	defaultEnableCaller     = true
	defaultEnableStacktrace = true // 仅 Error 及以上级别
)

// 默认的日志级别映射
var defaultLevelMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
	"panic": zapcore.PanicLevel,
	"fatal": zapcore.FatalLevel,
}
