package log

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	logconfig "github.com/weisyn/txledger/internal/config/log"
	"github.com/weisyn/txledger/pkg/types"
)

// newBufferLogger 创建写入内存缓冲区的控制台日志记录器
func newBufferLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	buf := &bytes.Buffer{}
	cfg := logconfig.New(&types.UserLogConfig{Level: &level})
	logger, err := newLogger(cfg, zapcore.AddSync(buf))
	require.NoError(t, err)
	return logger, buf
}

func TestInfoLog(t *testing.T) {
	logger, buf := newBufferLogger(t, InfoLevel)

	logger.Info("测试信息日志")
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "测试信息日志", "日志输出中应包含消息内容")
	assert.Contains(t, buf.String(), "INFO", "日志输出中应包含正确的日志级别")
}

func TestLogLevelFiltering(t *testing.T) {
	logger, buf := newBufferLogger(t, WarnLevel)

	logger.Info("不应出现")
	logger.Warn("应该出现")
	_ = logger.Sync()

	assert.NotContains(t, buf.String(), "不应出现")
	assert.Contains(t, buf.String(), "应该出现")
}

func TestStructuredLogging(t *testing.T) {
	logger, buf := newBufferLogger(t, DebugLevel)

	logger.With("key1", "value1", "key2", 42).Info("结构化日志测试")
	_ = logger.Sync()

	output := buf.String()
	assert.Contains(t, output, "key1")
	assert.Contains(t, output, "value1")
	assert.Contains(t, output, "42")
	assert.Contains(t, output, "结构化日志测试")
}

func TestNewModuleLogger(t *testing.T) {
	logger, buf := newBufferLogger(t, InfoLevel)

	NewModuleLogger(logger, "txledger").Info("模块日志")
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "txledger")
	assert.Nil(t, NewModuleLogger(nil, "txledger"))
}

func TestFileOutput(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "logs", "ledger.log")
	level := DebugLevel
	cfg := logconfig.New(&types.UserLogConfig{Level: &level, FilePath: &path})
	require.False(t, cfg.IsConsoleEnabled(), "指定文件路径时默认关闭控制台")

	// Act
	logger, err := New(cfg)
	require.NoError(t, err)
	logger.Info("写入文件")
	_ = logger.Sync()

	// Assert
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "写入文件")
	assert.Contains(t, string(data), `"level":"info"`)
}

func TestSetLogger(t *testing.T) {
	original := GetLogger()
	t.Cleanup(func() { SetLogger(original) })

	logger, buf := newBufferLogger(t, InfoLevel)
	SetLogger(logger)
	Info("全局日志")
	_ = logger.Sync()

	assert.Contains(t, buf.String(), "全局日志")

	SetLogger(nil)
	assert.Same(t, logger, GetLogger(), "设置nil不应替换全局日志记录器")
}

func TestLevelConstantsMatchConfigLevels(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{DebugLevel, zapcore.DebugLevel},
		{InfoLevel, zapcore.InfoLevel},
		{WarnLevel, zapcore.WarnLevel},
		{ErrorLevel, zapcore.ErrorLevel},
		{FatalLevel, zapcore.FatalLevel},
	}

	for _, tt := range tests {
		level := tt.level
		cfg := logconfig.New(&types.UserLogConfig{Level: &level})
		assert.Equal(t, tt.want, cfg.GetZapLevel(), tt.level)
	}
}
