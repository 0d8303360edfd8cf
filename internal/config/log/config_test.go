package log

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"

	"github.com/weisyn/txledger/pkg/types"
)

func TestNew_Defaults(t *testing.T) {
	cfg := New(nil)

	assert.Equal(t, zapcore.InfoLevel, cfg.GetZapLevel())
	assert.True(t, cfg.IsConsoleEnabled())
	assert.Empty(t, cfg.GetFilePath())
}

func TestNew_FilePathDisablesConsoleUnlessSet(t *testing.T) {
	path := "/var/log/txledger.log"

	cfg := New(&types.UserLogConfig{FilePath: &path})
	assert.False(t, cfg.IsConsoleEnabled())

	console := true
	cfg = New(&types.UserLogConfig{FilePath: &path, ToConsole: &console})
	assert.True(t, cfg.IsConsoleEnabled(), "显式设置优先")
}

func TestGetZapLevel(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"WARN":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}
	for level, want := range tests {
		level := level
		cfg := New(&types.UserLogConfig{Level: &level})
		assert.Equal(t, want, cfg.GetZapLevel(), level)
	}
}
