// Package version 构建版本信息，通过 ldflags 注入
package version

import (
	"fmt"
	"runtime"
	"time"
)

// 构建时注入的变量，例如：
//
//	-ldflags "-X github.com/weisyn/txledger/internal/app/version.Version=v0.2.0"
var (
	Version   = "v0.1.0"
	BuildTime = "unknown" // RFC3339
	GitCommit = "unknown"

	GoVersion = runtime.Version()
	GoArch    = runtime.GOARCH
	GoOS      = runtime.GOOS
)

// BuildInfo 完整构建信息
type BuildInfo struct {
	Version   string `json:"version"`
	BuildTime string `json:"build_time"`
	GitCommit string `json:"git_commit"`
	GoVersion string `json:"go_version"`
	GoArch    string `json:"go_arch"`
	GoOS      string `json:"go_os"`
}

// GetVersion 获取版本号
func GetVersion() string {
	return Version
}

// GetBuildInfo 获取完整构建信息
func GetBuildInfo() *BuildInfo {
	return &BuildInfo{
		Version:   Version,
		BuildTime: BuildTime,
		GitCommit: GitCommit,
		GoVersion: GoVersion,
		GoArch:    GoArch,
		GoOS:      GoOS,
	}
}

// GetFullVersion 多行版本信息（用于 version 命令）
func GetFullVersion() string {
	info := GetBuildInfo()

	out := fmt.Sprintf("txledger %s", info.Version)
	if info.GitCommit != "unknown" {
		out += fmt.Sprintf("\n提交: %s", info.GitCommit)
	}
	if info.BuildTime != "unknown" {
		if parsed, err := time.Parse(time.RFC3339, info.BuildTime); err == nil {
			out += fmt.Sprintf("\n构建时间: %s", parsed.Format("2006-01-02 15:04:05 MST"))
		} else {
			out += fmt.Sprintf("\n构建时间: %s", info.BuildTime)
		}
	}
	out += fmt.Sprintf("\nGo版本: %s", info.GoVersion)
	out += fmt.Sprintf("\n平台: %s/%s", info.GoOS, info.GoArch)
	return out
}
