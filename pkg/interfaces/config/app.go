// Package config 定义配置提供者接口
package config

import "github.com/weisyn/txledger/pkg/types"

// AppOptions 应用配置选项
type AppOptions interface {
	// GetAppConfig 获取用户应用配置，未配置时返回 nil
	GetAppConfig() *types.AppConfig
}
