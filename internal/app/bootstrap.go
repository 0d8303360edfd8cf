package app

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	apihttp "github.com/weisyn/txledger/internal/api/http"
	config "github.com/weisyn/txledger/internal/config"
	"github.com/weisyn/txledger/internal/core/infrastructure/event"
	log "github.com/weisyn/txledger/internal/core/infrastructure/log"
	"github.com/weisyn/txledger/internal/core/txledger"
	configiface "github.com/weisyn/txledger/pkg/interfaces/config"
	logiface "github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
)

// Bootstrap 应用引导程序：按层装配 fx 模块
type Bootstrap struct {
	opts  *options
	fxApp *fx.App
}

// NewBootstrap 创建引导程序
func NewBootstrap(opts *options) *Bootstrap {
	return &Bootstrap{opts: opts}
}

// SetupInfrastructureLayer 基础设施层：配置与日志
func (b *Bootstrap) SetupInfrastructureLayer() []fx.Option {
	return []fx.Option{
		fx.Provide(func() configiface.AppOptions { return b.opts }),
		config.Module(), // 1. 配置(不依赖其他)
		log.Module(),    // 2. 日志(依赖配置)
	}
}

// SetupCommunicationLayer 通信层：事件总线
func (b *Bootstrap) SetupCommunicationLayer() []fx.Option {
	return []fx.Option{
		event.Module(),
	}
}

// SetupBusinessLayer 业务层：交易账本
func (b *Bootstrap) SetupBusinessLayer() []fx.Option {
	return []fx.Option{
		txledger.Module(),
	}
}

// SetupApplicationLayer 应用层：HTTP / WebSocket API
func (b *Bootstrap) SetupApplicationLayer() []fx.Option {
	if !b.opts.enableAPI {
		return nil
	}
	return []fx.Option{
		apihttp.Module(),
	}
}

// SetupModules 按依赖顺序汇总各层模块
func (b *Bootstrap) SetupModules() []fx.Option {
	var modules []fx.Option
	modules = append(modules, b.SetupInfrastructureLayer()...)
	modules = append(modules, b.SetupCommunicationLayer()...)
	modules = append(modules, b.SetupBusinessLayer()...)
	modules = append(modules, b.SetupApplicationLayer()...)
	return modules
}

// CreateFxApp 创建并配置fx应用
func (b *Bootstrap) CreateFxApp(extra ...fx.Option) error {
	appOptions := []fx.Option{
		fx.Options(b.SetupModules()...),
		fx.NopLogger,
		fx.Invoke(func(lifecycle fx.Lifecycle, logger logiface.Logger) {
			lifecycle.Append(fx.Hook{
				OnStart: func(context.Context) error {
					logger.Info("应用模块装配完成")
					return nil
				},
				OnStop: func(context.Context) error {
					logger.Info("准备停止应用")
					_ = logger.Sync()
					return nil
				},
			})
		}),
	}
	appOptions = append(appOptions, extra...)

	b.fxApp = fx.New(appOptions...)
	return b.fxApp.Err()
}

// StartApp 启动应用程序
func (b *Bootstrap) StartApp(ctx context.Context) error {
	if err := b.fxApp.Start(ctx); err != nil {
		return fmt.Errorf("启动应用失败: %w", err)
	}
	return nil
}

// StopApp 停止应用程序
func (b *Bootstrap) StopApp(ctx context.Context) error {
	if err := b.fxApp.Stop(ctx); err != nil {
		return fmt.Errorf("停止应用失败: %w", err)
	}
	return nil
}
