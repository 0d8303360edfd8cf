// Package http 提供交易账本的 HTTP 查询接口
package http

import (
	"context"

	"go.uber.org/fx"

	"github.com/weisyn/txledger/internal/api/http/handlers"
	logimpl "github.com/weisyn/txledger/internal/core/infrastructure/log"
	"github.com/weisyn/txledger/internal/core/store"
	"github.com/weisyn/txledger/pkg/interfaces/config"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
	txledgerif "github.com/weisyn/txledger/pkg/interfaces/txledger"
)

// ModuleInput HTTP模块输入依赖
type ModuleInput struct {
	fx.In

	Lifecycle fx.Lifecycle
	Provider  config.Provider
	Logger    log.Logger
	Ledger    txledgerif.Reader
	EventBus  event.EventBus         `optional:"true"`
	StateTree *store.ComposableStore `optional:"true"`
}

// Module 返回HTTP服务模块
func Module() fx.Option {
	return fx.Module("http",
		fx.Provide(ProvideServer),
		fx.Invoke(func(*Server) {}),
	)
}

// ProvideServer 创建服务器，仅在启用时注册生命周期钩子
func ProvideServer(input ModuleInput) *Server {
	options := input.Provider.GetAPI()
	logger := logimpl.NewModuleLogger(input.Logger, "http")
	var tree handlers.StateTree
	if input.StateTree != nil {
		tree = input.StateTree
	}
	server := NewServer(options, logger, input.Ledger, input.EventBus, tree)

	if !options.HTTPEnabled {
		logger.Info("HTTP服务未启用")
		return server
	}

	input.Lifecycle.Append(fx.Hook{
		OnStart: func(context.Context) error { return server.Start() },
		OnStop:  func(ctx context.Context) error { return server.Stop(ctx) },
	})
	return server
}
