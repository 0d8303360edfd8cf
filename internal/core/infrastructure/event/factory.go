package event

import (
	"context"

	eventconfig "github.com/weisyn/txledger/internal/config/event"
	"github.com/weisyn/txledger/pkg/interfaces/config"
	eventInterface "github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"

	"go.uber.org/fx"
)

// ServiceInput 事件服务工厂函数的输入参数
type ServiceInput struct {
	Provider  config.Provider
	Logger    log.Logger // 可选
	Lifecycle fx.Lifecycle
}

// ServiceOutput 事件服务工厂函数的输出结果
type ServiceOutput struct {
	EventBus eventInterface.EventBus
}

// CreateEventServices 创建事件总线并挂接生命周期
func CreateEventServices(input ServiceInput) (ServiceOutput, error) {
	eventCfg := eventconfig.NewFromOptions(input.Provider.GetEvent())

	var logger log.Logger
	if input.Logger != nil {
		logger = input.Logger.With("module", "event")
	}
	eventBus := New(eventCfg, logger)

	if input.Lifecycle != nil {
		input.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				return eventBus.Start(ctx)
			},
			OnStop: func(ctx context.Context) error {
				return eventBus.Stop(ctx)
			},
		})
	}

	if logger != nil {
		logger.Info("事件总线已初始化")
	}

	return ServiceOutput{
		EventBus: eventBus,
	}, nil
}
