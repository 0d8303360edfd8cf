package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/fx"

	"github.com/weisyn/txledger/internal/config"
)

const (
	startTimeout = 30 * time.Second
	stopTimeout  = 15 * time.Second
)

// App 应用对外接口
type App interface {
	// Stop 停止应用
	Stop() error

	// Wait 阻塞到收到退出信号，然后停止应用
	Wait() error
}

// internalApp 应用的内部实现
type internalApp struct {
	bootstrap *Bootstrap
}

// Stop 停止应用
func (a *internalApp) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), stopTimeout)
	defer cancel()
	return a.bootstrap.StopApp(ctx)
}

// Wait 等待 SIGINT / SIGTERM
func (a *internalApp) Wait() error {
	<-WaitForSignal()
	return a.Stop()
}

// Start 装配并启动应用
//
// extra 供调用方追加 fx 选项（例如 fx.Populate 取出账本实例）。
func Start(opts []Option, extra ...fx.Option) (App, error) {
	options := newOptions(opts...)
	if options.appConfig == nil && options.configFilePath != "" {
		appConfig, err := config.LoadAppConfig(options.configFilePath)
		if err != nil {
			return nil, err
		}
		options.appConfig = appConfig
	}

	bootstrap := NewBootstrap(options)
	if err := bootstrap.CreateFxApp(extra...); err != nil {
		return nil, fmt.Errorf("创建应用失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startTimeout)
	defer cancel()
	if err := bootstrap.StartApp(ctx); err != nil {
		return nil, err
	}
	return &internalApp{bootstrap: bootstrap}, nil
}

// WaitForSignal 返回在收到退出信号时可读的通道
func WaitForSignal() <-chan os.Signal {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	return signals
}
