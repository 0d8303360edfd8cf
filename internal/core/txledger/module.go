package txledger

import (
	"fmt"

	"go.uber.org/fx"

	ledgerconfig "github.com/weisyn/txledger/internal/config/txledger"
	logimpl "github.com/weisyn/txledger/internal/core/infrastructure/log"
	"github.com/weisyn/txledger/internal/core/store"
	"github.com/weisyn/txledger/pkg/interfaces/config"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
	txledgerif "github.com/weisyn/txledger/pkg/interfaces/txledger"
	"github.com/weisyn/txledger/pkg/types"
)

// ModuleInput 账本模块输入依赖
type ModuleInput struct {
	fx.In

	Provider config.Provider
	EventBus event.EventBus `optional:"true"`
	Logger   log.Logger     `optional:"true"`
	Clock    clock.Clock    `optional:"true"`
}

// ModuleOutput 账本模块输出服务
type ModuleOutput struct {
	fx.Out

	Ledger    *Ledger
	TxLedger  txledgerif.TxLedger
	Reader    txledgerif.Reader
	StateTree *store.ComposableStore
}

// Module 返回账本模块
func Module() fx.Option {
	return fx.Module("txledger",
		fx.Provide(ProvideServices),
	)
}

// ProvideServices 按配置创建账本；配置了状态文件时以其作为初始状态
func ProvideServices(input ModuleInput) (ModuleOutput, error) {
	cfg := ledgerconfig.NewFromOptions(input.Provider.GetLedger())

	var initState *types.TxState
	if path := cfg.GetStateFile(); path != "" {
		state, err := LoadStateFile(path)
		if err != nil {
			return ModuleOutput{}, err
		}
		initState = state
	}

	networkID, chainID := cfg.GetNetworkID(), cfg.GetChainID()
	ledger, err := NewLedger(Options{
		InitState:         initState,
		TxHistoryLimit:    cfg.GetTxHistoryLimit(),
		GetNetwork:        func() string { return networkID },
		GetCurrentChainID: func() string { return chainID },
		EventBus:          input.EventBus,
		Logger:            logimpl.NewModuleLogger(input.Logger, "txledger"),
		Clock:             input.Clock,
	})
	if err != nil {
		return ModuleOutput{}, fmt.Errorf("创建交易账本失败: %w", err)
	}

	return ModuleOutput{
		Ledger:    ledger,
		TxLedger:  ledger,
		Reader:    ledger,
		StateTree: store.NewComposableStore(nil, map[string]store.Source{StateSourceName: ledger.AsSource()}),
	}, nil
}

var _ txledgerif.TxLedger = (*Ledger)(nil)
