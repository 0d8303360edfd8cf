package txledger

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/weisyn/txledger/internal/core/store"
	"github.com/weisyn/txledger/pkg/types"
)

// LoadStateFile 读取 {"transactions": {...}} 形式的状态快照
func LoadStateFile(path string) (*types.TxState, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取状态文件失败: %w", err)
	}
	var state types.TxState
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("解析状态文件 %s 失败: %w", path, err)
	}
	if state.Transactions == nil {
		state.Transactions = map[string]*types.TxMeta{}
	}
	for id, tx := range state.Transactions {
		if tx == nil {
			return nil, fmt.Errorf("状态文件 %s 中交易 %s 为空", path, id)
		}
	}
	if err := reconcileIDs(state.Transactions); err != nil {
		return nil, fmt.Errorf("状态文件 %s 无效: %w", path, err)
	}
	return &state, nil
}

// reconcileIDs 映射键即记录ID：空ID按键补齐，不一致时报错
func reconcileIDs(txs map[string]*types.TxMeta) error {
	for key, tx := range txs {
		if tx == nil {
			continue
		}
		switch tx.ID {
		case "":
			tx.ID = key
		case key:
		default:
			return NewInvalidArgumentError("transactions", fmt.Sprintf("键 %q 与记录ID %q 不一致", key, tx.ID))
		}
	}
	return nil
}

// StateSourceName 账本在状态树中的名称
const StateSourceName = "TxLedger"

// AsSource 把账本状态暴露为 store.Source，供 ComposableStore 聚合
func (l *Ledger) AsSource() store.Source {
	return stateSource{l.store}
}

// stateSource StateStore 到 store.Source 的适配
type stateSource struct {
	s StateStore
}

func (s stateSource) Snapshot() any { return s.s.GetState() }

func (s stateSource) Watch(fn func(state any)) (unsubscribe func()) {
	return s.s.Subscribe(func(state types.TxState) { fn(state) })
}
