package types

import (
	"bytes"
	"encoding/json"
)

// ============================================================================
//                              交易记录
// ============================================================================

// TxParams 交易参数块，所有字段都是 0x 前缀的十六进制字符串，空字符串表示缺省
type TxParams struct {
	From                 string `json:"from,omitempty"`
	To                   string `json:"to,omitempty"`
	Nonce                string `json:"nonce,omitempty"`
	Gas                  string `json:"gas,omitempty"`
	GasPrice             string `json:"gasPrice,omitempty"`
	MaxFeePerGas         string `json:"maxFeePerGas,omitempty"`
	MaxPriorityFeePerGas string `json:"maxPriorityFeePerGas,omitempty"`
	Value                string `json:"value,omitempty"`
	Data                 string `json:"data,omitempty"`
	ChainID              string `json:"chainId,omitempty"`
}

// IsEmpty 参数块为 nil 或全部字段为空
func (p *TxParams) IsEmpty() bool {
	return p == nil || *p == TxParams{}
}

// TxParamField 参数块中的一个命名字段
type TxParamField struct {
	Name  string
	Value string
}

// TxParamNames 参数字段名（与 JSON 字段名一致），顺序固定
var TxParamNames = []string{
	"from", "to", "nonce", "gas", "gasPrice",
	"maxFeePerGas", "maxPriorityFeePerGas", "value", "data", "chainId",
}

// Fields 按固定顺序返回全部字段（含空字段）
func (p *TxParams) Fields() []TxParamField {
	if p == nil {
		return nil
	}
	return []TxParamField{
		{"from", p.From},
		{"to", p.To},
		{"nonce", p.Nonce},
		{"gas", p.Gas},
		{"gasPrice", p.GasPrice},
		{"maxFeePerGas", p.MaxFeePerGas},
		{"maxPriorityFeePerGas", p.MaxPriorityFeePerGas},
		{"value", p.Value},
		{"data", p.Data},
		{"chainId", p.ChainID},
	}
}

// Get 按字段名取值，第二个返回值表示字段名是否存在
func (p *TxParams) Get(name string) (string, bool) {
	for _, f := range p.Fields() {
		if f.Name == name {
			return f.Value, true
		}
	}
	return "", false
}

// TxError 失败交易携带的错误信息
type TxError struct {
	Message string `json:"message"`
	RPC     any    `json:"rpc,omitempty"`
}

// TxMeta 账本中的一条交易记录
type TxMeta struct {
	ID            string         `json:"id"`
	Status        TxStatus       `json:"status"`
	NetworkID     string         `json:"networkId,omitempty"`
	ChainID       string         `json:"chainId,omitempty"`
	Time          int64          `json:"time"`
	TxParams      *TxParams      `json:"txParams,omitempty"`
	Hash          string         `json:"hash,omitempty"`
	RawTx         string         `json:"rawTx,omitempty"`
	Origin        string         `json:"origin,omitempty"`
	Type          string         `json:"type,omitempty"`
	SubmittedTime int64          `json:"submittedTime,omitempty"`
	Err           *TxError       `json:"err,omitempty"`
	History       []HistoryEntry `json:"history,omitempty"`
}

// From 返回发送方地址，无参数块时为空
func (m *TxMeta) From() string {
	if m == nil || m.TxParams == nil {
		return ""
	}
	return m.TxParams.From
}

// Nonce 返回 nonce，无参数块时为空
func (m *TxMeta) Nonce() string {
	if m == nil || m.TxParams == nil {
		return ""
	}
	return m.TxParams.Nonce
}

// Clone 深拷贝（包含历史）
func (m *TxMeta) Clone() *TxMeta {
	if m == nil {
		return nil
	}
	out := *m
	if m.TxParams != nil {
		params := *m.TxParams
		out.TxParams = &params
	}
	if m.Err != nil {
		out.Err = &TxError{Message: m.Err.Message, RPC: CloneJSONValue(m.Err.RPC)}
	}
	if m.History != nil {
		out.History = make([]HistoryEntry, len(m.History))
		for i, entry := range m.History {
			out.History[i] = entry.Clone()
		}
	}
	return &out
}

// ============================================================================
//                              历史记录
// ============================================================================

// PatchOp 一条 JSON-Pointer 路径上的变更操作
type PatchOp struct {
	Op        string `json:"op"`
	Path      string `json:"path"`
	Value     any    `json:"value,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"`
	Note      string `json:"note,omitempty"`
}

// 变更操作类型
const (
	PatchOpAdd     = "add"
	PatchOpRemove  = "remove"
	PatchOpReplace = "replace"
)

// HistoryEntry 历史条目：第 0 条为完整快照，之后每条是一批变更操作
//
// JSON 形式与快照/操作数组一一对应：快照编码为对象，变更批次编码为数组。
type HistoryEntry struct {
	Snapshot *TxMeta
	Ops      []PatchOp
}

// IsSnapshot 是否为快照条目
func (e HistoryEntry) IsSnapshot() bool { return e.Snapshot != nil }

// Clone 深拷贝
func (e HistoryEntry) Clone() HistoryEntry {
	out := HistoryEntry{Snapshot: e.Snapshot.Clone()}
	if e.Ops != nil {
		out.Ops = make([]PatchOp, len(e.Ops))
		for i, op := range e.Ops {
			op.Value = CloneJSONValue(op.Value)
			out.Ops[i] = op
		}
	}
	return out
}

// MarshalJSON 实现 json.Marshaler
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	if e.Snapshot != nil {
		return json.Marshal(e.Snapshot)
	}
	if e.Ops == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(e.Ops)
}

// UnmarshalJSON 实现 json.Unmarshaler
func (e *HistoryEntry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var ops []PatchOp
		if err := json.Unmarshal(trimmed, &ops); err != nil {
			return err
		}
		*e = HistoryEntry{Ops: ops}
		return nil
	}
	var snapshot TxMeta
	if err := json.Unmarshal(trimmed, &snapshot); err != nil {
		return err
	}
	*e = HistoryEntry{Snapshot: &snapshot}
	return nil
}

// CloneJSONValue 深拷贝由 encoding/json 解码得到的值（map/slice/标量）
func CloneJSONValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = CloneJSONValue(item)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = CloneJSONValue(item)
		}
		return out
	default:
		return val
	}
}

// ============================================================================
//                              账本状态
// ============================================================================

// TxState 账本在状态容器中的整体状态
//
// 已提交的 TxState 按不可变值使用：写入方总是构造新的映射与新的记录。
type TxState struct {
	Transactions map[string]*TxMeta `json:"transactions"`
}

// Clone 深拷贝状态
func (s TxState) Clone() TxState {
	out := TxState{Transactions: make(map[string]*TxMeta, len(s.Transactions))}
	for id, tx := range s.Transactions {
		out.Transactions[id] = tx.Clone()
	}
	return out
}
