package txledger

import (
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/weisyn/txledger/pkg/types"
)

// SnapshotFromTxMeta 返回不含历史的深拷贝
func SnapshotFromTxMeta(tx *types.TxMeta) *types.TxMeta {
	snapshot := tx.Clone()
	if snapshot != nil {
		snapshot.History = nil
	}
	return snapshot
}

// GenerateHistoryEntry 计算两个快照之间的变更操作
//
// 比较在两者的 JSON 对象形式上进行：先按旧键排序输出 remove/replace，
// 再按新键排序输出 add；嵌套对象递归比较，数组与标量整体替换。
// 批次内所有操作共用 now 作为时间戳，note 记在第一个操作上。
// 无差异时返回 nil。
func GenerateHistoryEntry(prev, next *types.TxMeta, note string, now int64) ([]types.PatchOp, error) {
	prevObj, err := toObject(SnapshotFromTxMeta(prev))
	if err != nil {
		return nil, err
	}
	nextObj, err := toObject(SnapshotFromTxMeta(next))
	if err != nil {
		return nil, err
	}

	var ops []types.PatchOp
	diffObjects(prevObj, nextObj, "", &ops)
	if len(ops) == 0 {
		return nil, nil
	}
	for i := range ops {
		ops[i].Timestamp = now
	}
	ops[0].Note = note
	return ops, nil
}

func diffObjects(prev, next map[string]any, path string, ops *[]types.PatchOp) {
	for _, key := range sortedKeys(prev) {
		oldVal := prev[key]
		keyPath := path + "/" + escapePointer(key)
		newVal, ok := next[key]
		if !ok {
			*ops = append(*ops, types.PatchOp{Op: types.PatchOpRemove, Path: keyPath})
			continue
		}
		oldObj, oldIsObj := oldVal.(map[string]any)
		newObj, newIsObj := newVal.(map[string]any)
		if oldIsObj && newIsObj {
			diffObjects(oldObj, newObj, keyPath, ops)
			continue
		}
		if !reflect.DeepEqual(oldVal, newVal) {
			*ops = append(*ops, types.PatchOp{Op: types.PatchOpReplace, Path: keyPath, Value: newVal})
		}
	}
	for _, key := range sortedKeys(next) {
		if _, ok := prev[key]; !ok {
			*ops = append(*ops, types.PatchOp{
				Op:    types.PatchOpAdd,
				Path:  path + "/" + escapePointer(key),
				Value: next[key],
			})
		}
	}
}

// ReplayHistory 从快照条目开始依次应用变更批次，重建当前记录（不含历史）
func ReplayHistory(history []types.HistoryEntry) (*types.TxMeta, error) {
	if len(history) == 0 || history[0].Snapshot == nil {
		return nil, NewInvalidArgumentError("history", "历史第0条必须是快照")
	}
	doc, err := toObject(SnapshotFromTxMeta(history[0].Snapshot))
	if err != nil {
		return nil, err
	}
	for i, entry := range history[1:] {
		if entry.Snapshot != nil {
			return nil, NewInvalidArgumentError("history", fmt.Sprintf("第%d条历史不应为快照", i+1))
		}
		for _, op := range entry.Ops {
			if err := applyOp(doc, op); err != nil {
				return nil, err
			}
		}
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("编码重建结果失败: %w", err)
	}
	var tx types.TxMeta
	if err := json.Unmarshal(data, &tx); err != nil {
		return nil, fmt.Errorf("解码重建结果失败: %w", err)
	}
	return &tx, nil
}

// applyOp 在对象路径上应用单个操作
func applyOp(doc map[string]any, op types.PatchOp) error {
	tokens, err := parsePointer(op.Path)
	if err != nil {
		return err
	}
	parent := doc
	for _, token := range tokens[:len(tokens)-1] {
		child, ok := parent[token].(map[string]any)
		if !ok {
			if op.Op != types.PatchOpAdd {
				return NewInvalidArgumentError("history", fmt.Sprintf("路径不存在: %s", op.Path))
			}
			child = map[string]any{}
			parent[token] = child
		}
		parent = child
	}
	last := tokens[len(tokens)-1]

	switch op.Op {
	case types.PatchOpAdd, types.PatchOpReplace:
		parent[last] = types.CloneJSONValue(op.Value)
	case types.PatchOpRemove:
		if _, ok := parent[last]; !ok {
			return NewInvalidArgumentError("history", fmt.Sprintf("待删除路径不存在: %s", op.Path))
		}
		delete(parent, last)
	default:
		return NewInvalidArgumentError("history", fmt.Sprintf("不支持的操作: %s", op.Op))
	}
	return nil
}

// toObject 转换为 JSON 对象形式
func toObject(tx *types.TxMeta) (map[string]any, error) {
	if tx == nil {
		return map[string]any{}, nil
	}
	data, err := json.Marshal(tx)
	if err != nil {
		return nil, fmt.Errorf("编码交易记录失败: %w", err)
	}
	var obj map[string]any
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("解码交易记录失败: %w", err)
	}
	return obj, nil
}

func escapePointer(token string) string {
	token = strings.ReplaceAll(token, "~", "~0")
	return strings.ReplaceAll(token, "/", "~1")
}

func unescapePointer(token string) string {
	token = strings.ReplaceAll(token, "~1", "/")
	return strings.ReplaceAll(token, "~0", "~")
}

func parsePointer(path string) ([]string, error) {
	if path == "" || path[0] != '/' {
		return nil, NewInvalidArgumentError("history", fmt.Sprintf("非法的JSON指针: %q", path))
	}
	parts := strings.Split(path[1:], "/")
	for i, part := range parts {
		parts[i] = unescapePointer(part)
	}
	return parts, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
