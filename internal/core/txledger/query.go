package txledger

import (
	"fmt"
	"math"
	"math/big"
	"sort"
	"strings"

	"github.com/weisyn/txledger/pkg/types"
)

// ============================================================================
//                              查询条件
// ============================================================================

// Matcher 单个字段的匹配条件
type Matcher interface {
	Match(value any) bool
}

type eqMatcher struct{ want any }

func (m eqMatcher) Match(value any) bool { return looseEqual(value, m.want) }

type predicateMatcher func(any) bool

func (p predicateMatcher) Match(value any) bool { return p(value) }

// Eq 字面值相等匹配
func Eq(value any) Matcher { return eqMatcher{want: value} }

// Where 谓词匹配；字段缺省时以空字符串调用
func Where(fn func(value any) bool) Matcher {
	if fn == nil {
		return nil
	}
	return predicateMatcher(fn)
}

// QueryOptions GetTransactions 的查询选项
type QueryOptions struct {
	// AllNetworks 为 false 时只返回当前网络的记录
	AllNetworks bool
	// SearchCriteria 字段路径到匹配条件，多个条件取交集
	SearchCriteria map[string]Matcher
	// InitialList 非空时在该列表上过滤，而不是账本映射
	InitialList []*types.TxMeta
	// Limit 返回最近 N 个 (from, nonce) 分组的全部记录，0 表示不限
	Limit int
}

// topLevelFields 顶层可查询字段
var topLevelFields = map[string]func(*types.TxMeta) any{
	"id":        func(tx *types.TxMeta) any { return tx.ID },
	"status":    func(tx *types.TxMeta) any { return tx.Status },
	"networkId": func(tx *types.TxMeta) any { return tx.NetworkID },
	"chainId":   func(tx *types.TxMeta) any { return tx.ChainID },
	"hash":      func(tx *types.TxMeta) any { return tx.Hash },
	"origin":    func(tx *types.TxMeta) any { return tx.Origin },
	"type":      func(tx *types.TxMeta) any { return tx.Type },
	"time":      func(tx *types.TxMeta) any { return tx.Time },
}

// fieldMatcher 解析后的查询条件
type fieldMatcher struct {
	path    string
	extract func(*types.TxMeta) any
	matcher Matcher
}

// compileCriteria 把查询键规范化为字段路径；未知键、空条件或同一字段重复出现都视为参数错误
func compileCriteria(criteria map[string]Matcher) ([]fieldMatcher, error) {
	keys := make([]string, 0, len(criteria))
	for key := range criteria {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	compiled := make([]fieldMatcher, 0, len(keys))
	seen := make(map[string]string, len(keys))
	for _, key := range keys {
		matcher := criteria[key]
		if matcher == nil {
			return nil, NewInvalidArgumentError(key, "查询条件不能为空")
		}
		path, extract, ok := resolveField(key)
		if !ok {
			return nil, NewInvalidArgumentError(key, "未知的查询字段")
		}
		if prior, dup := seen[path]; dup {
			return nil, NewInvalidArgumentError(key, fmt.Sprintf("与 %s 指向同一字段", prior))
		}
		seen[path] = key
		compiled = append(compiled, fieldMatcher{path: path, extract: extract, matcher: matcher})
	}
	return compiled, nil
}

// resolveField 顶层字段优先；其余裸字段名或 txParams.<name> 指向参数块
func resolveField(key string) (string, func(*types.TxMeta) any, bool) {
	if extract, ok := topLevelFields[key]; ok {
		return key, extract, true
	}
	name := strings.TrimPrefix(key, "txParams.")
	for _, param := range types.TxParamNames {
		if param == name {
			return "txParams." + name, func(tx *types.TxMeta) any {
				value, _ := tx.TxParams.Get(name)
				return value
			}, true
		}
	}
	return "", nil, false
}

func matchesAll(tx *types.TxMeta, matchers []fieldMatcher) bool {
	for _, m := range matchers {
		if !m.matcher.Match(m.extract(tx)) {
			return false
		}
	}
	return true
}

// looseEqual 字符串类值按字符串比较，数值按 int64 比较
func looseEqual(a, b any) bool {
	if as, ok := asString(a); ok {
		bs, ok := asString(b)
		return ok && as == bs
	}
	if an, ok := asInt(a); ok {
		bn, ok := asInt(b)
		return ok && an == bn
	}
	return a == b
}

func asString(v any) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case types.TxStatus:
		return string(val), true
	default:
		return "", false
	}
}

func asInt(v any) (int64, bool) {
	switch val := v.(type) {
	case int:
		return int64(val), true
	case int64:
		return val, true
	case int32:
		return int64(val), true
	case float64:
		if val == math.Trunc(val) {
			return int64(val), true
		}
	}
	return 0, false
}

// ============================================================================
//                              网络与分组
// ============================================================================

// matchesNetwork 有 chainId 时按 chainId 比较，否则按 networkId 比较
func matchesNetwork(tx *types.TxMeta, networkID, chainID string) bool {
	if tx.ChainID != "" {
		return tx.ChainID == chainID
	}
	return tx.NetworkID == networkID
}

// rejectedDuringLifetime 当前为 rejected 而插入快照不是 rejected
func rejectedDuringLifetime(tx *types.TxMeta) bool {
	if tx.Status != types.TxStatusRejected || len(tx.History) == 0 || tx.History[0].Snapshot == nil {
		return false
	}
	return tx.History[0].Snapshot.Status != types.TxStatusRejected
}

// nonceGroupKey (from, nonce) 分组键；无 nonce 的记录单独成组
func nonceGroupKey(tx *types.TxMeta) string {
	nonce := tx.Nonce()
	if nonce == "" {
		return "id:" + tx.ID
	}
	return "nonce:" + strings.ToLower(tx.From()) + "|" + strings.ToLower(nonce)
}

// limitByNonce 保留最近 limit 个分组的全部记录，保持原有顺序
func limitByNonce(ordered []*types.TxMeta, limit int) []*types.TxMeta {
	if limit <= 0 {
		return ordered
	}
	selected := make(map[string]bool, limit)
	keep := make([]bool, len(ordered))
	for i := len(ordered) - 1; i >= 0; i-- {
		key := nonceGroupKey(ordered[i])
		if !selected[key] {
			if len(selected) >= limit {
				continue
			}
			selected[key] = true
		}
		keep[i] = true
	}
	out := make([]*types.TxMeta, 0, len(ordered))
	for i, tx := range ordered {
		if keep[i] {
			out = append(out, tx)
		}
	}
	return out
}

// ============================================================================
//                              排序
// ============================================================================

// orderKey 插入顺序键：已登记序号优先，未登记的按 (time, id) 排在最后
type orderKey struct {
	seq  uint64
	time int64
	id   string
}

func lessOrder(a, b orderKey) bool {
	if a.seq != b.seq {
		return a.seq < b.seq
	}
	if a.time != b.time {
		return a.time < b.time
	}
	return lessID(a.id, b.id)
}

// lessID 两侧都是整数时按数值比较，整数排在非整数之前，其余按字典序
func lessID(a, b string) bool {
	ai, aok := new(big.Int).SetString(a, 10)
	bi, bok := new(big.Int).SetString(b, 10)
	switch {
	case aok && bok:
		if c := ai.Cmp(bi); c != 0 {
			return c < 0
		}
		return a < b
	case aok:
		return true
	case bok:
		return false
	default:
		return a < b
	}
}

const unsequenced = math.MaxUint64

// ============================================================================
//                              保留策略
// ============================================================================

// selectEvictions 计算当前网络上需要淘汰的记录ID
//
// 分组数超过 limit 时，从最旧的分组开始淘汰全部成员均为终态的分组；
// 刚加入记录所在的分组与含未终结记录的分组不会被淘汰。
func selectEvictions(ordered []*types.TxMeta, limit int, protectedGroup string) []string {
	if limit <= 0 {
		return nil
	}
	var groupOrder []string
	members := make(map[string][]*types.TxMeta)
	for _, tx := range ordered {
		key := nonceGroupKey(tx)
		if _, ok := members[key]; !ok {
			groupOrder = append(groupOrder, key)
		}
		members[key] = append(members[key], tx)
	}

	excess := len(groupOrder) - limit
	var evicted []string
	for _, key := range groupOrder {
		if excess <= 0 {
			break
		}
		if key == protectedGroup || !allFinal(members[key]) {
			continue
		}
		for _, tx := range members[key] {
			evicted = append(evicted, tx.ID)
		}
		excess--
	}
	return evicted
}

func allFinal(txs []*types.TxMeta) bool {
	for _, tx := range txs {
		if !tx.Status.IsFinal() {
			return false
		}
	}
	return true
}
