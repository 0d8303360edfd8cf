// Package txledger 交易账本
//
// 账本是客户端所管理交易的权威内存记录：从草稿到最终结算跟踪每一笔交易，
// 写入前校验参数，为每次变更记录可审计的历史，并按网络与地址提供过滤视图。
//
// 并发模型：
//   - 所有写操作在账本互斥锁内完成 读取-校验-比较-写入 的完整序列；
//   - 已提交的状态按不可变值使用（写时复制映射、写入新的记录副本），
//     读操作直接基于状态快照，不获取账本写锁；
//   - 状态容器的监听器在写入方协程上同步执行，此时账本写锁仍被持有，
//     监听器可以读取账本，但不能调用任何写操作；
//   - 状态事件交给事件总线的分发协程，在写操作返回后投递，监听器可回调账本。
package txledger

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	clockimpl "github.com/weisyn/txledger/internal/core/infrastructure/clock"
	logimpl "github.com/weisyn/txledger/internal/core/infrastructure/log"
	"github.com/weisyn/txledger/internal/core/store"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/clock"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/log"
	"github.com/weisyn/txledger/pkg/types"
)

// StateStore 账本所依赖的单状态容器契约
type StateStore interface {
	GetState() types.TxState
	PutState(state types.TxState)
	Subscribe(listener store.Listener[types.TxState]) (unsubscribe func())
}

// Options 账本构造参数
type Options struct {
	// InitState 初始状态，按原样装入（不校验，历史保持原样）
	InitState *types.TxState
	// TxHistoryLimit 当前网络保留的 (from, nonce) 分组上限，<=0 表示不截断
	TxHistoryLimit int
	// GetNetwork 当前网络ID，每次网络作用域操作时调用
	GetNetwork func() string
	// GetCurrentChainID 当前链ID，每次网络作用域操作时调用
	GetCurrentChainID func() string

	// Store 外部状态容器，为空时使用内置的 ObservableStore
	Store StateStore
	// EventBus 状态事件总线，为空时不发布事件
	EventBus event.EventBus
	Logger   log.Logger
	Clock    clock.Clock
}

// Ledger 交易账本
type Ledger struct {
	mu sync.Mutex // 串行化写操作

	// ================== 插入顺序 ==================
	seqMu   sync.RWMutex
	seq     map[string]uint64
	nextSeq uint64

	store      StateStore
	limit      int
	getNetwork func() string
	getChainID func() string

	bus    event.EventBus
	sink   TxEventSink
	logger log.Logger
	clock  clock.Clock
}

// NewLedger 创建账本
func NewLedger(opts Options) (*Ledger, error) {
	if opts.GetNetwork == nil {
		return nil, NewInvalidArgumentError("GetNetwork", "必须提供当前网络ID查询函数")
	}
	if opts.GetCurrentChainID == nil {
		return nil, NewInvalidArgumentError("GetCurrentChainID", "必须提供当前链ID查询函数")
	}

	initial := types.TxState{Transactions: map[string]*types.TxMeta{}}
	if opts.InitState != nil {
		initial = opts.InitState.Clone()
		if err := reconcileIDs(initial.Transactions); err != nil {
			return nil, err
		}
	}

	l := &Ledger{
		seq:        make(map[string]uint64),
		store:      opts.Store,
		limit:      opts.TxHistoryLimit,
		getNetwork: opts.GetNetwork,
		getChainID: opts.GetCurrentChainID,
		bus:        opts.EventBus,
		sink:       NewBusEventSink(opts.EventBus),
		logger:     opts.Logger,
		clock:      opts.Clock,
	}
	if l.logger == nil {
		l.logger = logimpl.NewNop()
	}
	if l.clock == nil {
		l.clock = clockimpl.NewSystemClock()
	}
	switch {
	case l.store == nil:
		l.store = store.NewObservableStore(initial)
	case opts.InitState != nil:
		l.store.PutState(initial)
	}

	state := l.store.GetState()
	l.sequenceUnknown(state)
	observeState(state)
	l.logger.Infof("交易账本已创建: records=%d limit=%d", len(state.Transactions), l.limit)
	return l, nil
}

// Store 返回底层状态容器
func (l *Ledger) Store() StateStore { return l.store }

// GetState 返回整体状态的深拷贝
func (l *Ledger) GetState() types.TxState {
	return l.store.GetState().Clone()
}

// ============================================================================
//                              添加与更新
// ============================================================================

// AddTransaction 校验并加入一条记录，返回存储后的副本
//
// 空状态默认为 unapproved；time 为 0 时打上当前时间；
// networkId 与 chainId 均为空时填入当前网络。重复ID整体覆盖。
// 成功后对当前网络执行保留策略。
func (l *Ledger) AddTransaction(tx *types.TxMeta) (*types.TxMeta, error) {
	if tx == nil {
		return nil, NewInvalidArgumentError("tx", "交易记录不能为空")
	}
	candidate := tx.Clone()
	if candidate.TxParams.IsEmpty() {
		candidate.TxParams = nil
	}
	if candidate.Status == "" {
		candidate.Status = types.TxStatusUnapproved
	}
	if candidate.NetworkID == "" && candidate.ChainID == "" {
		candidate.NetworkID = l.getNetwork()
		candidate.ChainID = l.getChainID()
	}

	l.mu.Lock()
	if candidate.Time == 0 {
		candidate.Time = l.clock.UnixMilli()
	}
	if err := ValidateTxMeta(candidate); err != nil {
		l.mu.Unlock()
		observeValidationFailure(err)
		return nil, err
	}
	candidate.History = []types.HistoryEntry{{Snapshot: SnapshotFromTxMeta(candidate)}}

	state := l.store.GetState()
	l.sequenceUnknown(state)
	next := copyTransactions(state.Transactions)
	next[candidate.ID] = candidate
	l.assignSeq(candidate.ID)

	evicted := l.selectEvictions(next, candidate)
	for _, id := range evicted {
		delete(next, id)
	}
	l.dropSeq(evicted)

	committed := types.TxState{Transactions: next}
	l.store.PutState(committed)
	observeState(committed)
	l.mu.Unlock()

	ledgerAddsTotal.Inc()
	ledgerEvictionsTotal.Add(float64(len(evicted)))
	l.logger.Debugf("添加交易: id=%s status=%s evicted=%d", candidate.ID, candidate.Status, len(evicted))
	return candidate.Clone(), nil
}

// UpdateTransaction 以 tx 替换同ID的记录，差异非空时追加一条历史
//
// networkId/chainId 不可修改；time 保持原值；状态变化需满足状态机；
// 调用方传入的 history 被忽略。无差异时不写入，返回当前记录副本。
func (l *Ledger) UpdateTransaction(tx *types.TxMeta, note string) (*types.TxMeta, error) {
	if tx == nil {
		return nil, NewInvalidArgumentError("tx", "交易记录不能为空")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	state := l.store.GetState()
	current, ok := state.Transactions[tx.ID]
	if !ok {
		return nil, NewNotFoundError(tx.ID)
	}

	candidate := tx.Clone()
	if candidate.TxParams.IsEmpty() {
		candidate.TxParams = nil
	}
	if candidate.NetworkID != current.NetworkID {
		err := NewValidationError("networkId", candidate.NetworkID, "网络ID创建后不可修改")
		observeValidationFailure(err)
		return nil, err
	}
	if candidate.ChainID != current.ChainID {
		err := NewValidationError("chainId", candidate.ChainID, "链ID创建后不可修改")
		observeValidationFailure(err)
		return nil, err
	}
	candidate.Time = current.Time
	if candidate.Status != current.Status && !CanTransition(current.Status, candidate.Status) {
		return nil, NewInvalidTransitionError(tx.ID, current.Status, candidate.Status)
	}

	return l.commitLocked(state, current, candidate, note)
}

// commitLocked 校验候选记录，计算差异并写入；调用方需持有 mu
func (l *Ledger) commitLocked(state types.TxState, current, candidate *types.TxMeta, note string) (*types.TxMeta, error) {
	if err := ValidateTxMeta(candidate); err != nil {
		observeValidationFailure(err)
		return nil, err
	}
	ops, err := GenerateHistoryEntry(current, candidate, note, l.clock.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("计算交易 %s 的历史差异失败: %w", current.ID, err)
	}
	if ops == nil {
		return current.Clone(), nil
	}

	history := make([]types.HistoryEntry, len(current.History), len(current.History)+1)
	copy(history, current.History)
	candidate.History = append(history, types.HistoryEntry{Ops: ops})

	l.sequenceUnknown(state)
	next := copyTransactions(state.Transactions)
	next[candidate.ID] = candidate
	committed := types.TxState{Transactions: next}
	l.store.PutState(committed)

	ledgerUpdatesTotal.Inc()
	observeState(committed)
	l.logger.Debugf("更新交易: id=%s ops=%d note=%q", candidate.ID, len(ops), note)
	return candidate.Clone(), nil
}

// ============================================================================
//                              状态迁移
// ============================================================================

// SetTxStatusUnapproved 设置为 unapproved
func (l *Ledger) SetTxStatusUnapproved(id string) error {
	return l.setStatus(id, types.TxStatusUnapproved, nil)
}

// SetTxStatusApproved 设置为 approved
func (l *Ledger) SetTxStatusApproved(id string) error {
	return l.setStatus(id, types.TxStatusApproved, nil)
}

// SetTxStatusSigned 设置为 signed
func (l *Ledger) SetTxStatusSigned(id string) error {
	return l.setStatus(id, types.TxStatusSigned, nil)
}

// SetTxStatusSubmitted 设置为 submitted，并记录提交时间
func (l *Ledger) SetTxStatusSubmitted(id string) error {
	return l.setStatus(id, types.TxStatusSubmitted, func(tx *types.TxMeta) {
		tx.SubmittedTime = l.clock.UnixMilli()
	})
}

// SetTxStatusConfirmed 设置为 confirmed
func (l *Ledger) SetTxStatusConfirmed(id string) error {
	return l.setStatus(id, types.TxStatusConfirmed, nil)
}

// SetTxStatusRejected 设置为 rejected，之后默认查询不再返回该记录
func (l *Ledger) SetTxStatusRejected(id string) error {
	return l.setStatus(id, types.TxStatusRejected, nil)
}

// SetTxStatusDropped 设置为 dropped
func (l *Ledger) SetTxStatusDropped(id string) error {
	return l.setStatus(id, types.TxStatusDropped, nil)
}

// rpcDataError 携带 RPC 错误数据的错误（与 go-ethereum rpc.DataError 相同形状）
type rpcDataError interface {
	error
	ErrorData() interface{}
}

// SetTxStatusFailed 设置为 failed，并在记录上保存错误信息
func (l *Ledger) SetTxStatusFailed(id string, cause error) error {
	return l.setStatus(id, types.TxStatusFailed, func(tx *types.TxMeta) {
		if cause == nil {
			return
		}
		txErr := &types.TxError{Message: cause.Error()}
		var dataErr rpcDataError
		if errors.As(cause, &dataErr) {
			txErr.RPC = dataErr.ErrorData()
		}
		tx.Err = txErr
	})
}

// setStatus 状态迁移的公共路径：迁移检查、写入、事件
func (l *Ledger) setStatus(id string, status types.TxStatus, mutate func(tx *types.TxMeta)) error {
	l.mu.Lock()
	state := l.store.GetState()
	current, ok := state.Transactions[id]
	if !ok {
		l.mu.Unlock()
		return NewNotFoundError(id)
	}
	if !CanTransition(current.Status, status) {
		l.mu.Unlock()
		return NewInvalidTransitionError(id, current.Status, status)
	}

	candidate := current.Clone()
	candidate.Status = status
	if mutate != nil {
		mutate(candidate)
	}
	updated, err := l.commitLocked(state, current, candidate, "txledger: setting status to "+string(status))
	l.mu.Unlock()
	if err != nil {
		return err
	}

	l.sink.OnStatusChanged(updated)
	return nil
}

// ============================================================================
//                              查询
// ============================================================================

// GetTransaction 按ID获取记录副本（不区分网络）
func (l *Ledger) GetTransaction(id string) (*types.TxMeta, error) {
	tx, ok := l.store.GetState().Transactions[id]
	if !ok {
		return nil, NewNotFoundError(id)
	}
	return tx.Clone(), nil
}

// GetTransactions 按选项过滤、排序与限量，返回记录副本
func (l *Ledger) GetTransactions(opts QueryOptions) ([]*types.TxMeta, error) {
	if opts.Limit < 0 {
		return nil, NewInvalidArgumentError("limit", "limit 不能为负数")
	}
	matchers, err := compileCriteria(opts.SearchCriteria)
	if err != nil {
		return nil, err
	}

	var candidates []*types.TxMeta
	if opts.InitialList != nil {
		seen := make(map[string]bool, len(opts.InitialList))
		for _, tx := range opts.InitialList {
			if tx == nil || seen[tx.ID] {
				continue
			}
			seen[tx.ID] = true
			candidates = append(candidates, tx)
		}
	} else {
		for _, tx := range l.store.GetState().Transactions {
			candidates = append(candidates, tx)
		}
	}

	var networkID, chainID string
	if !opts.AllNetworks {
		networkID, chainID = l.getNetwork(), l.getChainID()
	}
	filtered := candidates[:0:0]
	for _, tx := range candidates {
		if !opts.AllNetworks && (!matchesNetwork(tx, networkID, chainID) || rejectedDuringLifetime(tx)) {
			continue
		}
		if !matchesAll(tx, matchers) {
			continue
		}
		filtered = append(filtered, tx)
	}

	ordered := limitByNonce(l.sortByInsertion(filtered), opts.Limit)
	out := make([]*types.TxMeta, len(ordered))
	for i, tx := range ordered {
		out[i] = tx.Clone()
	}
	return out, nil
}

// GetUnapprovedTxList 当前网络上所有 unapproved 记录，按ID索引
func (l *Ledger) GetUnapprovedTxList() map[string]*types.TxMeta {
	out := make(map[string]*types.TxMeta)
	for _, tx := range l.GetTransactionsByStatus(types.TxStatusUnapproved) {
		out[tx.ID] = tx
	}
	return out
}

// GetTransactionsByStatus 当前网络上指定状态的记录
func (l *Ledger) GetTransactionsByStatus(status types.TxStatus) []*types.TxMeta {
	txs, _ := l.GetTransactions(QueryOptions{
		SearchCriteria: map[string]Matcher{"status": Eq(status)},
	})
	return txs
}

// GetApprovedTransactions 当前网络上的 approved 记录，address 非空时按发送方过滤
func (l *Ledger) GetApprovedTransactions(address string) []*types.TxMeta {
	return l.byStatusAndSender(types.TxStatusApproved, address)
}

// GetPendingTransactions 当前网络上已提交待确认（submitted）的记录
func (l *Ledger) GetPendingTransactions(address string) []*types.TxMeta {
	return l.byStatusAndSender(types.TxStatusSubmitted, address)
}

// GetConfirmedTransactions 当前网络上的 confirmed 记录
func (l *Ledger) GetConfirmedTransactions(address string) []*types.TxMeta {
	return l.byStatusAndSender(types.TxStatusConfirmed, address)
}

func (l *Ledger) byStatusAndSender(status types.TxStatus, address string) []*types.TxMeta {
	criteria := map[string]Matcher{"status": Eq(status)}
	if address != "" {
		criteria["from"] = Where(func(v any) bool {
			from, _ := v.(string)
			return from != "" && sameAddress(from, address)
		})
	}
	txs, _ := l.GetTransactions(QueryOptions{SearchCriteria: criteria})
	return txs
}

// ListTransactions 把简单查询条件转换为 QueryOptions 后查询
func (l *Ledger) ListTransactions(query types.TxQuery) ([]*types.TxMeta, error) {
	criteria := make(map[string]Matcher)
	if query.Status != "" {
		if !query.Status.IsValid() {
			return nil, NewInvalidArgumentError("status", "未知的交易状态")
		}
		criteria["status"] = Eq(query.Status)
	}
	if query.From != "" {
		address := query.From
		criteria["from"] = Where(func(v any) bool {
			from, _ := v.(string)
			return from != "" && sameAddress(from, address)
		})
	}
	return l.GetTransactions(QueryOptions{
		AllNetworks:    query.AllNetworks,
		SearchCriteria: criteria,
		Limit:          query.Limit,
	})
}

// ============================================================================
//                              删除
// ============================================================================

// DeleteTransaction 按ID删除记录及其历史（不区分网络）
func (l *Ledger) DeleteTransaction(id string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.store.GetState().Transactions[id]; !ok {
		return NewNotFoundError(id)
	}
	l.removeWhereLocked(func(tx *types.TxMeta) bool { return tx.ID == id })
	l.logger.Debugf("删除交易: id=%s", id)
	return nil
}

// WipeTransactions 删除当前网络上发送方为 address 的全部记录，返回删除数量
func (l *Ledger) WipeTransactions(address string) int {
	networkID, chainID := l.getNetwork(), l.getChainID()

	l.mu.Lock()
	defer l.mu.Unlock()

	removed := l.removeWhereLocked(func(tx *types.TxMeta) bool {
		return matchesNetwork(tx, networkID, chainID) && tx.From() != "" && sameAddress(tx.From(), address)
	})
	l.logger.Debugf("清除地址交易: address=%s removed=%d", address, removed)
	return removed
}

// ClearUnapprovedTxs 删除所有网络上的 unapproved 记录，返回删除数量
func (l *Ledger) ClearUnapprovedTxs() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.removeWhereLocked(func(tx *types.TxMeta) bool {
		return tx.Status == types.TxStatusUnapproved
	})
}

// removeWhereLocked 删除满足条件的记录；无匹配时不写入
func (l *Ledger) removeWhereLocked(match func(tx *types.TxMeta) bool) int {
	state := l.store.GetState()
	l.sequenceUnknown(state)

	next := make(map[string]*types.TxMeta, len(state.Transactions))
	var removed []string
	for id, tx := range state.Transactions {
		if match(tx) {
			removed = append(removed, id)
			continue
		}
		next[id] = tx
	}
	if len(removed) == 0 {
		return 0
	}

	committed := types.TxState{Transactions: next}
	l.store.PutState(committed)
	l.dropSeq(removed)
	observeState(committed)
	return len(removed)
}

// ============================================================================
//                              事件订阅
// ============================================================================

// On 订阅事件：单笔事件用 StatusEventType(id, status)，通用事件用 TopicStatusUpdate
//
// 单笔事件的记录载荷每个监听器各得一份副本。
func (l *Ledger) On(eventType event.EventType, handler event.EventHandler) (types.SubscriptionID, error) {
	if l.bus == nil {
		return "", fmt.Errorf("账本未配置事件总线")
	}
	if handler == nil {
		return "", NewInvalidArgumentError("handler", "事件处理器不能为空")
	}
	return l.bus.Subscribe(eventType, clonePayload(handler))
}

// Once 一次性订阅
func (l *Ledger) Once(eventType event.EventType, handler event.EventHandler) (types.SubscriptionID, error) {
	if l.bus == nil {
		return "", fmt.Errorf("账本未配置事件总线")
	}
	if handler == nil {
		return "", NewInvalidArgumentError("handler", "事件处理器不能为空")
	}
	return l.bus.SubscribeOnce(eventType, clonePayload(handler))
}

// clonePayload 投递前复制记录载荷，监听器之间互不影响
func clonePayload(handler event.EventHandler) event.EventHandler {
	return func(eventType event.EventType, data interface{}) {
		if tx, ok := data.(*types.TxMeta); ok {
			data = tx.Clone()
		}
		handler(eventType, data)
	}
}

// Off 取消订阅
func (l *Ledger) Off(id types.SubscriptionID) error {
	if l.bus == nil {
		return fmt.Errorf("账本未配置事件总线")
	}
	return l.bus.UnsubscribeByID(id)
}

// WaitAsync 等待已调度的事件全部投递完成
func (l *Ledger) WaitAsync() {
	if l.bus != nil {
		l.bus.WaitAsync()
	}
}

// ============================================================================
//                              内部工具
// ============================================================================

// selectEvictions 对当前网络执行保留策略，保护刚加入记录所在的分组
func (l *Ledger) selectEvictions(next map[string]*types.TxMeta, added *types.TxMeta) []string {
	if l.limit <= 0 {
		return nil
	}
	networkID, chainID := l.getNetwork(), l.getChainID()
	var scoped []*types.TxMeta
	for _, tx := range next {
		if matchesNetwork(tx, networkID, chainID) {
			scoped = append(scoped, tx)
		}
	}
	return selectEvictions(l.sortByInsertion(scoped), l.limit, nonceGroupKey(added))
}

// sortByInsertion 按插入顺序排序（返回新切片）
func (l *Ledger) sortByInsertion(txs []*types.TxMeta) []*types.TxMeta {
	type keyed struct {
		tx  *types.TxMeta
		key orderKey
	}
	items := make([]keyed, len(txs))
	l.seqMu.RLock()
	for i, tx := range txs {
		seq, ok := l.seq[tx.ID]
		if !ok {
			seq = unsequenced
		}
		items[i] = keyed{tx: tx, key: orderKey{seq: seq, time: tx.Time, id: tx.ID}}
	}
	l.seqMu.RUnlock()

	sort.SliceStable(items, func(i, j int) bool { return lessOrder(items[i].key, items[j].key) })
	out := make([]*types.TxMeta, len(items))
	for i, item := range items {
		out[i] = item.tx
	}
	return out
}

// sequenceUnknown 为尚未登记的记录按 (time, id) 分配序号
func (l *Ledger) sequenceUnknown(state types.TxState) {
	l.seqMu.Lock()
	defer l.seqMu.Unlock()

	var unknown []orderKey
	for id, tx := range state.Transactions {
		if _, ok := l.seq[id]; !ok {
			unknown = append(unknown, orderKey{time: tx.Time, id: id})
		}
	}
	sort.Slice(unknown, func(i, j int) bool { return lessOrder(unknown[i], unknown[j]) })
	for _, key := range unknown {
		l.seq[key.id] = l.nextSeq
		l.nextSeq++
	}
}

// assignSeq 分配新序号（重复ID移到末尾）
func (l *Ledger) assignSeq(id string) {
	l.seqMu.Lock()
	defer l.seqMu.Unlock()
	l.seq[id] = l.nextSeq
	l.nextSeq++
}

func (l *Ledger) dropSeq(ids []string) {
	if len(ids) == 0 {
		return
	}
	l.seqMu.Lock()
	defer l.seqMu.Unlock()
	for _, id := range ids {
		delete(l.seq, id)
	}
}

func copyTransactions(src map[string]*types.TxMeta) map[string]*types.TxMeta {
	out := make(map[string]*types.TxMeta, len(src)+1)
	for id, tx := range src {
		out[id] = tx
	}
	return out
}
