package txledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/weisyn/txledger/pkg/types"
)

func TestGenerateHistoryEntry_OrderedOps(t *testing.T) {
	// Arrange
	prev := &types.TxMeta{
		ID:       "1",
		Status:   types.TxStatusUnapproved,
		Time:     1,
		Hash:     "0xa",
		TxParams: &types.TxParams{From: addrA, Nonce: "0x0", GasPrice: "0x01"},
	}
	next := prev.Clone()
	next.Status = types.TxStatusApproved
	next.Hash = ""
	next.Origin = "dapp"
	next.TxParams.GasPrice = ""
	next.TxParams.Value = "0x10"

	// Act
	ops, err := GenerateHistoryEntry(prev, next, "edit", 42)

	// Assert: 先按旧键 remove/replace，再按新键 add，嵌套对象递归
	require.NoError(t, err)
	assert.Equal(t, []types.PatchOp{
		{Op: types.PatchOpRemove, Path: "/hash", Timestamp: 42, Note: "edit"},
		{Op: types.PatchOpReplace, Path: "/status", Value: "approved", Timestamp: 42},
		{Op: types.PatchOpRemove, Path: "/txParams/gasPrice", Timestamp: 42},
		{Op: types.PatchOpAdd, Path: "/txParams/value", Value: "0x10", Timestamp: 42},
		{Op: types.PatchOpAdd, Path: "/origin", Value: "dapp", Timestamp: 42},
	}, ops)
}

func TestGenerateHistoryEntry_EmptyDiffIsNil(t *testing.T) {
	prev := newTx("1", types.TxStatusApproved, addrA, "0x0")
	next := prev.Clone()
	next.History = []types.HistoryEntry{{Snapshot: prev.Clone()}}

	ops, err := GenerateHistoryEntry(prev, next, "note", 1)
	require.NoError(t, err)
	assert.Nil(t, ops, "历史字段不参与比较")
}

func TestGenerateHistoryEntry_EscapesPointerTokens(t *testing.T) {
	prev := &types.TxMeta{ID: "1", Status: types.TxStatusFailed, Err: &types.TxError{
		Message: "boom",
		RPC:     map[string]any{"a/b~c": float64(1)},
	}}
	next := prev.Clone()
	next.Err.RPC = map[string]any{"a/b~c": float64(2)}

	ops, err := GenerateHistoryEntry(prev, next, "", 7)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, "/err/rpc/a~1b~0c", ops[0].Path)
	assert.Equal(t, float64(2), ops[0].Value)
}

func TestGenerateHistoryEntry_ArraysReplacedWhole(t *testing.T) {
	prev := &types.TxMeta{ID: "1", Status: types.TxStatusFailed, Err: &types.TxError{
		Message: "boom",
		RPC:     []any{"a", "b"},
	}}
	next := prev.Clone()
	next.Err.RPC = []any{"a", "c"}

	ops, err := GenerateHistoryEntry(prev, next, "", 7)
	require.NoError(t, err)
	require.Len(t, ops, 1)
	assert.Equal(t, types.PatchOpReplace, ops[0].Op)
	assert.Equal(t, "/err/rpc", ops[0].Path)
	assert.Equal(t, []any{"a", "c"}, ops[0].Value)
}

func TestReplayHistory_RebuildsCurrentRecord(t *testing.T) {
	// Arrange: 经过参数修改与多次状态迁移的记录
	ledger, clk := newTestLedger(t, 40)
	added := mustAdd(t, ledger, newTx("1", types.TxStatusUnapproved, addrA, "0x0"))

	added.TxParams.GasPrice = "0x02"
	added.Hash = "0xbeef"
	_, err := ledger.UpdateTransaction(added, "gas bump")
	require.NoError(t, err)
	require.NoError(t, ledger.SetTxStatusApproved("1"))
	require.NoError(t, ledger.SetTxStatusSigned("1"))
	clk.Advance(time.Second)
	require.NoError(t, ledger.SetTxStatusSubmitted("1"))
	require.NoError(t, ledger.SetTxStatusFailed("1", testDataError{}))

	stored, err := ledger.GetTransaction("1")
	require.NoError(t, err)
	require.Len(t, stored.History, 6)

	// Act
	rebuilt, err := ReplayHistory(stored.History)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, SnapshotFromTxMeta(stored), rebuilt)
}

func TestReplayHistory_Errors(t *testing.T) {
	snapshot := newTx("1", types.TxStatusUnapproved, addrA, "0x0")

	_, err := ReplayHistory(nil)
	assert.True(t, IsInvalidArgumentError(err))

	_, err = ReplayHistory([]types.HistoryEntry{{Ops: []types.PatchOp{}}})
	assert.True(t, IsInvalidArgumentError(err), "第0条必须是快照")

	_, err = ReplayHistory([]types.HistoryEntry{{Snapshot: snapshot}, {Snapshot: snapshot}})
	assert.True(t, IsInvalidArgumentError(err))

	_, err = ReplayHistory([]types.HistoryEntry{
		{Snapshot: snapshot},
		{Ops: []types.PatchOp{{Op: types.PatchOpRemove, Path: "/hash"}}},
	})
	assert.True(t, IsInvalidArgumentError(err), "删除不存在的路径")

	_, err = ReplayHistory([]types.HistoryEntry{
		{Snapshot: snapshot},
		{Ops: []types.PatchOp{{Op: "move", Path: "/hash"}}},
	})
	assert.True(t, IsInvalidArgumentError(err))

	_, err = ReplayHistory([]types.HistoryEntry{
		{Snapshot: snapshot},
		{Ops: []types.PatchOp{{Op: types.PatchOpAdd, Path: "hash", Value: "0x1"}}},
	})
	assert.True(t, IsInvalidArgumentError(err), "路径必须以 / 开头")
}

func TestReplayHistory_AddCreatesIntermediateObjects(t *testing.T) {
	snapshot := &types.TxMeta{ID: "1", Status: types.TxStatusUnapproved}

	rebuilt, err := ReplayHistory([]types.HistoryEntry{
		{Snapshot: snapshot},
		{Ops: []types.PatchOp{{Op: types.PatchOpAdd, Path: "/txParams/nonce", Value: "0x3"}}},
	})

	require.NoError(t, err)
	require.NotNil(t, rebuilt.TxParams)
	assert.Equal(t, "0x3", rebuilt.TxParams.Nonce)
}
