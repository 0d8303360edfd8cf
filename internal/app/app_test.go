package app

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"

	apihttp "github.com/weisyn/txledger/internal/api/http"
	"github.com/weisyn/txledger/internal/core/txledger"
	"github.com/weisyn/txledger/pkg/interfaces/infrastructure/event"
	"github.com/weisyn/txledger/pkg/types"
)

func ptr[T any](v T) *T { return &v }

// quietConfig 关闭控制台日志的最小配置
func quietConfig(httpEnabled bool) *types.AppConfig {
	return &types.AppConfig{
		Log: &types.UserLogConfig{Level: ptr("error"), ToConsole: ptr(false)},
		Ledger: &types.UserLedgerConfig{
			NetworkID: ptr("5"),
			ChainID:   ptr("0x5"),
		},
		API: &types.UserAPIConfig{
			HTTPEnabled:    ptr(httpEnabled),
			HTTPListenAddr: ptr("127.0.0.1:0"),
		},
	}
}

func TestStart_WiresLedgerAndEventBus(t *testing.T) {
	// Arrange
	var ledger *txledger.Ledger
	application, err := Start(
		[]Option{WithAppConfig(quietConfig(false)), WithoutAPI()},
		fx.Populate(&ledger),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Stop() })

	var got []types.TxStatusUpdate
	_, err = ledger.On(txledger.TopicStatusUpdate, func(_ event.EventType, data interface{}) {
		got = append(got, data.(types.TxStatusUpdate))
	})
	require.NoError(t, err)

	// Act
	added, err := ledger.AddTransaction(&types.TxMeta{ID: "1"})
	require.NoError(t, err)
	require.NoError(t, ledger.SetTxStatusApproved("1"))
	ledger.WaitAsync()

	// Assert
	assert.Equal(t, "5", added.NetworkID, "使用配置的当前网络")
	assert.Equal(t, "0x5", added.ChainID)
	assert.Equal(t, []types.TxStatusUpdate{{ID: "1", Status: types.TxStatusApproved}}, got)
}

func TestStart_ServesHTTP(t *testing.T) {
	var server *apihttp.Server
	application, err := Start([]Option{WithAppConfig(quietConfig(true))}, fx.Populate(&server))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Stop() })

	resp, err := http.Get("http://" + server.Addr() + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"records":0`)

	stateResp, err := http.Get("http://" + server.Addr() + "/api/v1/state?tree=true")
	require.NoError(t, err)
	defer stateResp.Body.Close()
	stateBody, err := io.ReadAll(stateResp.Body)
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, stateResp.StatusCode)
	assert.Contains(t, string(stateBody), `"TxLedger"`)
}

func TestStart_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"log": {"level": "error", "to_console": false},
		"ledger": {"network_id": "42", "chain_id": "0x2a"},
		"api": {"http_enabled": false}
	}`), 0o600))

	var ledger *txledger.Ledger
	application, err := Start([]Option{WithConfigFile(path)}, fx.Populate(&ledger))
	require.NoError(t, err)
	t.Cleanup(func() { _ = application.Stop() })

	added, err := ledger.AddTransaction(&types.TxMeta{ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "42", added.NetworkID)

	_, err = Start([]Option{WithConfigFile(filepath.Join(dir, "missing.json"))})
	assert.Error(t, err)
}
