package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/txledger/internal/core/txledger"
	"github.com/weisyn/txledger/pkg/types"
)

// inspectFlags inspect 命令参数
type inspectFlags struct {
	statePath string
	networkID string
	chainID   string
	all       bool
	limit     int
	status    string
	from      string
}

func newInspectCmd() *cobra.Command {
	var flags inspectFlags

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "离线查看状态文件中的交易记录",
		Example: `  txledger inspect --state state.json --network 5 --chain 0x5
  txledger inspect --state state.json --all --status submitted`,
		RunE: func(cmd *cobra.Command, args []string) error {
			txs, err := runInspect(flags)
			if err != nil {
				return err
			}
			return renderTransactions(cmd.OutOrStdout(), txs)
		},
	}

	cmd.Flags().StringVar(&flags.statePath, "state", "", "状态文件路径（{\"transactions\": {...}}）")
	cmd.Flags().StringVar(&flags.networkID, "network", "1", "当前网络ID")
	cmd.Flags().StringVar(&flags.chainID, "chain", "0x1", "当前链ID")
	cmd.Flags().BoolVar(&flags.all, "all", false, "包含所有网络的记录")
	cmd.Flags().IntVar(&flags.limit, "limit", 0, "最多返回的 (from, nonce) 分组数，0 表示不限")
	cmd.Flags().StringVar(&flags.status, "status", "", "按状态过滤")
	cmd.Flags().StringVar(&flags.from, "from", "", "按发送方地址过滤")
	_ = cmd.MarkFlagRequired("state")
	return cmd
}

// runInspect 装入状态文件并执行查询
func runInspect(flags inspectFlags) ([]*types.TxMeta, error) {
	state, err := txledger.LoadStateFile(flags.statePath)
	if err != nil {
		return nil, err
	}

	ledger, err := txledger.NewLedger(txledger.Options{
		InitState:         state,
		GetNetwork:        func() string { return flags.networkID },
		GetCurrentChainID: func() string { return flags.chainID },
	})
	if err != nil {
		return nil, err
	}

	return ledger.ListTransactions(types.TxQuery{
		AllNetworks: flags.all,
		Status:      types.TxStatus(flags.status),
		From:        flags.from,
		Limit:       flags.limit,
	})
}

// renderTransactions 以表格输出记录
func renderTransactions(w io.Writer, txs []*types.TxMeta) error {
	if len(txs) == 0 {
		_, err := fmt.Fprintln(w, "没有匹配的交易记录")
		return err
	}

	data := pterm.TableData{{"ID", "STATUS", "CHAIN", "FROM", "NONCE", "HASH", "TIME", "HISTORY"}}
	for _, tx := range txs {
		var nonce string
		if tx.TxParams != nil {
			nonce = tx.TxParams.Nonce
		}
		data = append(data, []string{
			tx.ID,
			string(tx.Status),
			chainLabel(tx),
			tx.From(),
			nonce,
			tx.Hash,
			time.UnixMilli(tx.Time).UTC().Format(time.RFC3339),
			strconv.Itoa(len(tx.History)),
		})
	}

	return pterm.DefaultTable.WithHasHeader().WithData(data).WithWriter(w).Render()
}

// chainLabel 优先显示 chainId，缺失时显示 networkId
func chainLabel(tx *types.TxMeta) string {
	if tx.ChainID != "" {
		return tx.ChainID
	}
	return "net:" + tx.NetworkID
}
