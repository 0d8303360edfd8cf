package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// rootCmd 根命令
var rootCmd = &cobra.Command{
	Use:   "txledger",
	Short: "交易账本服务",
	Long: `txledger - 钱包侧交易生命周期账本

  serve    启动账本服务（HTTP 查询、WebSocket 状态推送、/metrics）
  inspect  离线查看状态文件中的交易记录
  version  显示版本信息`,
	SilenceUsage: true,
}

// Execute 执行根命令
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newServeCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newVersionCmd())
}
