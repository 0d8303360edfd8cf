package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/weisyn/txledger/internal/app"
)

func newServeCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动账本服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []app.Option
			if configPath != "" {
				opts = append(opts, app.WithConfigFile(configPath))
			}

			application, err := app.Start(opts)
			if err != nil {
				return err
			}
			pterm.Success.Println("账本服务已启动，按 Ctrl+C 停止")
			if err := application.Wait(); err != nil {
				return err
			}
			pterm.Info.Println("账本服务已停止")
			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "JSON 配置文件路径（为空使用默认配置）")
	return cmd
}
