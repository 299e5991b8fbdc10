package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "prophet",
		Short:        "微服务架构分析器",
		Long:         "根据抽取结果合并跨服务实体，生成实体类图和服务调用图",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newAnalyzeCmd(), newIntrospectCmd())
	return rootCmd
}
