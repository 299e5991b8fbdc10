package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"prophet/internal/adapter"
	"prophet/internal/facts"
	"prophet/internal/model"
)

type introspectOptions struct {
	dbType   string
	connStr  string
	schema   string
	service  string
	language string
	output   string
}

func newIntrospectCmd() *cobra.Command {
	opts := &introspectOptions{}

	cmd := &cobra.Command{
		Use:   "introspect",
		Short: "读取数据库结构，生成单个服务的抽取结果",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIntrospect(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.dbType, "type", "mysql", "数据库类型 (mysql/sqlserver)")
	cmd.Flags().StringVar(&opts.connStr, "conn", "", "连接字符串")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "数据库 schema (MySQL 必需)")
	cmd.Flags().StringVar(&opts.service, "service", "", "服务名称")
	cmd.Flags().StringVar(&opts.language, "language", "unknown", "服务源码语言")
	cmd.Flags().StringVar(&opts.output, "output", "", "输出文件 (.yaml/.json)，默认标准输出")
	cmd.MarkFlagRequired("conn")
	cmd.MarkFlagRequired("service")

	return cmd
}

func runIntrospect(cmd *cobra.Command, opts *introspectOptions) error {
	kind := adapter.ParseKind(opts.dbType)
	if kind == adapter.KindMySQL && opts.schema == "" {
		return fmt.Errorf("MySQL 需要指定 --schema 参数")
	}

	src, err := adapter.Open(cmd.Context(), kind, opts.connStr, opts.schema)
	if err != nil {
		return fmt.Errorf("连接数据库失败: %w", err)
	}
	defer src.Close()

	entities, err := adapter.Introspect(cmd.Context(), src)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "✓ 发现 %d 个表\n", len(entities))

	svc := model.Microservice{
		Name:     opts.service,
		Language: model.ParseLanguage(opts.language),
		Entities: entities,
	}
	return writeFacts(cmd.OutOrStdout(), opts.output, []model.Microservice{svc})
}

// writeFacts 写出抽取结果文档，path 为空时以 YAML 写到 w
func writeFacts(w io.Writer, path string, services []model.Microservice) error {
	doc := facts.FromMicroservices(services)
	if path == "" {
		return facts.Encode(w, doc, facts.FormatYAML)
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := facts.Encode(f, doc, facts.FormatFromPath(path)); err != nil {
		return err
	}
	return f.Close()
}
