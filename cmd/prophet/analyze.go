package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"prophet/internal/analyzer"
	"prophet/internal/boundedcontext"
	"prophet/internal/config"
	"prophet/internal/facts"
	"prophet/internal/logging"
)

type analyzeOptions struct {
	factsPath string
	system    string
	host      string
	port      int
	timeout   time.Duration
	wuPalmer  bool
	offline   bool
	outputDir string
}

func newAnalyzeCmd() *cobra.Command {
	opts := &analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "分析抽取结果并生成图表",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			opts.applyDefaults(cmd, cfg)
			return runAnalyze(cmd, opts, cfg)
		},
	}

	cmd.Flags().StringVar(&opts.factsPath, "facts", "", "抽取结果文件 (.json/.yaml)")
	cmd.Flags().StringVar(&opts.system, "system", "", "系统名称")
	cmd.Flags().StringVar(&opts.host, "host", config.DefaultBoundedContextHost, "限界上下文服务主机")
	cmd.Flags().IntVar(&opts.port, "port", config.DefaultBoundedContextPort, "限界上下文服务端口")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", config.DefaultBoundedContextTimeout, "限界上下文调用超时")
	cmd.Flags().BoolVar(&opts.wuPalmer, "wu-palmer", false, "使用 Wu-Palmer 相似度")
	cmd.Flags().BoolVar(&opts.offline, "offline", false, "不调用限界上下文服务")
	cmd.Flags().StringVar(&opts.outputDir, "output", "./output", "输出目录")
	cmd.MarkFlagRequired("facts")
	cmd.MarkFlagRequired("system")

	return cmd
}

// applyDefaults 未显式指定的参数使用环境配置
func (o *analyzeOptions) applyDefaults(cmd *cobra.Command, cfg config.Config) {
	flags := cmd.Flags()
	if !flags.Changed("host") {
		o.host = cfg.BoundedContextHost
	}
	if !flags.Changed("port") {
		o.port = cfg.BoundedContextPort
	}
	if !flags.Changed("timeout") {
		o.timeout = cfg.BoundedContextTimeout
	}
	if !flags.Changed("wu-palmer") {
		o.wuPalmer = cfg.UseWuPalmer
	}
}

func runAnalyze(cmd *cobra.Command, opts *analyzeOptions, cfg config.Config) error {
	out := cmd.OutOrStdout()
	logger := logging.New(cmd.ErrOrStderr(), logging.ParseLevel(cfg.LogLevel))

	fmt.Fprintln(out, "🔍 读取抽取结果...")
	services, err := facts.Load(opts.factsPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "✓ 发现 %d 个服务\n", len(services))

	var reconciler boundedcontext.Reconciler
	if opts.offline {
		fmt.Fprintln(out, "⚠️  离线模式，跳过限界上下文合并")
	} else {
		bc := boundedcontext.Config{Host: opts.host, Port: opts.port, Timeout: opts.timeout}
		fmt.Fprintf(out, "🔗 限界上下文服务: %s\n", bc.URL())
		reconciler = boundedcontext.NewHTTPClient(bc)
	}

	a := analyzer.New(reconciler,
		analyzer.WithLogger(logger),
		analyzer.WithWuPalmer(opts.wuPalmer),
		analyzer.WithProgress(func(step string, percent int) {
			fmt.Fprintf(out, "  [%3d%%] %s\n", percent, step)
		}))

	app, err := a.Analyze(cmd.Context(), opts.system, services)
	if err != nil {
		return err
	}

	fmt.Fprintln(out, "\n📝 生成输出文件...")
	written, err := writeOutputs(opts.outputDir, app)
	if err != nil {
		return err
	}
	for _, path := range written {
		fmt.Fprintf(out, "✓ %s\n", path)
	}

	fmt.Fprintln(out, "\n✅ 分析完成！")
	return nil
}

// writeOutputs 写出全部结果文件，返回写入的路径
func writeOutputs(dir string, app *analyzer.AppData) ([]string, error) {
	if err := os.MkdirAll(filepath.Join(dir, "services"), 0755); err != nil {
		return nil, err
	}

	appJSON, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return nil, err
	}
	graphJSON, err := app.GraphJSON()
	if err != nil {
		return nil, err
	}

	files := []struct {
		name    string
		content []byte
	}{
		{"communication.mmd", []byte(app.CommunicationDiagram)},
		{"entities.mmd", []byte(app.EntityDiagram)},
		{"dict.md", []byte(app.Dictionary)},
		{"app.json", appJSON},
		{"graph.json", graphJSON},
	}
	for _, ms := range app.Microservices {
		files = append(files, struct {
			name    string
			content []byte
		}{filepath.Join("services", safeFileName(ms.Name)+".mmd"), []byte(ms.EntityDiagram)})
	}

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.WriteFile(path, f.content, 0644); err != nil {
			return written, err
		}
		written = append(written, path)
	}
	return written, nil
}

// safeFileName 服务名中的路径分隔符等字符替换为下划线
func safeFileName(name string) string {
	r := strings.NewReplacer("/", "_", "\\", "_", ":", "_", "..", "_")
	if s := r.Replace(strings.TrimSpace(name)); s != "" {
		return s
	}
	return "_"
}
