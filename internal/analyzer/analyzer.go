// Package analyzer 分析流水线：构图、限界上下文合并、按服务过滤、渲染。
package analyzer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"prophet/internal/boundedcontext"
	"prophet/internal/graph"
	"prophet/internal/metrics"
	"prophet/internal/model"
	"prophet/internal/renderer"
)

// MicroserviceData 单个服务的分析结果
type MicroserviceData struct {
	Name          string `json:"name"`
	EntityDiagram string `json:"entity_diagram"`
}

// AppData 一次分析的完整结果
type AppData struct {
	Name                 string             `json:"name"`
	CommunicationDiagram string             `json:"communication_diagram"`
	EntityDiagram        string             `json:"entity_diagram"`
	Microservices        []MicroserviceData `json:"microservices"`

	// Dictionary 规范实体的 Markdown 数据字典
	Dictionary   string                   `json:"-"`
	EntityGraph  *graph.EntityGraph       `json:"-"`
	ServiceGraph *graph.MicroserviceGraph `json:"-"`
}

// GraphJSON 导出规范实体图和服务调用图
func (a *AppData) GraphJSON() ([]byte, error) {
	return json.MarshalIndent(struct {
		Entities *graph.EntityGraph       `json:"entities"`
		Services *graph.MicroserviceGraph `json:"services"`
	}{a.EntityGraph, a.ServiceGraph}, "", "  ")
}

// ProgressFunc 进度回调，percent 取值 0-100
type ProgressFunc func(step string, percent int)

// Option 分析器选项
type Option func(*Analyzer)

// WithLogger 指定 logger
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithWuPalmer 请求限界上下文服务使用 Wu-Palmer 相似度
func WithWuPalmer(enabled bool) Option {
	return func(a *Analyzer) { a.useWuPalmer = enabled }
}

// WithProgress 注册进度回调
func WithProgress(fn ProgressFunc) Option {
	return func(a *Analyzer) { a.progress = fn }
}

// Analyzer 分析流水线。reconciler 为 nil 时跳过限界上下文合并（离线模式）。
type Analyzer struct {
	reconciler  boundedcontext.Reconciler
	logger      *slog.Logger
	useWuPalmer bool
	progress    ProgressFunc
	mermaid     *renderer.MermaidRenderer
	markdown    *renderer.MarkdownRenderer
}

// New 创建分析器
func New(reconciler boundedcontext.Reconciler, opts ...Option) *Analyzer {
	a := &Analyzer{
		reconciler: reconciler,
		logger:     slog.Default(),
		mermaid:    renderer.NewMermaidRenderer(),
		markdown:   renderer.NewMarkdownRenderer(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze 执行一次完整分析。任何一步失败都直接返回错误，不产生部分结果。
func (a *Analyzer) Analyze(ctx context.Context, systemName string, services []model.Microservice) (app *AppData, err error) {
	done := metrics.TimeAnalysis()
	defer func() { done(err == nil) }()

	logger := a.logger.With("system", systemName)

	a.report("构建服务调用图", 10)
	serviceGraph, err := graph.BuildMicroserviceGraph(services)
	if err != nil {
		return nil, fmt.Errorf("构建服务调用图失败: %w", err)
	}
	for _, u := range serviceGraph.Unresolved {
		logger.Warn("unresolved call target", "source", u.Source, "target", u.Target, "call", u.Call.String())
	}

	a.report("合并限界上下文", 30)
	cat, err := a.canonicalize(ctx, systemName, services)
	if err != nil {
		logger.Error("reconciliation failed", "error", err)
		return nil, err
	}

	a.report("构建实体图", 60)
	entityGraph, err := graph.BuildEntityGraph(cat.Entities())
	if err != nil && !errors.Is(err, graph.ErrEmptyGraph) {
		return nil, fmt.Errorf("构建实体图失败: %w", err)
	}

	a.report("渲染图表", 80)
	app = &AppData{
		Name:                 systemName,
		CommunicationDiagram: a.mermaid.RenderMicroservices(serviceGraph),
		EntityDiagram:        a.mermaid.RenderEntities(entityGraph),
		Dictionary:           a.markdown.Render(systemName, entityGraph),
		EntityGraph:          entityGraph,
		ServiceGraph:         serviceGraph,
	}

	for _, svc := range groupByName(services) {
		view := serviceView(entityGraph, cat, svc.Entities)
		app.Microservices = append(app.Microservices, MicroserviceData{
			Name:          svc.Name,
			EntityDiagram: a.mermaid.RenderEntities(view),
		})
	}

	logger.Info("analysis complete",
		"services", serviceGraph.NodeCount(),
		"calls", serviceGraph.EdgeCount(),
		"entities", len(cat.entries))
	a.report("完成", 100)

	return app, nil
}

// canonicalize 把全部服务的实体批量发送一次，得到规范实体目录
func (a *Analyzer) canonicalize(ctx context.Context, systemName string, services []model.Microservice) (*catalog, error) {
	var all []model.Entity
	for _, svc := range services {
		all = append(all, svc.Entities...)
	}

	if a.reconciler == nil || len(all) == 0 {
		return localCatalog(all), nil
	}

	resp, err := a.reconciler.Reconcile(ctx, boundedcontext.NewRequest(systemName, all, a.useWuPalmer))
	if err != nil {
		return nil, fmt.Errorf("限界上下文合并失败: %w", err)
	}
	return mergedCatalog(resp.Entities), nil
}

// serviceView 从规范实体图中去掉该服务未引用的实体
func serviceView(g *graph.EntityGraph, cat *catalog, local []model.Entity) *graph.EntityGraph {
	if g == nil {
		return nil
	}

	keep := make(map[string]struct{}, len(local))
	for _, e := range local {
		keep[cat.Resolve(e)] = struct{}{}
	}

	return g.Retain(func(e model.Entity) bool {
		_, ok := keep[e.Name]
		return ok
	})
}

// groupByName 同名服务合并为一个，保持首次出现顺序
func groupByName(services []model.Microservice) []model.Microservice {
	index := make(map[string]int, len(services))
	var out []model.Microservice
	for _, svc := range services {
		if i, ok := index[svc.Name]; ok {
			out[i].Entities = append(out[i].Entities, svc.Entities...)
			continue
		}
		index[svc.Name] = len(out)
		svc.Entities = append([]model.Entity(nil), svc.Entities...)
		out = append(out, svc)
	}
	return out
}

func (a *Analyzer) report(step string, percent int) {
	if a.progress != nil {
		a.progress(step, percent)
	}
}
