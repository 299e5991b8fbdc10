package renderer

import (
	"fmt"
	"strings"

	"prophet/internal/graph"
)

// MarkdownRenderer 实体数据字典渲染器
type MarkdownRenderer struct{}

// NewMarkdownRenderer 创建渲染器
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render 渲染为 Markdown 格式，实体按节点插入顺序输出
func (m *MarkdownRenderer) Render(title string, g *graph.EntityGraph) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s 实体数据字典\n\n", title))
	if g == nil || g.NodeCount() == 0 {
		sb.WriteString("_未发现实体_\n")
		return sb.String()
	}

	names := make(map[string]bool)
	for _, n := range g.Nodes() {
		names[n.Name] = true
	}

	for i, entity := range g.Nodes() {
		sb.WriteString(fmt.Sprintf("## %s\n\n", entity.Name))
		sb.WriteString(fmt.Sprintf("存储: %s\n\n", storageAnnotation(entity.Storage)))

		if len(entity.Fields) > 0 {
			sb.WriteString("| 字段 | 类型 | 集合 | 引用实体 |\n")
			sb.WriteString("|------|------|------|----------|\n")
			for _, f := range entity.Fields {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
					f.Name, escapeCell(fieldType(f)), yesNo(f.IsCollection), yesNo(names[f.Type])))
			}
			sb.WriteString("\n")
		}

		m.renderRelations(&sb, g, graph.NodeIndex(i))
	}

	return sb.String()
}

// renderRelations 渲染实体关系
func (m *MarkdownRenderer) renderRelations(sb *strings.Builder, g *graph.EntityGraph, i graph.NodeIndex) {
	var lines []string
	for _, edge := range g.Edges() {
		if edge.From != i && edge.To != i {
			continue
		}
		lines = append(lines, fmt.Sprintf("- `%s` → `%s` (1:%s)\n",
			g.Node(edge.From).Name, g.Node(edge.To).Name, edge.Weight))
	}
	if len(lines) == 0 {
		return
	}

	sb.WriteString("### 关系\n\n")
	for _, l := range lines {
		sb.WriteString(l)
	}
	sb.WriteString("\n")
}

func yesNo(b bool) string {
	if b {
		return "✓"
	}
	return ""
}

func escapeCell(s string) string {
	return strings.NewReplacer("<", "&lt;", ">", "&gt;", "|", "\\|").Replace(s)
}
