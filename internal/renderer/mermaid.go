package renderer

import (
	"fmt"
	"strings"

	"prophet/internal/graph"
	"prophet/internal/model"
)

const (
	classDiagramHeader = "classDiagram"
	flowchartHeader    = "graph TD"

	// orphanSentinelID 孤立服务连接到的占位节点 ID，与服务重名时追加下划线
	orphanSentinelID    = "NA"
	orphanSentinelLabel = `["N/A"]`
)

// MermaidRenderer Mermaid 图渲染器，纯函数，不会失败
type MermaidRenderer struct{}

// NewMermaidRenderer 创建渲染器
func NewMermaidRenderer() *MermaidRenderer {
	return &MermaidRenderer{}
}

// RenderEntities 渲染实体类图。
// 按节点插入顺序输出类块，每个类块后紧跟该节点出发的关系线。
func (m *MermaidRenderer) RenderEntities(g *graph.EntityGraph) string {
	var sb strings.Builder
	sb.WriteString(classDiagramHeader + "\n")
	if g == nil {
		return sb.String()
	}

	for i, entity := range g.Nodes() {
		writeClass(&sb, entity)
		for _, edge := range g.EdgesFrom(graph.NodeIndex(i)) {
			sb.WriteString(fmt.Sprintf("%s \"1\" --> \"%s\" %s\n",
				entity.Name, edge.Weight, g.Node(edge.To).Name))
		}
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, entity model.Entity) {
	sb.WriteString(fmt.Sprintf("class %s {\n", entity.Name))
	sb.WriteString(fmt.Sprintf("<<%s>>\n", storageAnnotation(entity.Storage)))
	for _, f := range entity.Fields {
		sb.WriteString(fmt.Sprintf("+%s %s\n", fieldType(f), f.Name))
	}
	sb.WriteString("}\n")
}

func fieldType(f model.Field) string {
	if f.IsCollection {
		return "List<" + f.Type + ">"
	}
	return f.Type
}

func storageAnnotation(d model.DatabaseType) string {
	if s := d.String(); s != "" {
		return s
	}
	return "Unknown"
}

// RenderMicroservices 渲染服务调用流程图。
// 每条调用输出 `被调方 -->|"标签"| 调用方`，之后按节点顺序输出孤立服务。
func (m *MermaidRenderer) RenderMicroservices(g *graph.MicroserviceGraph) string {
	var sb strings.Builder
	sb.WriteString(flowchartHeader + "\n")
	if g == nil {
		return sb.String()
	}

	for _, edge := range g.Edges() {
		sb.WriteString(fmt.Sprintf("%s -->|\"%s\"| %s\n",
			g.Node(edge.To).Name, edge.Weight.Label(), g.Node(edge.From).Name))
	}

	orphans := g.Orphans()
	if len(orphans) == 0 {
		return sb.String()
	}
	sentinel := sentinelID(g) + orphanSentinelLabel
	for _, ms := range orphans {
		sb.WriteString(fmt.Sprintf("%s --> %s\n", ms.Name, sentinel))
	}

	return sb.String()
}

// sentinelID 返回不与任何服务名冲突的占位节点 ID
func sentinelID(g *graph.MicroserviceGraph) string {
	names := make(map[string]bool, g.NodeCount())
	for _, ms := range g.Nodes() {
		names[ms.Name] = true
	}
	id := orphanSentinelID
	for names[id] {
		id += "_"
	}
	return id
}
