package renderer

import (
	"testing"

	"prophet/internal/graph"
	"prophet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const entityMermaid = `classDiagram
class EntityOne {
<<MySQL>>
+List<EntityTwo> f1
}
EntityOne "1" --> "*" EntityTwo
class EntityTwo {
<<MySQL>>
+int x
+EntityOne other
}
EntityTwo "1" --> "1" EntityOne
`

func entityGraph(t *testing.T) *graph.EntityGraph {
	t.Helper()
	g, err := graph.BuildEntityGraph([]model.Entity{
		model.NewEntity("EntityOne", []model.Field{
			model.NewField("f1", "EntityTwo", true),
		}, model.MySQL),
		model.NewEntity("EntityTwo", []model.Field{
			model.NewField("x", "int", false),
			model.NewField("other", "EntityOne", false),
		}, model.MySQL),
	})
	require.NoError(t, err)
	return g
}

func TestRenderEntities(t *testing.T) {
	m := NewMermaidRenderer()
	assert.Equal(t, entityMermaid, m.RenderEntities(entityGraph(t)))
}

func TestRenderEntitiesDeterministic(t *testing.T) {
	m := NewMermaidRenderer()
	g := entityGraph(t)

	first := m.RenderEntities(g)
	assert.Equal(t, first, m.RenderEntities(g))
	// 同一输入重新构图结果一致
	assert.Equal(t, first, m.RenderEntities(entityGraph(t)))
}

func TestRenderEntitiesStorageAnnotations(t *testing.T) {
	g, err := graph.BuildEntityGraph([]model.Entity{
		model.NewEntity("Doc", nil, model.MongoDB),
		model.NewEntity("Cache", nil, model.UnknownDatabase("Redis")),
		model.NewEntity("Merged", nil, model.UnknownDatabase("")),
	})
	require.NoError(t, err)

	want := `classDiagram
class Doc {
<<MongoDB>>
}
class Cache {
<<Redis>>
}
class Merged {
<<Unknown>>
}
`
	assert.Equal(t, want, NewMermaidRenderer().RenderEntities(g))
}

func TestRenderEntitiesEmpty(t *testing.T) {
	g := entityGraph(t).FilterEntities(entityGraph(t).Nodes())
	assert.Equal(t, "classDiagram\n", NewMermaidRenderer().RenderEntities(g))
	assert.Equal(t, "classDiagram\n", NewMermaidRenderer().RenderEntities(nil))
}

func TestRenderMicroservices(t *testing.T) {
	get, err := model.HTTPCall("GET")
	require.NoError(t, err)

	g, err := graph.BuildMicroserviceGraph([]model.Microservice{
		{Name: "A", Calls: []model.OutboundCall{{Target: "B", Call: get}}},
		{Name: "B", Calls: []model.OutboundCall{{Target: "D", Call: model.RPCCall()}}},
		{Name: "C"},
		{Name: "D"},
	})
	require.NoError(t, err)

	want := `graph TD
B -->|"HTTP Verb: GET"| A
D -->|"RPC"| B
C --> NA["N/A"]
`
	assert.Equal(t, want, NewMermaidRenderer().RenderMicroservices(g))
}

func TestRenderMicroservicesAllOrphans(t *testing.T) {
	g, err := graph.BuildMicroserviceGraph([]model.Microservice{{Name: "solo"}, {Name: "other"}})
	require.NoError(t, err)

	want := "graph TD\nsolo --> NA[\"N/A\"]\nother --> NA[\"N/A\"]\n"
	assert.Equal(t, want, NewMermaidRenderer().RenderMicroservices(g))
	assert.Equal(t, "graph TD\n", NewMermaidRenderer().RenderMicroservices(nil))
}

func TestMarkdownRender(t *testing.T) {
	out := NewMarkdownRenderer().Render("shop", entityGraph(t))

	assert.Contains(t, out, "# shop 实体数据字典")
	assert.Contains(t, out, "## EntityOne")
	assert.Contains(t, out, "存储: MySQL")
	assert.Contains(t, out, "| f1 | List&lt;EntityTwo&gt; | ✓ | ✓ |")
	assert.Contains(t, out, "| x | int |  |  |")
	assert.Contains(t, out, "- `EntityOne` → `EntityTwo` (1:*)")
	assert.Contains(t, out, "- `EntityTwo` → `EntityOne` (1:1)")
}

func TestMarkdownRenderEmpty(t *testing.T) {
	out := NewMarkdownRenderer().Render("shop", nil)
	assert.Contains(t, out, "_未发现实体_")
}

func TestRenderMicroservicesSentinelAvoidsServiceNames(t *testing.T) {
	g, err := graph.BuildMicroserviceGraph([]model.Microservice{
		{Name: "NA"},
		{Name: "NA_"},
		{Name: "billing", Calls: []model.OutboundCall{{Target: "NA", Call: model.RPCCall()}}},
		{Name: "solo"},
	})
	require.NoError(t, err)

	want := `graph TD
NA -->|"RPC"| billing
NA_ --> NA__["N/A"]
solo --> NA__["N/A"]
`
	assert.Equal(t, want, NewMermaidRenderer().RenderMicroservices(g))
}
