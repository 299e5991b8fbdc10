package analyzer

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"prophet/internal/boundedcontext"
	"prophet/internal/graph"
	"prophet/internal/logging"
	"prophet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopServices(t *testing.T) []model.Microservice {
	t.Helper()
	get, err := model.HTTPCall("get")
	require.NoError(t, err)

	return []model.Microservice{
		{
			Name:     "accounts",
			Language: model.LanguageJava,
			Entities: []model.Entity{
				model.NewEntity("User", []model.Field{
					model.NewField("id", "int", false),
					model.NewField("name", "string", false),
				}, model.MySQL),
			},
		},
		{
			Name:     "billing",
			Language: model.LanguageGo,
			Entities: []model.Entity{
				model.NewEntity("Customer", []model.Field{
					model.NewField("id", "int", false),
					model.NewField("name", "string", false),
				}, model.MongoDB),
				model.NewEntity("Invoice", []model.Field{
					model.NewField("customer", "Customer", false),
					model.NewField("amount", "float", false),
				}, model.MongoDB),
			},
			Calls: []model.OutboundCall{
				{Target: "accounts", Call: get},
				{Target: "ghost", Call: model.RPCCall()},
			},
		},
		{Name: "audit", Language: model.LanguagePython},
	}
}

func mergedField(local, full, ty string, ref, collection bool) boundedcontext.MergedField {
	return boundedcontext.MergedField{
		Name:       boundedcontext.MergedName{Name: local, FullName: full},
		Type:       ty,
		Reference:  ref,
		Collection: collection,
	}
}

// collapsingReconciler 把 Customer 合并到 User
func collapsingReconciler(t *testing.T, calls *int) boundedcontext.Reconciler {
	return boundedcontext.ReconcilerFunc(func(ctx context.Context, req *boundedcontext.Request) (*boundedcontext.Response, error) {
		*calls++
		assert.True(t, req.UseWuPalmer)
		assert.Len(t, req.Context.Modules, 3)

		userFields := []boundedcontext.MergedField{
			mergedField("id", "id", "int", false, false),
			mergedField("name", "name", "string", false, false),
		}
		return &boundedcontext.Response{
			SystemName: req.Context.SystemName,
			Entities: []boundedcontext.MergedEntity{
				{EntityName: boundedcontext.MergedName{Name: "User", FullName: "User"}, Fields: userFields},
				{EntityName: boundedcontext.MergedName{Name: "Customer", FullName: "User"}, Fields: userFields},
				{EntityName: boundedcontext.MergedName{Name: "Invoice", FullName: "Invoice"}, Fields: []boundedcontext.MergedField{
					mergedField("customer", "customer", "User", true, false),
					mergedField("amount", "amount", "float", false, false),
				}},
			},
		}, nil
	})
}

const canonicalDiagram = `classDiagram
class User {
<<Unknown>>
+int id
+string name
}
class Invoice {
<<Unknown>>
+User customer
+float amount
}
Invoice "1" --> "1" User
`

const accountsDiagram = `classDiagram
class User {
<<Unknown>>
+int id
+string name
}
`

func TestAnalyzeReconciledEntities(t *testing.T) {
	calls := 0
	a := New(collapsingReconciler(t, &calls), WithWuPalmer(true), WithLogger(logging.Discard()))

	app, err := a.Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "reconciliation is batched into a single call")

	assert.Equal(t, "shop", app.Name)
	assert.Equal(t, canonicalDiagram, app.EntityDiagram)

	require.Len(t, app.Microservices, 3)
	assert.Equal(t, "accounts", app.Microservices[0].Name)
	assert.Equal(t, accountsDiagram, app.Microservices[0].EntityDiagram)
	assert.Equal(t, "billing", app.Microservices[1].Name)
	assert.Equal(t, canonicalDiagram, app.Microservices[1].EntityDiagram)
	assert.Equal(t, "classDiagram\n", app.Microservices[2].EntityDiagram)

	// 两个服务的视图引用同一个 User 节点
	require.Equal(t, 2, app.EntityGraph.NodeCount())
	_, found := app.EntityGraph.Find(func(e model.Entity) bool { return e.Name == "Customer" })
	assert.False(t, found)
}

func TestAnalyzeCommunicationDiagram(t *testing.T) {
	a := New(nil, WithLogger(logging.Discard()))

	app, err := a.Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)

	want := "graph TD\n" +
		"accounts -->|\"HTTP Verb: GET\"| billing\n" +
		"audit --> NA[\"N/A\"]\n"
	assert.Equal(t, want, app.CommunicationDiagram)
}

func TestAnalyzeOffline(t *testing.T) {
	a := New(nil, WithLogger(logging.Discard()))

	app, err := a.Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)

	assert.Equal(t, 3, app.EntityGraph.NodeCount())
	assert.Contains(t, app.EntityDiagram, "<<MySQL>>")
	assert.Contains(t, app.EntityDiagram, "Invoice \"1\" --> \"1\" Customer")
	assert.NotContains(t, app.Microservices[0].EntityDiagram, "Invoice")
	assert.Contains(t, app.Microservices[1].EntityDiagram, "class Customer")
	assert.Contains(t, app.Dictionary, "# shop 实体数据字典")
}

func TestAnalyzeReconcileFailure(t *testing.T) {
	failing := boundedcontext.ReconcilerFunc(func(ctx context.Context, req *boundedcontext.Request) (*boundedcontext.Response, error) {
		return nil, &boundedcontext.Error{Kind: boundedcontext.KindStatus, StatusCode: http.StatusBadGateway}
	})

	app, err := New(failing, WithLogger(logging.Discard())).Analyze(context.Background(), "shop", shopServices(t))
	require.Error(t, err)
	assert.Nil(t, app)
	assert.ErrorIs(t, err, boundedcontext.ErrStatus)
}

func TestAnalyzeMalformedResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{"systemName": "shop", "boundedContextEntities": [`)
	}))
	defer srv.Close()

	client := boundedcontext.NewHTTPClientWithEndpoint(srv.URL, srv.Client())
	app, err := New(client, WithLogger(logging.Discard())).Analyze(context.Background(), "shop", shopServices(t))
	assert.Nil(t, app)
	assert.ErrorIs(t, err, boundedcontext.ErrDecode)
}

func TestAnalyzeLogsUnresolvedCalls(t *testing.T) {
	var buf bytes.Buffer
	a := New(nil, WithLogger(logging.New(&buf, slog.LevelInfo)))

	_, err := a.Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "WARN:")
	assert.Contains(t, out, "unresolved call target")
	assert.Contains(t, out, `"target":"ghost"`)
}

func TestAnalyzeNoServices(t *testing.T) {
	_, err := New(nil, WithLogger(logging.Discard())).Analyze(context.Background(), "empty", nil)
	assert.ErrorIs(t, err, graph.ErrEmptyGraph)
}

func TestAnalyzeNoEntitiesSkipsReconciliation(t *testing.T) {
	calls := 0
	stub := boundedcontext.ReconcilerFunc(func(ctx context.Context, req *boundedcontext.Request) (*boundedcontext.Response, error) {
		calls++
		return &boundedcontext.Response{}, nil
	})

	app, err := New(stub, WithLogger(logging.Discard())).Analyze(context.Background(), "bare", []model.Microservice{{Name: "a"}, {Name: "b"}})
	require.NoError(t, err)
	assert.Zero(t, calls)
	assert.Equal(t, "classDiagram\n", app.EntityDiagram)
	assert.Nil(t, app.EntityGraph)
}

func TestAnalyzeProgress(t *testing.T) {
	var percents []int
	a := New(nil, WithLogger(logging.Discard()), WithProgress(func(step string, percent int) {
		assert.NotEmpty(t, step)
		percents = append(percents, percent)
	}))

	_, err := a.Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)

	require.NotEmpty(t, percents)
	assert.IsIncreasing(t, percents)
	assert.Equal(t, 100, percents[len(percents)-1])
}

func TestAnalyzeDeterministic(t *testing.T) {
	calls := 0
	a := New(collapsingReconciler(t, &calls), WithWuPalmer(true), WithLogger(logging.Discard()))

	first, err := a.Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)
	second, err := a.Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)

	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)
	secondJSON, err := json.Marshal(second)
	require.NoError(t, err)
	assert.Equal(t, string(firstJSON), string(secondJSON))
}

func TestAppDataJSON(t *testing.T) {
	app, err := New(nil, WithLogger(logging.Discard())).Analyze(context.Background(), "shop", shopServices(t))
	require.NoError(t, err)

	data, err := json.Marshal(app)
	require.NoError(t, err)

	var decoded map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Contains(t, decoded, "communication_diagram")
	assert.Contains(t, decoded, "entity_diagram")
	assert.Contains(t, decoded, "microservices")
	assert.NotContains(t, decoded, "Dictionary")

	graphs, err := app.GraphJSON()
	require.NoError(t, err)
	assert.Contains(t, string(graphs), `"entities"`)
	assert.Contains(t, string(graphs), `"services"`)
}

func TestGroupByName(t *testing.T) {
	a := model.NewEntity("A", nil, model.MySQL)
	b := model.NewEntity("B", nil, model.MySQL)

	grouped := groupByName([]model.Microservice{
		{Name: "x", Entities: []model.Entity{a}},
		{Name: "y"},
		{Name: "x", Entities: []model.Entity{b}},
	})

	require.Len(t, grouped, 2)
	assert.Equal(t, []model.Entity{a, b}, grouped[0].Entities)
	assert.Equal(t, "y", grouped[1].Name)
}
