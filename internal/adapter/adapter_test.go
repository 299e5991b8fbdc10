package adapter

import (
	"context"
	"errors"
	"testing"

	"prophet/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shopTables() []Table {
	return []Table{
		{Schema: "shop", Name: "customers", Columns: []Column{
			{Name: "id", DataType: "bigint"},
			{Name: "email", DataType: "varchar"},
		}},
		{Schema: "shop", Name: "orders", Columns: []Column{
			{Name: "id", DataType: "bigint"},
			{Name: "customer_id", DataType: "bigint"},
			{Name: "warehouse_id", DataType: "int"},
		}},
	}
}

func TestToEntities(t *testing.T) {
	fks := []ForeignKey{
		{FromTable: "orders", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"},
		{FromTable: "orders", FromColumn: "warehouse_id", ToTable: "warehouses", ToColumn: "id"},
	}

	entities := ToEntities(shopTables(), fks, model.MySQL)
	require.Len(t, entities, 2)

	assert.Equal(t, model.NewEntity("customers", []model.Field{
		model.NewField("id", "bigint", false),
		model.NewField("email", "varchar", false),
	}, model.MySQL), entities[0])

	orders := entities[1]
	assert.Equal(t, "orders", orders.Name)
	assert.Equal(t, "customers", orders.Fields[1].Type)
	// 被引用的表不在结果中时保留原类型
	assert.Equal(t, "int", orders.Fields[2].Type)
}

func TestToEntitiesEmpty(t *testing.T) {
	assert.Empty(t, ToEntities(nil, nil, model.MySQL))
}

type fakeSource struct {
	tables []Table
	fks    []ForeignKey
	err    error
}

func (f *fakeSource) Tables(context.Context) ([]Table, error)           { return f.tables, nil }
func (f *fakeSource) ForeignKeys(context.Context) ([]ForeignKey, error) { return f.fks, f.err }
func (f *fakeSource) Storage() model.DatabaseType                      { return model.UnknownDatabase("SQLServer") }
func (f *fakeSource) Close() error                                     { return nil }

func TestIntrospect(t *testing.T) {
	src := &fakeSource{
		tables: shopTables(),
		fks:    []ForeignKey{{FromTable: "orders", FromColumn: "customer_id", ToTable: "customers", ToColumn: "id"}},
	}

	entities, err := Introspect(context.Background(), src)
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "SQLServer", entities[0].Storage.String())

	src.err = errors.New("permission denied")
	_, err = Introspect(context.Background(), src)
	assert.ErrorContains(t, err, "permission denied")
}

func TestOpenUnsupported(t *testing.T) {
	_, err := Open(context.Background(), Kind("oracle"), "", "")
	assert.Error(t, err)
}

func TestParseKind(t *testing.T) {
	assert.Equal(t, KindMySQL, ParseKind("MySQL"))
	assert.Equal(t, KindMySQL, ParseKind(" mysql "))
	assert.Equal(t, KindSQLServer, ParseKind("SQLServer"))
	assert.Equal(t, Kind("oracle"), ParseKind("Oracle"))
}
