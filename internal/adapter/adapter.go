// Package adapter 从线上数据库结构生成服务的实体事实：表即实体，列即字段，外键列指向被引用的表。
package adapter

import (
	"context"
	"fmt"
	"strings"

	"prophet/internal/model"
)

// SchemaSource 数据库结构来源
type SchemaSource interface {
	// Tables 获取表及列
	Tables(ctx context.Context) ([]Table, error)

	// ForeignKeys 获取外键约束
	ForeignKeys(ctx context.Context) ([]ForeignKey, error)

	// Storage 实体的存储类型
	Storage() model.DatabaseType

	// Close 关闭连接
	Close() error
}

// Table 表信息
type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

// Column 列信息
type Column struct {
	Name     string
	DataType string
}

// ForeignKey 外键
type ForeignKey struct {
	FromTable  string
	FromColumn string
	ToTable    string
	ToColumn   string
}

// Kind 支持的数据库类型
type Kind string

const (
	KindMySQL     Kind = "mysql"
	KindSQLServer Kind = "sqlserver"
)

// ParseKind 规范化类型名，不区分大小写
func ParseKind(s string) Kind {
	return Kind(strings.ToLower(strings.TrimSpace(s)))
}

// Open 按类型打开数据源
func Open(ctx context.Context, kind Kind, connStr, schema string) (SchemaSource, error) {
	switch ParseKind(string(kind)) {
	case KindMySQL:
		return NewMySQLAdapter(ctx, connStr, schema)
	case KindSQLServer:
		return NewSQLServerAdapter(ctx, connStr, schema)
	default:
		return nil, fmt.Errorf("不支持的数据库类型: %s", kind)
	}
}

// Introspect 读取数据源并转换为实体
func Introspect(ctx context.Context, src SchemaSource) ([]model.Entity, error) {
	tables, err := src.Tables(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取表结构失败: %w", err)
	}
	fks, err := src.ForeignKeys(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取外键失败: %w", err)
	}
	return ToEntities(tables, fks, src.Storage()), nil
}

// ToEntities 表转换为实体。外键列的字段类型替换为被引用的表名，
// 指向未读取到的表时保留列类型。
func ToEntities(tables []Table, fks []ForeignKey, storage model.DatabaseType) []model.Entity {
	known := make(map[string]bool, len(tables))
	for _, t := range tables {
		known[t.Name] = true
	}

	refs := make(map[string]string, len(fks))
	for _, fk := range fks {
		if known[fk.ToTable] {
			refs[fk.FromTable+"."+fk.FromColumn] = fk.ToTable
		}
	}

	entities := make([]model.Entity, 0, len(tables))
	for _, t := range tables {
		fields := make([]model.Field, 0, len(t.Columns))
		for _, c := range t.Columns {
			ty := c.DataType
			if target, ok := refs[t.Name+"."+c.Name]; ok {
				ty = target
			}
			fields = append(fields, model.NewField(c.Name, ty, false))
		}
		entities = append(entities, model.NewEntity(t.Name, fields, storage))
	}
	return entities
}
