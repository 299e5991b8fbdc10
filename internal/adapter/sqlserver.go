package adapter

import (
	"context"
	"database/sql"

	_ "github.com/denisenkom/go-mssqldb"

	"prophet/internal/model"
)

// SQLServerAdapter SQL Server 适配器。schema 为空时读取全部 schema。
type SQLServerAdapter struct {
	db     *sql.DB
	schema string
}

// NewSQLServerAdapter 创建 SQL Server 适配器
func NewSQLServerAdapter(ctx context.Context, connStr, schema string) (*SQLServerAdapter, error) {
	db, err := sql.Open("sqlserver", connStr)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLServerAdapter{db: db, schema: schema}, nil
}

// Storage SQL Server 没有专门的存储类型，按名称标记
func (a *SQLServerAdapter) Storage() model.DatabaseType { return model.UnknownDatabase("SQLServer") }

// Tables 获取表及列
func (a *SQLServerAdapter) Tables(ctx context.Context) ([]Table, error) {
	// 获取表列表
	tables, err := a.getTables(ctx)
	if err != nil {
		return nil, err
	}

	// 获取每个表的列信息
	for i := range tables {
		columns, err := a.getColumns(ctx, tables[i].Schema, tables[i].Name)
		if err != nil {
			return nil, err
		}
		tables[i].Columns = columns
	}
	return tables, nil
}

func (a *SQLServerAdapter) getTables(ctx context.Context) ([]Table, error) {
	query := `
		SELECT TABLE_SCHEMA, TABLE_NAME
		FROM INFORMATION_SCHEMA.TABLES
		WHERE TABLE_TYPE = 'BASE TABLE' AND (@p1 = '' OR TABLE_SCHEMA = @p1)
		ORDER BY TABLE_SCHEMA, TABLE_NAME
	`
	rows, err := a.db.QueryContext(ctx, query, a.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		var t Table
		if err := rows.Scan(&t.Schema, &t.Name); err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (a *SQLServerAdapter) getColumns(ctx context.Context, schema, table string) ([]Column, error) {
	query := `
		SELECT c.COLUMN_NAME, c.DATA_TYPE
		FROM INFORMATION_SCHEMA.COLUMNS c
		WHERE c.TABLE_SCHEMA = @p1 AND c.TABLE_NAME = @p2
		ORDER BY c.ORDINAL_POSITION
	`
	rows, err := a.db.QueryContext(ctx, query, schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []Column
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.DataType); err != nil {
			return nil, err
		}
		columns = append(columns, c)
	}
	return columns, rows.Err()
}

// ForeignKeys 获取外键约束
func (a *SQLServerAdapter) ForeignKeys(ctx context.Context) ([]ForeignKey, error) {
	query := `
		SELECT
			OBJECT_NAME(fk.parent_object_id) as from_table,
			COL_NAME(fkc.parent_object_id, fkc.parent_column_id) as from_column,
			OBJECT_NAME(fk.referenced_object_id) as to_table,
			COL_NAME(fkc.referenced_object_id, fkc.referenced_column_id) as to_column
		FROM sys.foreign_keys fk
		JOIN sys.foreign_key_columns fkc ON fk.object_id = fkc.constraint_object_id
		WHERE @p1 = '' OR OBJECT_SCHEMA_NAME(fk.parent_object_id) = @p1
		ORDER BY from_table, fkc.constraint_column_id
	`
	rows, err := a.db.QueryContext(ctx, query, a.schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKey
	for rows.Next() {
		var fk ForeignKey
		if err := rows.Scan(&fk.FromTable, &fk.FromColumn, &fk.ToTable, &fk.ToColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}

// Close 关闭连接
func (a *SQLServerAdapter) Close() error {
	return a.db.Close()
}
