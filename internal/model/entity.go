package model

import (
	"strconv"
	"strings"
)

// DatabaseKind 存储类型标签
type DatabaseKind int

const (
	DatabaseUnknown DatabaseKind = iota
	DatabaseMySQL
	DatabaseMongoDB
)

// DatabaseType 实体的存储后端：MySQL | MongoDB | Unknown(name)
type DatabaseType struct {
	Kind DatabaseKind
	Name string // 仅 Unknown 使用
}

var (
	MySQL   = DatabaseType{Kind: DatabaseMySQL}
	MongoDB = DatabaseType{Kind: DatabaseMongoDB}
)

// UnknownDatabase 构造未知存储类型
func UnknownDatabase(name string) DatabaseType {
	return DatabaseType{Kind: DatabaseUnknown, Name: name}
}

// ParseDatabaseType 解析抽取阶段给出的存储类型字符串
func ParseDatabaseType(s string) DatabaseType {
	switch s {
	case "MySQL":
		return MySQL
	case "MongoDB":
		return MongoDB
	default:
		return UnknownDatabase(s)
	}
}

// String 返回原始名称，MySQL/MongoDB 固定写法
func (d DatabaseType) String() string {
	switch d.Kind {
	case DatabaseMySQL:
		return "MySQL"
	case DatabaseMongoDB:
		return "MongoDB"
	default:
		return d.Name
	}
}

func (d DatabaseType) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *DatabaseType) UnmarshalText(b []byte) error {
	*d = ParseDatabaseType(string(b))
	return nil
}

// Field 实体字段
type Field struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	IsCollection bool   `json:"is_collection"`
}

// NewField 创建字段
func NewField(name, ty string, isCollection bool) Field {
	return Field{Name: name, Type: ty, IsCollection: isCollection}
}

// Entity 抽取出的实体。按值比较（名称 + 字段 + 存储类型）。
type Entity struct {
	Name    string       `json:"name"`
	Fields  []Field      `json:"fields"`
	Storage DatabaseType `json:"storage"`
}

// NewEntity 创建实体，字段切片会被复制
func NewEntity(name string, fields []Field, storage DatabaseType) Entity {
	fs := make([]Field, len(fields))
	copy(fs, fields)
	return Entity{Name: name, Fields: fs, Storage: storage}
}

// Equal 值相等
func (e Entity) Equal(other Entity) bool {
	if e.Name != other.Name || e.Storage != other.Storage || len(e.Fields) != len(other.Fields) {
		return false
	}
	for i := range e.Fields {
		if e.Fields[i] != other.Fields[i] {
			return false
		}
	}
	return true
}

// Key 值的规范编码，可作为 map 键（集合成员判断）
func (e Entity) Key() string {
	var sb strings.Builder
	sb.WriteString(strconv.Quote(e.Name))
	sb.WriteByte('|')
	sb.WriteString(strconv.Itoa(int(e.Storage.Kind)))
	sb.WriteByte(':')
	sb.WriteString(strconv.Quote(e.Storage.Name))
	for _, f := range e.Fields {
		sb.WriteByte('|')
		sb.WriteString(strconv.Quote(f.Name))
		sb.WriteByte(' ')
		sb.WriteString(strconv.Quote(f.Type))
		if f.IsCollection {
			sb.WriteString(" []")
		}
	}
	return sb.String()
}

// EntitySet 按值去重的实体集合
type EntitySet map[string]struct{}

// NewEntitySet 创建集合
func NewEntitySet(entities ...Entity) EntitySet {
	set := make(EntitySet, len(entities))
	for _, e := range entities {
		set.Add(e)
	}
	return set
}

func (s EntitySet) Add(e Entity) { s[e.Key()] = struct{}{} }

func (s EntitySet) Contains(e Entity) bool {
	_, ok := s[e.Key()]
	return ok
}
