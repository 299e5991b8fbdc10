package boundedcontext

import "prophet/internal/model"

// Request 发往限界上下文服务的请求
type Request struct {
	Context     System `json:"context"`
	UseWuPalmer bool   `json:"useWuPalmer"`
}

// System 系统及其模块
type System struct {
	SystemName string   `json:"systemName"`
	Modules    []Module `json:"modules"`
}

// Module 每个实体单独成为一个模块，模块名即实体名
type Module struct {
	Name     string   `json:"name"`
	Entities []Entity `json:"entities"`
}

type Entity struct {
	EntityName string  `json:"entityName"`
	Fields     []Field `json:"fields"`
}

type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NewRequest 由全部实体构造请求，一个实体一个模块
func NewRequest(systemName string, entities []model.Entity, useWuPalmer bool) *Request {
	modules := make([]Module, 0, len(entities))
	for _, e := range entities {
		fields := make([]Field, 0, len(e.Fields))
		for _, f := range e.Fields {
			fields = append(fields, Field{Name: f.Name, Type: f.Type})
		}
		modules = append(modules, Module{
			Name:     e.Name,
			Entities: []Entity{{EntityName: e.Name, Fields: fields}},
		})
	}
	return &Request{
		Context:     System{SystemName: systemName, Modules: modules},
		UseWuPalmer: useWuPalmer,
	}
}

// Response 合并后的实体集合
type Response struct {
	SystemName string         `json:"systemName"`
	Entities   []MergedEntity `json:"boundedContextEntities"`
}

// MergedName 本地名与规范全名
type MergedName struct {
	Name     string `json:"name"`
	FullName string `json:"fullName"`
}

type MergedEntity struct {
	EntityName MergedName    `json:"entityName"`
	Fields     []MergedField `json:"fields"`
}

type MergedField struct {
	Name       MergedName `json:"name"`
	Type       string     `json:"type"`
	Reference  bool       `json:"reference"`
	Collection bool       `json:"collection"`
}

// LocalName 合并前的本地实体名
func (m MergedEntity) LocalName() string { return m.EntityName.Name }

// FullName 规范全名
func (m MergedEntity) FullName() string { return m.EntityName.FullName }

// Entity 转换为事实模型：只保留全名，存储类型未知
func (m MergedEntity) Entity() model.Entity {
	fields := make([]model.Field, 0, len(m.Fields))
	for _, f := range m.Fields {
		fields = append(fields, model.NewField(f.Name.FullName, f.Type, f.Collection))
	}
	return model.NewEntity(m.EntityName.FullName, fields, model.UnknownDatabase(""))
}

// ToEntities 转换全部合并实体，保持响应顺序
func (r *Response) ToEntities() []model.Entity {
	out := make([]model.Entity, 0, len(r.Entities))
	for _, m := range r.Entities {
		out = append(out, m.Entity())
	}
	return out
}
