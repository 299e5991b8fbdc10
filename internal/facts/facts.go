// Package facts 解码抽取阶段的输出（JSON 或 YAML）为事实模型。
package facts

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"prophet/internal/model"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"
)

// Format 输入格式
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const schemaURL = "file://facts.schema.json"

//go:embed schema.json
var schemaSource string

var (
	once    sync.Once
	schema  *jsonschema.Schema
	loadErr error
)

func load() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(schemaURL, strings.NewReader(schemaSource)); err != nil {
		loadErr = err
		return
	}
	schema, loadErr = c.Compile(schemaURL)
}

// Document 抽取结果文档
type Document struct {
	Services []ServiceRecord `json:"services" yaml:"services"`
}

// ServiceRecord 单个服务
type ServiceRecord struct {
	Name     string         `json:"name" yaml:"name"`
	Language string         `json:"language,omitempty" yaml:"language,omitempty"`
	Entities []EntityRecord `json:"entities,omitempty" yaml:"entities,omitempty"`
	Calls    []CallRecord   `json:"calls,omitempty" yaml:"calls,omitempty"`
}

// EntityRecord 实体，Type 为存储类型
type EntityRecord struct {
	Name   string        `json:"name" yaml:"name"`
	Type   string        `json:"type,omitempty" yaml:"type,omitempty"`
	Fields []FieldRecord `json:"fields,omitempty" yaml:"fields,omitempty"`
}

type FieldRecord struct {
	Name       string `json:"name" yaml:"name"`
	Type       string `json:"type" yaml:"type"`
	Collection bool   `json:"collection,omitempty" yaml:"collection,omitempty"`
}

// CallRecord 出站调用，Name 为被调服务名
type CallRecord struct {
	Name   string  `json:"name" yaml:"name"`
	Type   string  `json:"type" yaml:"type"`
	Method *string `json:"method,omitempty" yaml:"method,omitempty"`
}

// FormatFromPath 按扩展名判断格式，默认 JSON
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Load 读取文件并解码为服务列表
func Load(path string) ([]model.Microservice, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	services, err := Decode(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return services, nil
}

// Decode 校验并解码文档
func Decode(r io.Reader, format Format) ([]model.Microservice, error) {
	doc, err := DecodeDocument(r, format)
	if err != nil {
		return nil, err
	}
	return doc.Microservices()
}

// DecodeDocument 校验并解码为原始记录
func DecodeDocument(r io.Reader, format Format) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	if format == FormatYAML {
		data, err = yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("解析 YAML 失败: %w", err)
		}
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	if err := Validate(raw); err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("解析 JSON 失败: %w", err)
	}
	return &doc, nil
}

// Validate 按内置 schema 校验已解码的 JSON 值
func Validate(v interface{}) error {
	once.Do(load)
	if loadErr != nil {
		return loadErr
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("抽取结果格式错误: %w", err)
	}
	return nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}

// Microservices 转换为事实模型。调用类型非法时整体失败。
func (d *Document) Microservices() ([]model.Microservice, error) {
	services := make([]model.Microservice, 0, len(d.Services))
	for _, s := range d.Services {
		ms := model.Microservice{
			Name:     s.Name,
			Language: model.ParseLanguage(s.Language),
		}
		for _, e := range s.Entities {
			ms.Entities = append(ms.Entities, e.Entity())
		}
		for _, c := range s.Calls {
			call, err := model.ParseCall(c.Type, c.Method)
			if err != nil {
				return nil, fmt.Errorf("service %s: call to %s: %w", s.Name, c.Name, err)
			}
			ms.Calls = append(ms.Calls, model.OutboundCall{Target: c.Name, Call: call})
		}
		services = append(services, ms)
	}
	return services, nil
}

// Entity 转换为事实模型实体
func (e EntityRecord) Entity() model.Entity {
	fields := make([]model.Field, 0, len(e.Fields))
	for _, f := range e.Fields {
		fields = append(fields, model.NewField(f.Name, f.Type, f.Collection))
	}
	return model.NewEntity(e.Name, fields, model.ParseDatabaseType(e.Type))
}

// FromMicroservices 由事实模型生成文档
func FromMicroservices(services []model.Microservice) *Document {
	doc := &Document{Services: make([]ServiceRecord, 0, len(services))}
	for _, ms := range services {
		rec := ServiceRecord{Name: ms.Name, Language: string(ms.Language)}
		for _, e := range ms.Entities {
			er := EntityRecord{Name: e.Name, Type: e.Storage.String()}
			for _, f := range e.Fields {
				er.Fields = append(er.Fields, FieldRecord{Name: f.Name, Type: f.Type, Collection: f.IsCollection})
			}
			rec.Entities = append(rec.Entities, er)
		}
		for _, c := range ms.Calls {
			cr := CallRecord{Name: c.Target, Type: "RPC"}
			if c.Call.Kind == model.CallHTTP {
				method := c.Call.Method
				cr.Type = "HTTP"
				cr.Method = &method
			}
			rec.Calls = append(rec.Calls, cr)
		}
		doc.Services = append(doc.Services, rec)
	}
	return doc
}

// Encode 写出文档
func Encode(w io.Writer, doc *Document, format Format) error {
	if format == FormatYAML {
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}
