package boundedcontext

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const responseSchemaURL = "file://response.schema.json"

//go:embed response.schema.json
var responseSchemaSource string

var (
	schemaOnce     sync.Once
	responseSchema *jsonschema.Schema
	schemaErr      error
)

var errTrailingData = errors.New("trailing data after response body")

func loadSchema() {
	c := jsonschema.NewCompiler()
	if err := c.AddResource(responseSchemaURL, strings.NewReader(responseSchemaSource)); err != nil {
		schemaErr = err
		return
	}
	responseSchema, schemaErr = c.Compile(responseSchemaURL)
}

// decodeResponse 解码并按内置 schema 校验响应体，只接受单个 JSON 值
func decodeResponse(body []byte) (*Response, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errTrailingData
	}

	schemaOnce.Do(loadSchema)
	if schemaErr != nil {
		return nil, schemaErr
	}
	if err := responseSchema.Validate(raw); err != nil {
		return nil, err
	}

	var out Response
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
