package model

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// CallKind 服务间调用类型
type CallKind int

const (
	CallHTTP CallKind = iota
	CallRPC
)

// Call 服务间调用：Http(method) | Rpc
type Call struct {
	Kind   CallKind
	Method string // 仅 HTTP 使用，大写动词
}

var ErrInvalidCall = errors.New("invalid microservice call")

var httpMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodConnect: {},
	http.MethodOptions: {},
	http.MethodTrace:   {},
}

// HTTPCall 创建 HTTP 调用，动词不在标准集合内时报错
func HTTPCall(method string) (Call, error) {
	m := strings.ToUpper(strings.TrimSpace(method))
	if _, ok := httpMethods[m]; !ok {
		return Call{}, fmt.Errorf("%w: bad HTTP method %q", ErrInvalidCall, method)
	}
	return Call{Kind: CallHTTP, Method: m}, nil
}

// RPCCall 创建 RPC 调用
func RPCCall() Call {
	return Call{Kind: CallRPC}
}

// ParseCall 由抽取记录的 type/method 推导调用类型。
// "HTTP" 必须带 method，"RPC" 不能带 method，其余组合均失败。
func ParseCall(ty string, method *string) (Call, error) {
	switch {
	case ty == "HTTP" && method != nil:
		return HTTPCall(*method)
	case ty == "RPC" && method == nil:
		return RPCCall(), nil
	default:
		return Call{}, fmt.Errorf("%w: bad microservice call type %q", ErrInvalidCall, ty)
	}
}

// Label 流程图边上的标签文本
func (c Call) Label() string {
	if c.Kind == CallRPC {
		return "RPC"
	}
	return "HTTP Verb: " + c.Method
}

func (c Call) String() string {
	if c.Kind == CallRPC {
		return "RPC"
	}
	return "HTTP " + c.Method
}

func (c Call) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// OutboundCall 服务发出的调用，Target 为被调服务名
type OutboundCall struct {
	Target string `json:"target"`
	Call   Call   `json:"call"`
}
