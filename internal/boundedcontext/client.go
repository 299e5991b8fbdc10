// Package boundedcontext 调用外部限界上下文服务，合并不同服务中表示同一概念的实体。
package boundedcontext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"prophet/internal/metrics"
	"prophet/internal/model"
)

const maxErrorBody = 512

// Reconciler 限界上下文服务接口
type Reconciler interface {
	Reconcile(ctx context.Context, req *Request) (*Response, error)
}

// ReconcilerFunc 以函数实现 Reconciler
type ReconcilerFunc func(ctx context.Context, req *Request) (*Response, error)

func (f ReconcilerFunc) Reconcile(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// Config 远程服务位置
type Config struct {
	Host    string
	Port    int
	Timeout time.Duration
}

// URL 服务根路径
func (c Config) URL() string {
	return fmt.Sprintf("http://%s:%d/", c.Host, c.Port)
}

// HTTPClient 通过 HTTP POST JSON 调用限界上下文服务
type HTTPClient struct {
	endpoint   string
	httpClient *http.Client
}

// NewHTTPClient 创建客户端
func NewHTTPClient(cfg Config) *HTTPClient {
	return &HTTPClient{
		endpoint:   cfg.URL(),
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// NewHTTPClientWithEndpoint 指定完整地址，测试时指向 httptest 服务
func NewHTTPClientWithEndpoint(endpoint string, httpClient *http.Client) *HTTPClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &HTTPClient{endpoint: endpoint, httpClient: httpClient}
}

// Reconcile 发送请求并解码响应。任何一步失败都返回 *Error，不做重试。
func (c *HTTPClient) Reconcile(ctx context.Context, req *Request) (resp *Response, err error) {
	done := metrics.TimeReconcile()
	defer func() { done(err == nil) }()

	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(jsonData))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Kind: KindTransport, Err: err}
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &Error{Kind: KindRead, Err: err}
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		if len(body) > maxErrorBody {
			body = body[:maxErrorBody]
		}
		return nil, &Error{Kind: KindStatus, StatusCode: httpResp.StatusCode, Body: string(body)}
	}

	out, err := decodeResponse(body)
	if err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	return out, nil
}

// Reconcile 便捷入口：构造请求、调用、转换为实体
func Reconcile(ctx context.Context, r Reconciler, systemName string, entities []model.Entity, useWuPalmer bool) ([]model.Entity, error) {
	resp, err := r.Reconcile(ctx, NewRequest(systemName, entities, useWuPalmer))
	if err != nil {
		return nil, err
	}
	return resp.ToEntities(), nil
}
