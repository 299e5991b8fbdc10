// Package server 分析流水线的 HTTP 接口：同步分析、异步任务和 WebSocket 进度推送。
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"prophet/internal/analyzer"
	"prophet/internal/boundedcontext"
	"prophet/internal/facts"
	"prophet/internal/graph"
	"prophet/internal/model"
)

const maxBodyBytes = 16 << 20

// AnalyzeRequest 请求体：系统名加抽取结果文档
type AnalyzeRequest struct {
	System      string `json:"system"`
	UseWuPalmer *bool  `json:"use_wu_palmer,omitempty"`
}

// Option 服务选项
type Option func(*Server)

// WithLogger 指定 logger
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithWuPalmer 请求未指定时的默认值
func WithWuPalmer(enabled bool) Option {
	return func(s *Server) { s.useWuPalmer = enabled }
}

// WithMetrics 挂载 /metrics
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithPushInterval WebSocket 推送间隔
func WithPushInterval(d time.Duration) Option {
	return func(s *Server) { s.pushInterval = d }
}

// Server HTTP 服务。reconciler 为 nil 时以离线模式分析。
type Server struct {
	reconciler   boundedcontext.Reconciler
	logger       *slog.Logger
	useWuPalmer  bool
	metrics      http.Handler
	pushInterval time.Duration
	tasks        *taskStore
	upgrader     websocket.Upgrader
}

// New 创建服务
func New(reconciler boundedcontext.Reconciler, opts ...Option) *Server {
	s := &Server{
		reconciler:   reconciler,
		logger:       slog.Default(),
		pushInterval: 500 * time.Millisecond,
		tasks:        newTaskStore(),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // 允许跨域
			},
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Routes 路由表
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "service": "prophet"})
	})

	r.Post("/analyze", s.handleAnalyzeSync)
	r.Post("/api/analyze", s.handleAnalyze)
	r.Get("/api/task/{id}", s.handleTaskStatus)
	r.Get("/api/ws", s.handleWebSocket)

	if s.metrics != nil {
		r.Handle("/metrics", s.metrics)
	}
	return r
}

// decodeRequest 读取请求体，校验抽取结果
func (s *Server) decodeRequest(r *http.Request) (AnalyzeRequest, []model.Microservice, error) {
	var req AnalyzeRequest

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return req, nil, err
	}
	if err := json.Unmarshal(body, &req); err != nil {
		return req, nil, fmt.Errorf("解析请求失败: %w", err)
	}
	if req.System == "" {
		return req, nil, errors.New("缺少 system")
	}

	services, err := facts.Decode(bytes.NewReader(body), facts.FormatJSON)
	if err != nil {
		return req, nil, err
	}
	return req, services, nil
}

func (s *Server) newAnalyzer(req AnalyzeRequest, progress analyzer.ProgressFunc) *analyzer.Analyzer {
	useWuPalmer := s.useWuPalmer
	if req.UseWuPalmer != nil {
		useWuPalmer = *req.UseWuPalmer
	}
	return analyzer.New(s.reconciler,
		analyzer.WithLogger(s.logger),
		analyzer.WithWuPalmer(useWuPalmer),
		analyzer.WithProgress(progress))
}

// handleAnalyzeSync 同步分析，直接返回 AppData
func (s *Server) handleAnalyzeSync(w http.ResponseWriter, r *http.Request) {
	req, services, err := s.decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	app, err := s.newAnalyzer(req, nil).Analyze(r.Context(), req.System, services)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// handleAnalyze 创建异步任务
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	req, services, err := s.decodeRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	task := s.tasks.create(req.System)
	go s.runAnalysis(task.ID, req, services)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"task_id": task.ID,
		"status":  string(task.Status),
	})
}

// runAnalysis 执行分析并更新任务
func (s *Server) runAnalysis(id string, req AnalyzeRequest, services []model.Microservice) {
	progress := func(step string, percent int) {
		s.tasks.update(id, func(t *Task) {
			t.Status = StatusRunning
			t.Progress = percent
			t.Message = step
		})
	}

	app, err := s.newAnalyzer(req, progress).Analyze(context.Background(), req.System, services)
	if err != nil {
		s.logger.Error("analysis task failed", "task_id", id, "error", err)
		s.tasks.update(id, func(t *Task) {
			t.Status = StatusFailed
			t.Message = "分析失败"
			t.Error = err.Error()
		})
		return
	}

	s.tasks.update(id, func(t *Task) {
		t.Status = StatusCompleted
		t.Progress = 100
		t.Message = "分析完成！"
		t.Result = app
	})
}

// handleTaskStatus 查询任务状态
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := s.tasks.get(chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, errors.New("task not found"))
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleWebSocket 持续推送任务状态，任务结束后关闭
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("task_id")
	if _, ok := s.tasks.get(taskID); !ok {
		writeError(w, http.StatusNotFound, errors.New("task not found"))
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(s.pushInterval)
	defer ticker.Stop()

	for {
		task, ok := s.tasks.get(taskID)
		if !ok {
			return
		}
		if err := conn.WriteJSON(task); err != nil {
			return
		}
		if task.Status.Terminal() {
			conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(task.Status)))
			return
		}

		select {
		case <-ticker.C:
		case <-r.Context().Done():
			return
		}
	}
}

// statusFor 限界上下文调用失败返回 502，抽取结果无效返回 400
func statusFor(err error) int {
	var bcErr *boundedcontext.Error
	switch {
	case errors.As(err, &bcErr):
		return http.StatusBadGateway
	case errors.Is(err, graph.ErrEmptyGraph):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
