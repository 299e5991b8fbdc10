package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"prophet/internal/analyzer"
)

// TaskStatus 任务状态
type TaskStatus string

const (
	StatusPending   TaskStatus = "pending"
	StatusRunning   TaskStatus = "running"
	StatusCompleted TaskStatus = "completed"
	StatusFailed    TaskStatus = "failed"
)

// Terminal 任务已结束
func (s TaskStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusFailed
}

// Task 异步分析任务
type Task struct {
	ID        string            `json:"id"`
	System    string            `json:"system"`
	Status    TaskStatus        `json:"status"`
	Progress  int               `json:"progress"`
	Message   string            `json:"message"`
	Error     string            `json:"error,omitempty"`
	Result    *analyzer.AppData `json:"result,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// taskStore 任务表，读取时返回副本
type taskStore struct {
	mu    sync.RWMutex
	tasks map[string]*Task
}

func newTaskStore() *taskStore {
	return &taskStore{tasks: make(map[string]*Task)}
}

func (s *taskStore) create(system string) Task {
	now := time.Now()
	task := &Task{
		ID:        uuid.NewString(),
		System:    system,
		Status:    StatusPending,
		Message:   "任务已创建，等待执行...",
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.tasks[task.ID] = task
	s.mu.Unlock()

	return *task
}

func (s *taskStore) get(id string) (Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	task, ok := s.tasks[id]
	if !ok {
		return Task{}, false
	}
	return *task, true
}

func (s *taskStore) update(id string, fn func(*Task)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task, ok := s.tasks[id]; ok {
		fn(task)
		task.UpdatedAt = time.Now()
	}
}
