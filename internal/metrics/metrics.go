// Package metrics 指标埋点，默认不记录，可切换为 Prometheus。
package metrics

import (
	"sync"
	"time"
)

// Recorder 指标记录接口
type Recorder interface {
	IncReconcileTotal(success bool)
	ObserveReconcileSeconds(success bool, seconds float64)
	IncAnalysisTotal(success bool)
	ObserveAnalysisSeconds(success bool, seconds float64)
}

type noopRecorder struct{}

func (noopRecorder) IncReconcileTotal(bool)                {}
func (noopRecorder) ObserveReconcileSeconds(bool, float64) {}
func (noopRecorder) IncAnalysisTotal(bool)                 {}
func (noopRecorder) ObserveAnalysisSeconds(bool, float64)  {}

var (
	recMu    sync.RWMutex
	recorder Recorder = noopRecorder{}
)

// Default 当前记录器
func Default() Recorder {
	recMu.RLock()
	defer recMu.RUnlock()
	return recorder
}

// SetRecorder 替换全局记录器，传 nil 恢复为空实现
func SetRecorder(r Recorder) {
	recMu.Lock()
	defer recMu.Unlock()
	if r == nil {
		r = noopRecorder{}
	}
	recorder = r
}

// TimeReconcile 记录一次限界上下文服务调用的次数与耗时
func TimeReconcile() func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncReconcileTotal(success)
		Default().ObserveReconcileSeconds(success, dur)
	}
}

// TimeAnalysis 记录一次完整分析
func TimeAnalysis() func(success bool) {
	start := time.Now()
	return func(success bool) {
		dur := time.Since(start).Seconds()
		Default().IncAnalysisTotal(success)
		Default().ObserveAnalysisSeconds(success, dur)
	}
}
