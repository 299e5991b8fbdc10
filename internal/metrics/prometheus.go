package metrics

import (
	"net/http"
	"strconv"

	prom "github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
)

type promRecorder struct {
	reconcileTotal   *prom.CounterVec
	reconcileSeconds *prom.HistogramVec
	analysisTotal    *prom.CounterVec
	analysisSeconds  *prom.HistogramVec
}

func (p *promRecorder) IncReconcileTotal(success bool) {
	p.reconcileTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveReconcileSeconds(success bool, seconds float64) {
	p.reconcileSeconds.WithLabelValues(strconv.FormatBool(success)).Observe(seconds)
}

func (p *promRecorder) IncAnalysisTotal(success bool) {
	p.analysisTotal.WithLabelValues(strconv.FormatBool(success)).Inc()
}

func (p *promRecorder) ObserveAnalysisSeconds(success bool, seconds float64) {
	p.analysisSeconds.WithLabelValues(strconv.FormatBool(success)).Observe(seconds)
}

// EnablePrometheus 在独立的 registry 上启用 Prometheus 记录器，返回 /metrics 处理器
func EnablePrometheus() http.Handler {
	registry := prom.NewRegistry()
	p := &promRecorder{
		reconcileTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "reconcile_calls_total",
			Help: "限界上下文服务调用次数",
		}, []string{"success"}),
		reconcileSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "reconcile_call_seconds",
			Help:    "限界上下文服务调用耗时（秒）",
			Buckets: prom.DefBuckets,
		}, []string{"success"}),
		analysisTotal: prom.NewCounterVec(prom.CounterOpts{
			Name: "analyses_total",
			Help: "分析执行次数",
		}, []string{"success"}),
		analysisSeconds: prom.NewHistogramVec(prom.HistogramOpts{
			Name:    "analysis_seconds",
			Help:    "分析耗时（秒）",
			Buckets: prom.DefBuckets,
		}, []string{"success"}),
	}

	registry.MustRegister(p.reconcileTotal, p.reconcileSeconds, p.analysisTotal, p.analysisSeconds)
	SetRecorder(p)

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
