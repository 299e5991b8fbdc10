package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRecorder struct {
	reconcile, analysis map[bool]int
}

func newCountingRecorder() *countingRecorder {
	return &countingRecorder{reconcile: map[bool]int{}, analysis: map[bool]int{}}
}

func (c *countingRecorder) IncReconcileTotal(success bool)          { c.reconcile[success]++ }
func (c *countingRecorder) ObserveReconcileSeconds(bool, float64)   {}
func (c *countingRecorder) IncAnalysisTotal(success bool)           { c.analysis[success]++ }
func (c *countingRecorder) ObserveAnalysisSeconds(bool, float64)    {}

func TestTimers(t *testing.T) {
	rec := newCountingRecorder()
	SetRecorder(rec)
	defer SetRecorder(nil)

	TimeReconcile()(true)
	TimeReconcile()(false)
	TimeAnalysis()(true)

	assert.Equal(t, 1, rec.reconcile[true])
	assert.Equal(t, 1, rec.reconcile[false])
	assert.Equal(t, 1, rec.analysis[true])
}

func TestEnablePrometheus(t *testing.T) {
	handler := EnablePrometheus()
	defer SetRecorder(nil)

	TimeReconcile()(true)
	TimeAnalysis()(false)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, `reconcile_calls_total{success="true"} 1`)
	assert.Contains(t, body, `analyses_total{success="false"} 1`)
}
