package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/techrun/internal/models"
	"github.com/sawpanic/techrun/internal/pipeline"
)

// find returns the first sample of family name whose labels include want
func find(t *testing.T, m *Registry, name string, want map[string]string) *dto.Metric {
	t.Helper()
	families, err := m.Gatherer().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() != name {
			continue
		}
		for _, metric := range f.GetMetric() {
			if hasLabels(metric, want) {
				return metric
			}
		}
	}
	t.Fatalf("metric %s %v not found", name, want)
	return nil
}

func hasLabels(metric *dto.Metric, want map[string]string) bool {
	matched := 0
	for _, lp := range metric.GetLabel() {
		if v, ok := want[lp.GetName()]; ok && v == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}

func TestRecordRun(t *testing.T) {
	m := NewRegistry()

	res := &pipeline.Result{
		RunID: "r1",
		AsOf:  time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		Warnings: []models.Warning{
			{CompanyID: "a", Kind: models.WarnUnknownSector},
			{CompanyID: "b", Kind: models.WarnUnknownSector},
		},
		Summary: pipeline.Summary{
			HighConviction:  2,
			Plays:           3,
			Recommendations: map[models.Recommendation]int{models.StrongBuy: 2, models.Hold: 1},
		},
	}
	m.RecordRun(res, 150*time.Millisecond)
	m.RecordRun(nil, time.Millisecond)

	assert.Equal(t, 1.0, find(t, m, "techrun_runs_total", map[string]string{"result": ResultSuccess}).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, m, "techrun_runs_total", map[string]string{"result": ResultError}).GetCounter().GetValue())
	assert.Equal(t, 2.0, find(t, m, "techrun_signals", map[string]string{"recommendation": "STRONG_BUY"}).GetGauge().GetValue())
	assert.Equal(t, 0.0, find(t, m, "techrun_signals", map[string]string{"recommendation": "SELL"}).GetGauge().GetValue())
	assert.Equal(t, 2.0, find(t, m, "techrun_high_conviction_signals", nil).GetGauge().GetValue())
	assert.Equal(t, 3.0, find(t, m, "techrun_second_order_plays", nil).GetGauge().GetValue())
	assert.Equal(t, 2.0, find(t, m, "techrun_warnings_total", map[string]string{"kind": "UnknownSector"}).GetCounter().GetValue())
	assert.Equal(t, uint64(2), find(t, m, "techrun_run_duration_seconds", nil).GetHistogram().GetSampleCount())
}

func TestObserveStage(t *testing.T) {
	m := NewRegistry()
	var observer pipeline.Observer = m

	observer.ObserveStage(pipeline.StageScore, 2*time.Millisecond)
	observer.ObserveStage(pipeline.StageScore, 3*time.Millisecond)

	h := find(t, m, "techrun_stage_duration_seconds", map[string]string{"stage": "score"}).GetHistogram()
	assert.Equal(t, uint64(2), h.GetSampleCount())
	assert.InDelta(t, 0.005, h.GetSampleSum(), 1e-9)
}

func TestRecordCacheStoreHTTP(t *testing.T) {
	m := NewRegistry()
	m.RecordCache("redis", "get", CacheMiss)
	m.RecordStoreError("save")
	m.RecordHTTP("/signals", http.StatusOK, 10*time.Millisecond)

	assert.Equal(t, 1.0, find(t, m, "techrun_cache_operations_total",
		map[string]string{"backend": "redis", "op": "get", "result": "miss"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, m, "techrun_store_errors_total", map[string]string{"op": "save"}).GetCounter().GetValue())
	assert.Equal(t, 1.0, find(t, m, "techrun_http_requests_total",
		map[string]string{"route": "/signals", "code": "200"}).GetCounter().GetValue())
}

func TestRegistriesAreIndependent(t *testing.T) {
	a, b := NewRegistry(), NewRegistry()
	a.RecordStoreError("save")
	b.RecordStoreError("save")
	assert.Equal(t, 1.0, find(t, a, "techrun_store_errors_total", map[string]string{"op": "save"}).GetCounter().GetValue())
}

func TestHandler(t *testing.T) {
	m := NewRegistry()
	m.RecordStoreError("latest")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `techrun_store_errors_total{op="latest"} 1`)
}
