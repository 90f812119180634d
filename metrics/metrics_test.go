package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Observe(t *testing.T) {
	m := New()
	m.ObserveResolution("default")
	m.ObserveResolution("default")
	m.ObserveResolution("resolved")
	m.ObserveResolutionError("STORE_UNAVAILABLE")
	m.ObserveStoreGet("memory", time.Millisecond)
	m.ObserveScore(OpScoreOne, 1)
	m.ObserveScore(OpRankMany, 3)
	m.ObserveScoreError(OpRankMany, "EMPTY_CANDIDATE_LIST")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.resolutions.WithLabelValues("default")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.resolutions.WithLabelValues("resolved")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.storeErrors.WithLabelValues("STORE_UNAVAILABLE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoreCalls.WithLabelValues(OpRankMany)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.scoreErrors.WithLabelValues(OpRankMany, "EMPTY_CANDIDATE_LIST")))

	n, err := testutil.GatherAndCount(m.Registry(), "evrank_rank_candidates")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveResolution("default")
		m.ObserveResolutionError("x")
		m.ObserveStoreGet("redis", time.Second)
		m.ObserveScore(OpScoreOne, 1)
		m.ObserveScoreError(OpScoreOne, "x")
	})
	assert.Nil(t, m.Registry())

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
