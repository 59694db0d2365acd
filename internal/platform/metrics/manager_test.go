package metrics

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_RecordsCounters(t *testing.T) {
	t.Parallel()

	m := NewManager(WithNamespace("test"), WithRegistry(prometheus.NewRegistry()))
	m.RecordSquadBuilt(-4)
	m.RecordSquadBuilt(2)
	m.RecordBallot()
	m.RecordAggregation("cumulative", "applied")
	m.RecordPublish("matchday.squad.built", errors.New("down"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.squadsBuilt))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ballotsSubmitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.aggregations.WithLabelValues("cumulative", "applied")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.eventsPublished.WithLabelValues("matchday.squad.built", "error")))
}

func TestManager_DisabledIsNoop(t *testing.T) {
	t.Parallel()

	m := NewManager(WithMetricsEnabled(false), WithRegistry(prometheus.NewRegistry()))
	m.RecordBallot()
	m.ObserveHTTP(http.MethodGet, "/healthz", http.StatusOK, time.Millisecond)
	assert.Zero(t, testutil.ToFloat64(m.ballotsSubmitted))

	var nilManager *Manager
	nilManager.RecordBallot()
}

func TestManager_Handler(t *testing.T) {
	t.Parallel()

	m := NewManager(WithNamespace("test"), WithRegistry(prometheus.NewRegistry()))
	m.ObserveHTTP(http.MethodPost, "POST /v1/matches/{matchID}/squad", http.StatusCreated, 20*time.Millisecond)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "test_http_requests_total"), body)
	assert.True(t, strings.Contains(body, `status="201"`), body)
}
