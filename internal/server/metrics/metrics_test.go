package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// gathered returns the counter value, or histogram sample count, of the
// series name{labels}.
func gathered(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	series:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue series
				}
			}
			if h := m.GetHistogram(); h != nil {
				return float64(h.GetSampleCount())
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestSessionEvent_Results(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.SessionEvent("rotate", nil)
	c.SessionEvent("rotate", common.Unauthenticated("refresh token expired or used", common.ErrRefreshTokenUsed))
	c.SessionEvent("authenticate", common.Unauthenticated("invalid access token", common.ErrTokenExpired))
	c.SessionEvent("issue", common.Internal(errors.New("db down")))

	const name = "vidtube_session_events_total"
	assert.Equal(t, 1.0, gathered(t, reg, name, map[string]string{"op": "rotate", "result": ResultOK}))
	assert.Equal(t, 1.0, gathered(t, reg, name, map[string]string{"op": "rotate", "result": ResultReplayed}))
	assert.Equal(t, 1.0, gathered(t, reg, name, map[string]string{"op": "authenticate", "result": ResultUnauthenticated}))
	assert.Equal(t, 1.0, gathered(t, reg, name, map[string]string{"op": "issue", "result": ResultError}))
}

func TestRecordHTTP(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)

	c.RecordHTTP("/api/v1/users/login", 200, 20*time.Millisecond)
	c.RecordHTTP("/api/v1/users/login", 401, 5*time.Millisecond)
	c.RecordHTTP("/api/v1/users/current-user", 200, time.Millisecond)
	c.RecordRateLimited()

	assert.Equal(t, 2.0, gathered(t, reg, "vidtube_http_status_total", map[string]string{"status_code": "200"}))
	assert.Equal(t, 1.0, gathered(t, reg, "vidtube_http_status_total", map[string]string{"status_code": "401"}))
	assert.Equal(t, 2.0, gathered(t, reg, "vidtube_http_request_duration_seconds", map[string]string{"route": "/api/v1/users/login"}))
	assert.Equal(t, 1.0, gathered(t, reg, "vidtube_rate_limited_total", nil))
}

func TestHandler_Scrape(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := NewCollector(reg)
	c.SessionEvent("issue", nil)

	srv := httptest.NewServer(Handler(reg))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `vidtube_session_events_total{op="issue",result="ok"} 1`)
}

func TestNewCollector_DoubleRegisterPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewCollector(reg)
	assert.Panics(t, func() { NewCollector(reg) })
}
