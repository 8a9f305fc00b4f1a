package metrics

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/starford/notesift/internal/oracle"
)

func TestCounters(t *testing.T) {
	m := New()
	m.IngestRun(nil)
	m.IngestRun(errors.New("boom"))
	m.Document("processed")
	m.Document("processed")
	m.NewRecords(3)
	m.Classification("delete")

	if got := testutil.ToFloat64(m.ingestRuns.WithLabelValues("error")); got != 1 {
		t.Errorf("error runs = %v", got)
	}
	if got := testutil.ToFloat64(m.documents.WithLabelValues("processed")); got != 2 {
		t.Errorf("processed = %v", got)
	}
	if got := testutil.ToFloat64(m.newRecords); got != 3 {
		t.Errorf("new records = %v", got)
	}
}

func TestOracleWrapper(t *testing.T) {
	m := New()
	o := m.Oracle(oracle.Func(func(ctx context.Context, system, user string) (string, error) {
		if user == "fail" {
			return "", errors.New("down")
		}
		return "yes", nil
	}))
	_, _ = o.Ask(context.Background(), "s", "ok")
	_, _ = o.Ask(context.Background(), "s", "fail")
	if got := testutil.ToFloat64(m.oracleCalls.WithLabelValues("ok")); got != 1 {
		t.Errorf("ok calls = %v", got)
	}
	if got := testutil.ToFloat64(m.oracleCalls.WithLabelValues("error")); got != 1 {
		t.Errorf("error calls = %v", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.IngestRun(nil)
	m.Document("skipped")
	m.HTTPRequest("GET", "/notes", 200)
	inner := oracle.Func(func(ctx context.Context, system, user string) (string, error) { return "x", nil })
	if got, _ := m.Oracle(inner).Ask(context.Background(), "", ""); got != "x" {
		t.Errorf("got %q", got)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.HTTPRequest("GET", "/notes", 200)
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `notesift_http_requests_total{method="GET",route="/notes",status="200"} 1`) {
		t.Errorf("body missing counter:\n%s", rec.Body.String())
	}
}
