package internal

import (
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
)

func testRuntime(t *testing.T, oracleURL string) *runtime {
	t.Helper()
	dir := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Store.Root = filepath.Join(dir, "store")
	cfg.Cache.Path = filepath.Join(dir, "data", "notes.json")
	cfg.Index.Path = filepath.Join(dir, "data", "notesift.db")
	cfg.Oracle.URL = oracleURL

	rt, err := setup([]Option{WithConfig(cfg), WithForce(true)}, io.Discard)
	if err != nil {
		t.Fatalf("setup: %v", err)
	}
	t.Cleanup(rt.Close)
	return rt
}

func TestSetupRequiresConfig(t *testing.T) {
	if _, err := setup(nil, io.Discard); err == nil {
		t.Fatal("expected error without config")
	}
}

func TestHTTPRouterWiring(t *testing.T) {
	ollama := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ollama.Close()

	rt := testRuntime(t, ollama.URL)
	r := newHTTPRouter(rt)

	cases := []struct {
		path string
		want int
	}{
		{"/health/live", http.StatusOK},
		{"/health/ready", http.StatusOK},
		{"/api/cache", http.StatusOK},
		{"/api/notes", http.StatusOK},
		{"/metrics", http.StatusOK},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tc.path, nil))
		if w.Code != tc.want {
			t.Errorf("GET %s = %d, want %d", tc.path, w.Code, tc.want)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if !strings.Contains(w.Body.String(), "notesift_http_requests_total") {
		t.Errorf("metrics missing http counter:\n%s", w.Body.String())
	}
}

func TestReadyFailsWithoutOracle(t *testing.T) {
	down := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	url := down.URL
	down.Close()

	r := newHTTPRouter(testRuntime(t, url))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", w.Code)
	}
}
