package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "driverdash/internal/log"
)

func TestMiddlewareAssignsRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := applog.New(applog.Config{Level: slog.LevelDebug, Component: applog.ComponentHTTP, Writer: &buf})
	m := NewMiddleware(logger, func(*http.Request) string { return "192.0.2.1" })

	var fromCtx string
	h := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestID(r.Context())
		applog.FromContext(r.Context()).Info("inside handler")
		w.WriteHeader(http.StatusUnauthorized)
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/period", nil))

	id := rec.Header().Get(HeaderRequestID)
	if !strings.HasPrefix(id, "req_") || id != fromCtx {
		t.Fatalf("request id header %q, context %q", id, fromCtx)
	}
	out := buf.String()
	for _, want := range []string{"inside handler", "request_id=" + id, "status_code=401", "level=WARN", "client_ip=192.0.2.1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("log output missing %q:\n%s", want, out)
		}
	}
}

func TestGenerateRequestIDUnique(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id := GenerateRequestID()
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
