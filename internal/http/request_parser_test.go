package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"driverdash/internal/dashboard"
)

func TestParseDateRange(t *testing.T) {
	svc := dashboard.NewService(dashboard.WithClock(func() time.Time { return testNow }))
	tests := []struct {
		query     string
		wantStart string
		wantEnd   string
	}{
		{"", "2026-10-01", "2026-10-16"},
		{"start=2026-10-05&end=2026-10-09", "2026-10-05", "2026-10-09"},
		{"start=2026-09-20&end=2026-11-02", "2026-10-01", "2026-10-16"},
		{"start=garbage&end=2026-10-03", "2026-10-01", "2026-10-03"},
		{"start=2026-10-09&end=2026-10-03", "2026-10-09", "2026-10-03"},
		{"start=+2026-10-04+", "2026-10-04", "2026-10-16"},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/ui/period?"+tt.query, nil)
			dr := parseDateRange(r, svc)
			if dr.Start.String() != tt.wantStart || dr.End.String() != tt.wantEnd {
				t.Fatalf("got %s..%s, want %s..%s", dr.Start, dr.End, tt.wantStart, tt.wantEnd)
			}
		})
	}
}

func TestSafeReturnPath(t *testing.T) {
	tests := map[string]string{
		"":                 "/",
		"/":                "/",
		"/api/months":      "/api/months",
		"//evil.example":   "/",
		"/\\evil.example":  "/",
		"https://evil.com": "/",
		"/login?return=/":  "/",
		"/logout":          "/",
	}
	for in, want := range tests {
		if got := safeReturnPath(in); got != want {
			t.Errorf("safeReturnPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeInput(t *testing.T) {
	if got := sanitizeInput("  driver\x00001\t "); got != "driver001" {
		t.Fatalf("got %q", got)
	}
}
