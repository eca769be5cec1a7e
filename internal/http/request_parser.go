package http

import (
	"net/http"
	"strings"

	"driverdash/internal/core"
)

// DateRange is a validated, clamped range from query parameters.
type DateRange struct {
	Start core.Date
	End   core.Date
}

// clamper pins dates into the selectable window.
type clamper interface {
	CurrentMonthBounds() (first, last core.Date)
	ClampToCurrentMonth(d core.Date) core.Date
}

// parseDateRange reads start and end (YYYY-MM-DD). Missing or malformed
// values default to the current month to date; everything is clamped into
// [first of month, today]. An inverted range is kept as is so the caller can
// show the empty state.
func parseDateRange(r *http.Request, c clamper) DateRange {
	first, last := c.CurrentMonthBounds()
	q := r.URL.Query()
	return DateRange{
		Start: c.ClampToCurrentMonth(parseDateOr(q.Get("start"), first)),
		End:   c.ClampToCurrentMonth(parseDateOr(q.Get("end"), last)),
	}
}

func parseDateOr(s string, def core.Date) core.Date {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	d, err := core.ParseDate(s)
	if err != nil {
		return def
	}
	return d
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}

// safeReturnPath accepts only local absolute paths as post-login targets.
func safeReturnPath(p string) string {
	if p == "" || !strings.HasPrefix(p, "/") || strings.HasPrefix(p, "//") || strings.HasPrefix(p, "/\\") {
		return "/"
	}
	if strings.HasPrefix(p, "/login") || strings.HasPrefix(p, "/logout") {
		return "/"
	}
	return p
}
