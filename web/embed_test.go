package web

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"
)

func TestTemplatesParse(t *testing.T) {
	tmpl, err := Templates()
	if err != nil {
		t.Fatalf("parse templates: %v", err)
	}
	for _, name := range []string{"login.html", "dashboard.html", "period", "head"} {
		if tmpl.Lookup(name) == nil {
			t.Fatalf("template %q not defined", name)
		}
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "period", map[string]any{"Empty": true, "Start": "2026-10-09", "End": "2026-10-03"}); err != nil {
		t.Fatalf("execute period: %v", err)
	}
	if !strings.Contains(buf.String(), "No data available for the selected date range.") {
		t.Fatalf("empty state missing: %s", buf.String())
	}
}

func TestStaticAssets(t *testing.T) {
	static, err := Static()
	if err != nil {
		t.Fatalf("static fs: %v", err)
	}
	for _, name := range []string{"app.js", "style.css"} {
		if _, err := fs.Stat(static, name); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}
}
