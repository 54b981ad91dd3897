package output

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"github.com/dshills/stormwin/internal/geom"
	"github.com/dshills/stormwin/internal/window"
)

var sample = WindowsResult{Windows: []window.Info{
	{
		ID:     "w1",
		Bounds: geom.Rect{X: 10, Y: 5, W: 80, H: 24},
		Theme:  "dark",
		Tabs: []window.TabInfo{
			{Label: "main.go", Path: "/src/main.go"},
			{Label: "Untitled 1", Blank: true, Active: true},
		},
	},
	{ID: "w2", Theme: "dark"},
}}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"yaml", FormatYAML, false},
		{"JSON", FormatJSON, false},
		{"text", FormatText, false},
		{"agent", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, FormatYAML, sample); err != nil {
		t.Fatal(err)
	}

	var decoded WindowsResult
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid YAML: %v", err)
	}
	if len(decoded.Windows) != 2 || decoded.Windows[0].Bounds.W != 80 {
		t.Errorf("decoded = %+v", decoded)
	}
	if !strings.Contains(buf.String(), "label: main.go") {
		t.Errorf("output:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "path: \"\"") {
		t.Errorf("empty path not omitted:\n%s", buf.String())
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, FormatJSON, sample); err != nil {
		t.Fatal(err)
	}

	var decoded WindowsResult
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if decoded.Windows[0].Tabs[1].Label != "Untitled 1" || !decoded.Windows[0].Tabs[1].Active {
		t.Errorf("decoded = %+v", decoded)
	}
}

func TestPrintWindowsText(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, FormatText, sample); err != nil {
		t.Fatal(err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 4 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if !strings.Contains(lines[2], "1*") || !strings.Contains(lines[2], "Untitled 1") {
		t.Errorf("active tab line = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "1 ") {
		t.Errorf("empty window line = %q", lines[3])
	}
}

func TestPrint_UnknownFormat(t *testing.T) {
	if err := Print(&bytes.Buffer{}, Format("xml"), sample); err == nil {
		t.Error("Print() accepted an unknown format")
	}
}
