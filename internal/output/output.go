// Package output prints command results for the CLI.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"

	"github.com/dshills/stormwin/internal/window"
)

// Format represents the output format.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatYAML, FormatJSON, FormatText:
		return f, nil
	}
	return "", fmt.Errorf("unsupported format: %s (use yaml, json or text)", s)
}

// WindowsResult is the output of the windows command.
type WindowsResult struct {
	Windows []window.Info `yaml:"windows" json:"windows"`
}

// Print serializes v to w in format f. Text output is only defined for
// WindowsResult; other values fall back to YAML.
func Print(w io.Writer, f Format, v any) error {
	switch f {
	case FormatJSON:
		return PrintJSON(w, v)
	case FormatYAML:
		return PrintYAML(w, v)
	case FormatText:
		if r, ok := v.(WindowsResult); ok {
			return PrintWindowsText(w, r)
		}
		return PrintYAML(w, v)
	default:
		return fmt.Errorf("unsupported output format: %s", f)
	}
}

// PrintJSON serializes v to w as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

// PrintYAML serializes v to w as YAML.
func PrintYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("yaml encode: %w", err)
	}
	return enc.Close()
}

// PrintWindowsText prints one line per tab, grouped by window.
func PrintWindowsText(w io.Writer, r WindowsResult) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "WINDOW\tTAB\tLABEL\tPATH")
	for i, win := range r.Windows {
		if len(win.Tabs) == 0 {
			fmt.Fprintf(tw, "%d\t-\t-\t-\n", i)
		}
		for j, tab := range win.Tabs {
			marker := ""
			if tab.Active {
				marker = "*"
			}
			path := tab.Path
			if path == "" {
				path = "-"
			}
			fmt.Fprintf(tw, "%d\t%d%s\t%s\t%s\n", i, j, marker, tab.Label, path)
		}
	}
	return tw.Flush()
}
