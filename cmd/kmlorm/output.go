package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func cell(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return fmt.Sprintf("%.6g", x)
	default:
		return fmt.Sprint(x)
	}
}

// renderTable draws rows under upper-cased headers.
func renderTable(headers []string, rows [][]any) string {
	t := table.New().Border(lipgloss.NormalBorder())
	hs := make([]string, len(headers))
	for i, h := range headers {
		hs[i] = strings.ToUpper(h)
	}
	t.Headers(hs...)
	for _, r := range rows {
		cells := make([]string, len(r))
		for i, v := range r {
			cells[i] = cell(v)
		}
		t.Row(cells...)
	}
	return t.String()
}
