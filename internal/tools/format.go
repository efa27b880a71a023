package tools

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/smar-sean-sekora/opensearch-mcp-server/internal/opensearch"
)

// formatJSON renders a value as indented JSON for tool output.
func formatJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// formatTable renders cat-style rows as a pipe-separated table with a
// header line. Missing cells render as N/A.
func formatTable(rows []opensearch.Row, columns []string) string {
	var b strings.Builder
	b.WriteString(strings.Join(columns, " | "))
	b.WriteByte('\n')

	for _, row := range rows {
		cells := make([]string, len(columns))
		for i, col := range columns {
			if v, ok := row[col]; ok && v != nil {
				cells[i] = fmt.Sprintf("%v", v)
			} else {
				cells[i] = "N/A"
			}
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteByte('\n')
	}
	return b.String()
}

// tableColumns derives column names from the first row, sorted so the
// output is stable across runs.
func tableColumns(rows []opensearch.Row) []string {
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	return cols
}
