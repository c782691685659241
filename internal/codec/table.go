package codec

import (
	"fmt"

	"github.com/pterm/pterm"
)

// RenderTable draws the dataset as a text table. Short rows are padded with empty cells.
// A positive limit caps the number of data rows shown.
func RenderTable(header []string, rows [][]string, limit int) (string, error) {
	if len(header) == 0 {
		return "", nil
	}

	shown := rows
	if limit > 0 && len(rows) > limit {
		shown = rows[:limit]
	}

	data := pterm.TableData{header}
	for _, row := range shown {
		data = append(data, pad(row, len(header)))
	}

	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return "", fmt.Errorf("failed to render table: %w", err)
	}
	if len(shown) < len(rows) {
		out += fmt.Sprintf("\n... %d more rows", len(rows)-len(shown))
	}
	return out, nil
}

func pad(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}
