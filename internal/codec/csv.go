// Package codec moves generated datasets between CSV text and the views built on it.
package codec

import (
	"bytes"
	"encoding/csv"
	"strings"
)

// Encode joins cells with "," and lines with "\n". Cells are written as-is, so values
// must not contain commas or quotes. There is no trailing newline.
func Encode(header []string, rows [][]string) string {
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(header, ","))
	for _, row := range rows {
		lines = append(lines, strings.Join(row, ","))
	}
	return strings.Join(lines, "\n")
}

// EncodeQuoted is Encode with minimal quoting: cells containing a comma, a quote or a
// line break are wrapped in quotes and embedded quotes are doubled.
func EncodeQuoted(header []string, rows [][]string) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(header); err != nil {
		return "", err
	}
	if err := w.WriteAll(rows); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// Decode splits text into a header and data rows.
//
// A '"' toggles quoted mode and is dropped; commas inside quotes are data. Doubled
// quotes are not unescaped, each one just toggles again. Trailing line breaks are
// ignored, cells are trimmed and short rows are returned as they are.
func Decode(text string) ([]string, [][]string) {
	text = strings.TrimRight(text, "\r\n")
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	lines := strings.Split(text, "\n")
	header := splitLine(lines[0])

	rows := make([][]string, 0, len(lines)-1)
	for _, line := range lines[1:] {
		rows = append(rows, splitLine(line))
	}
	return header, rows
}

func splitLine(line string) []string {
	var (
		cells   []string
		cell    strings.Builder
		inQuote bool
	)
	for _, r := range line {
		switch {
		case r == '"':
			inQuote = !inQuote
		case r == ',' && !inQuote:
			cells = append(cells, strings.TrimSpace(cell.String()))
			cell.Reset()
		default:
			cell.WriteRune(r)
		}
	}
	return append(cells, strings.TrimSpace(cell.String()))
}
