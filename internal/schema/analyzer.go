package schema

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Sergiu-D/dataforge/internal/dialect"
)

// Column is one introspected database column.
type Column struct {
	Name       string
	DataType   string
	Length     int
	IsNullable bool
	Comment    string
	Meaning    string // suggested type id, "" when unknown
}

// AnalyzeTable introspects a table and returns its columns with suggested type ids.
func AnalyzeTable(ctx context.Context, db *sql.DB, d dialect.Dialect, schemaName, table string) ([]Column, error) {
	target := d.GetSchemaName(schemaName)

	rows, err := db.QueryContext(ctx, d.ColumnsQuery(), target, table)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns of %s: %w", table, err)
	}
	defer rows.Close()

	var cols []Column
	for rows.Next() {
		var name, dataType, length, nullable, comment sql.NullString
		if err := rows.Scan(&name, &dataType, &length, &nullable, &comment); err != nil {
			return nil, fmt.Errorf("failed to scan column (table: %s): %w", table, err)
		}
		if !name.Valid {
			continue
		}

		col := Column{
			Name:       name.String,
			DataType:   d.NormalizeType(dataType.String),
			IsNullable: nullable.String == "YES",
			Comment:    comment.String,
		}
		if length.Valid && length.String != "" {
			var n float64
			if _, err := fmt.Sscanf(length.String, "%g", &n); err == nil {
				col.Length = int(n)
			}
		}
		col.Meaning = SuggestTypeForColumn(col.Name, col.Comment, col.DataType)
		cols = append(cols, col)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating columns: %w", err)
	}
	if len(cols) == 0 {
		return nil, fmt.Errorf("table %s not found or has no columns", table)
	}
	return cols, nil
}

// FieldsFromColumns turns introspected columns into schema fields.
// Columns whose type could not be suggested keep an empty type id for the user to fill in.
func FieldsFromColumns(cols []Column) []Field {
	fields := make([]Field, 0, len(cols))
	for _, c := range cols {
		f := Field{
			ID:      NewID(),
			Name:    c.Name,
			TypeID:  c.Meaning,
			Options: DefaultOptions(c.Meaning),
		}
		if f.TypeID == "lorem_ipsum" && c.Length > 0 && c.Length < 40 {
			f.Options = WordCountOptions{WordCount: 2}
		}
		fields = append(fields, f)
	}
	return fields
}
