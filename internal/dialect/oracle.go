package dialect

import (
	"database/sql"
	"fmt"
	"strings"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) ColumnsQuery() string {
	// USER_TAB_COLUMNS only covers the current user's tables; :1 consumes the schema argument.
	return `
SELECT
    t.COLUMN_NAME,
    t.DATA_TYPE,
    COALESCE(t.DATA_PRECISION, t.DATA_LENGTH),
    CASE t.NULLABLE WHEN 'Y' THEN 'YES' ELSE 'NO' END,
    c.COMMENTS
FROM USER_TAB_COLUMNS t
LEFT JOIN USER_COL_COMMENTS c ON t.TABLE_NAME = c.TABLE_NAME AND t.COLUMN_NAME = c.COLUMN_NAME
WHERE :1 IS NOT NULL AND t.TABLE_NAME = UPPER(:2)
ORDER BY t.COLUMN_ID`
}

func (d *OracleDialect) BeforeLoad(tx *sql.Tx, table string) error {
	return nil
}

func (d *OracleDialect) AfterLoad(tx *sql.Tx, table string) error {
	return nil
}

func (d *OracleDialect) CreateTableQuery(table string, cols []string) string {
	// No IF NOT EXISTS before 23c: swallow ORA-00955 (name already used).
	ddl := fmt.Sprintf("CREATE TABLE %s (%s)", d.QuoteIdent(table), columnDefs(cols, d.QuoteIdent, "VARCHAR2(4000)"))
	return fmt.Sprintf("BEGIN EXECUTE IMMEDIATE '%s'; EXCEPTION WHEN OTHERS THEN IF SQLCODE != -955 THEN RAISE; END IF; END;",
		strings.ReplaceAll(ddl, "'", "''"))
}

func (d *OracleDialect) InsertQuery(table string, cols []string) string {
	vals := GeneratePlaceholders(len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", d.QuoteIdent(table), quoteAll(cols, d.QuoteIdent), vals)
}

func (d *OracleDialect) TruncateQuery(table string) string {
	return fmt.Sprintf("TRUNCATE TABLE %s", d.QuoteIdent(table))
}

func (d *OracleDialect) CountQuery(table string) string {
	return fmt.Sprintf("SELECT COUNT(*) FROM %s", d.QuoteIdent(table))
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

func (d *OracleDialect) QuoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func (d *OracleDialect) NormalizeType(sqlType string) string {
	s := strings.ToLower(sqlType)
	if strings.Contains(s, "char") || strings.Contains(s, "clob") {
		return "string"
	}
	if strings.Contains(s, "int") || strings.Contains(s, "number") || strings.Contains(s, "float") {
		return "integer"
	}
	if strings.Contains(s, "timestamp") {
		return "datetime"
	}
	if strings.Contains(s, "date") {
		return "date"
	}
	return s
}

func (d *OracleDialect) GetSchemaName(input string) string {
	if input == "" {
		return "USER"
	}
	return input
}
