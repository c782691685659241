package dialect

import "database/sql"

// Dialect abstracts the database-specific SQL used by the schema importer and the dataset sink.
type Dialect interface {
	Name() string

	// ColumnsQuery lists one table's columns in ordinal order. It binds two parameters
	// (schema, table) and yields: name, data type, max length, is_nullable ("YES"/"NO"), comment.
	ColumnsQuery() string

	// Load hooks wrap the inserts of one dataset.
	BeforeLoad(tx *sql.Tx, table string) error
	AfterLoad(tx *sql.Tx, table string) error

	CreateTableQuery(table string, cols []string) string
	InsertQuery(table string, cols []string) string
	TruncateQuery(table string) string
	CountQuery(table string) string
	Placeholder(index int) string // Returns ?, $1, @p1, :1
	QuoteIdent(name string) string

	NormalizeType(sqlType string) string
	GetSchemaName(input string) string
}
