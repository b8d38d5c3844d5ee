package orm

import (
	"fmt"
	"strings"
)

// Dialect abstracts SQL differences between database engines.
type Dialect interface {
	// Name returns the canonical dialect name: "mysql", "postgres" or "mssql".
	Name() string

	// Placeholder returns the bind parameter placeholder for the given
	// 1-based index. MySQL returns "?" regardless of index; PostgreSQL
	// returns "$1", "$2", etc.; SQL Server returns "@p1", "@p2", etc.
	Placeholder(index int) string

	// QuoteIdent quotes an identifier (table name, column name) to safely
	// handle SQL reserved words. MySQL uses backticks; PostgreSQL uses
	// double quotes; SQL Server uses brackets.
	QuoteIdent(name string) string

	// UseReturning reports whether INSERT should read the auto-generated
	// primary key from a result set (PostgreSQL RETURNING, SQL Server
	// OUTPUT) rather than relying on LastInsertId (MySQL).
	UseReturning() bool

	// ReturningClause returns the RETURNING clause appended to INSERT
	// statements. Returns an empty string for dialects that do not
	// support RETURNING.
	ReturningClause(pk string) string

	// OutputClause returns the OUTPUT clause placed between the column
	// list and VALUES. Only SQL Server uses it.
	OutputClause(pk string) string

	// Paginate renders the row-limiting suffix of a SELECT. ordered
	// reports whether the statement already has an ORDER BY.
	Paginate(limit, offset *int, ordered bool) string

	// ColumnDDL renders a column definition for CREATE TABLE.
	ColumnDDL(c Column) string

	// DescribeQuery returns the introspection query for a table and its
	// arguments. Placeholders are written as "?". An empty schema means
	// the connection's current schema.
	DescribeQuery(schema, table string) (string, []any)
}

// MySQL is the Dialect for MySQL / MariaDB.
var MySQL Dialect = mysqlDialect{}

// PostgreSQL is the Dialect for PostgreSQL.
var PostgreSQL Dialect = postgresDialect{}

// MSSQL is the Dialect for Microsoft SQL Server.
var MSSQL Dialect = mssqlDialect{}

// DialectByName resolves a dialect from its name or a common alias.
func DialectByName(name string) (Dialect, error) {
	switch strings.ToLower(name) {
	case "mysql", "mariadb":
		return MySQL, nil
	case "postgres", "postgresql", "pgx":
		return PostgreSQL, nil
	case "mssql", "sqlserver":
		return MSSQL, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownDialect, name)
	}
}

// DriverName returns the database/sql driver name registered for d by the
// drivers this module is tested with.
func DriverName(d Dialect) string {
	switch d.(type) {
	case mysqlDialect:
		return "mysql"
	case postgresDialect:
		return "pgx"
	case mssqlDialect:
		return "sqlserver"
	default:
		return d.Name()
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string                    { return "mysql" }
func (mysqlDialect) Placeholder(_ int) string        { return "?" }
func (mysqlDialect) QuoteIdent(name string) string   { return "`" + name + "`" }
func (mysqlDialect) UseReturning() bool              { return false }
func (mysqlDialect) ReturningClause(_ string) string { return "" }
func (mysqlDialect) OutputClause(_ string) string    { return "" }

func (mysqlDialect) Paginate(limit, offset *int, _ bool) string {
	var b strings.Builder
	switch {
	case limit != nil:
		fmt.Fprintf(&b, " LIMIT %d", *limit)
	case offset != nil:
		// MySQL has no OFFSET without LIMIT.
		b.WriteString(" LIMIT 18446744073709551615")
	}
	if offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *offset)
	}
	return b.String()
}

func (d mysqlDialect) ColumnDDL(c Column) string {
	var typ string
	switch c.Type {
	case Integer:
		typ = "INTEGER"
	case BigInt:
		typ = "BIGINT"
	case Boolean:
		typ = "TINYINT(1)"
	case String:
		if c.Size == SizeMax {
			typ = "LONGTEXT"
		} else {
			typ = fmt.Sprintf("VARCHAR(%d)", c.size())
		}
	case Char:
		typ = fmt.Sprintf("CHAR(%d)", fixedSize(c))
	case Text:
		typ = "TEXT"
	case UUID:
		typ = "CHAR(36) BINARY"
	case Timestamp:
		typ = "DATETIME"
	}
	auto := ""
	if c.AutoIncrement {
		auto = " AUTO_INCREMENT"
	}
	return columnDDL(d, c, typ, auto)
}

func (mysqlDialect) DescribeQuery(schema, table string) (string, []any) {
	const cols = `SELECT COLUMN_NAME AS name, COLUMN_TYPE AS type, NULL AS length,
	IS_NULLABLE AS is_nullable, COLUMN_DEFAULT AS column_default,
	COLUMN_KEY = 'PRI' AS is_primary, EXTRA LIKE '%auto_increment%' AS is_identity
FROM information_schema.COLUMNS`
	if schema == "" {
		return cols + `
WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, []any{table}
	}
	return cols + `
WHERE TABLE_SCHEMA = ? AND TABLE_NAME = ?
ORDER BY ORDINAL_POSITION`, []any{schema, table}
}

type postgresDialect struct{}

func (postgresDialect) Name() string                     { return "postgres" }
func (postgresDialect) Placeholder(index int) string     { return fmt.Sprintf("$%d", index) }
func (postgresDialect) QuoteIdent(name string) string    { return `"` + name + `"` }
func (postgresDialect) UseReturning() bool               { return true }
func (postgresDialect) ReturningClause(pk string) string { return ` RETURNING "` + pk + `"` }
func (postgresDialect) OutputClause(_ string) string     { return "" }

func (postgresDialect) Paginate(limit, offset *int, _ bool) string {
	var b strings.Builder
	if limit != nil {
		fmt.Fprintf(&b, " LIMIT %d", *limit)
	}
	if offset != nil {
		fmt.Fprintf(&b, " OFFSET %d", *offset)
	}
	return b.String()
}

func (d postgresDialect) ColumnDDL(c Column) string {
	var typ string
	switch c.Type {
	case Integer:
		typ = "INTEGER"
		if c.AutoIncrement {
			typ = "SERIAL"
		}
	case BigInt:
		typ = "BIGINT"
		if c.AutoIncrement {
			typ = "BIGSERIAL"
		}
	case Boolean:
		typ = "BOOLEAN"
	case String:
		if c.Size == SizeMax {
			typ = "TEXT"
		} else {
			typ = fmt.Sprintf("VARCHAR(%d)", c.size())
		}
	case Char:
		typ = fmt.Sprintf("CHAR(%d)", fixedSize(c))
	case Text:
		typ = "TEXT"
	case UUID:
		typ = "UUID"
	case Timestamp:
		typ = "TIMESTAMPTZ"
	}
	return columnDDL(d, c, typ, "")
}

func (postgresDialect) DescribeQuery(schema, table string) (string, []any) {
	const cols = `SELECT c.column_name AS name, c.data_type AS type,
	c.character_maximum_length AS length, c.is_nullable AS is_nullable,
	c.column_default AS column_default,
	EXISTS (
		SELECT 1 FROM information_schema.table_constraints AS tc
		JOIN information_schema.key_column_usage AS kcu
			ON kcu.constraint_schema = tc.constraint_schema AND kcu.constraint_name = tc.constraint_name
		WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = c.table_schema
			AND tc.table_name = c.table_name AND kcu.column_name = c.column_name
	) AS is_primary,
	(c.is_identity = 'YES' OR COALESCE(c.column_default LIKE 'nextval(%', FALSE)) AS is_identity
FROM information_schema.columns AS c`
	if schema == "" {
		return cols + `
WHERE c.table_schema = current_schema() AND c.table_name = ?
ORDER BY c.ordinal_position`, []any{table}
	}
	return cols + `
WHERE c.table_schema = ? AND c.table_name = ?
ORDER BY c.ordinal_position`, []any{schema, table}
}

type mssqlDialect struct{}

func (mssqlDialect) Name() string                    { return "mssql" }
func (mssqlDialect) Placeholder(index int) string    { return fmt.Sprintf("@p%d", index) }
func (mssqlDialect) UseReturning() bool              { return true }
func (mssqlDialect) ReturningClause(_ string) string { return "" }

func (mssqlDialect) QuoteIdent(name string) string {
	return "[" + strings.ReplaceAll(name, "]", "]]") + "]"
}

func (d mssqlDialect) OutputClause(pk string) string {
	return " OUTPUT INSERTED." + d.QuoteIdent(pk)
}

// Paginate uses OFFSET/FETCH, which SQL Server only accepts after an
// ORDER BY.
func (mssqlDialect) Paginate(limit, offset *int, ordered bool) string {
	if limit == nil && offset == nil {
		return ""
	}
	var b strings.Builder
	if !ordered {
		b.WriteString(" ORDER BY (SELECT NULL)")
	}
	off := 0
	if offset != nil {
		off = *offset
	}
	fmt.Fprintf(&b, " OFFSET %d ROWS", off)
	if limit != nil {
		fmt.Fprintf(&b, " FETCH NEXT %d ROWS ONLY", *limit)
	}
	return b.String()
}

func (d mssqlDialect) ColumnDDL(c Column) string {
	var typ string
	switch c.Type {
	case Integer:
		typ = "INTEGER"
	case BigInt:
		typ = "BIGINT"
	case Boolean:
		typ = "BIT"
	case String:
		if c.Size == SizeMax {
			typ = "NVARCHAR(MAX)"
		} else {
			typ = fmt.Sprintf("NVARCHAR(%d)", c.size())
		}
	case Char:
		typ = fmt.Sprintf("CHAR(%d)", fixedSize(c))
	case Text:
		typ = "NVARCHAR(MAX)"
	case UUID:
		typ = "UNIQUEIDENTIFIER"
	case Timestamp:
		typ = "DATETIMEOFFSET"
	}
	auto := ""
	if c.AutoIncrement {
		auto = " IDENTITY(1,1)"
	}
	return columnDDL(d, c, typ, auto)
}

func (mssqlDialect) DescribeQuery(schema, table string) (string, []any) {
	const cols = `SELECT c.COLUMN_NAME AS name, c.DATA_TYPE AS type,
	c.CHARACTER_MAXIMUM_LENGTH AS length, c.IS_NULLABLE AS is_nullable,
	c.COLUMN_DEFAULT AS column_default,
	CAST(CASE WHEN EXISTS (
		SELECT 1 FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS AS tc
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE AS kcu
			ON kcu.CONSTRAINT_SCHEMA = tc.CONSTRAINT_SCHEMA AND kcu.CONSTRAINT_NAME = tc.CONSTRAINT_NAME
		WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_SCHEMA = c.TABLE_SCHEMA
			AND tc.TABLE_NAME = c.TABLE_NAME AND kcu.COLUMN_NAME = c.COLUMN_NAME
	) THEN 1 ELSE 0 END AS BIT) AS is_primary,
	CAST(COALESCE(COLUMNPROPERTY(OBJECT_ID(QUOTENAME(c.TABLE_SCHEMA) + '.' + QUOTENAME(c.TABLE_NAME)),
		c.COLUMN_NAME, 'IsIdentity'), 0) AS BIT) AS is_identity
FROM INFORMATION_SCHEMA.COLUMNS AS c`
	if schema == "" {
		return cols + `
WHERE c.TABLE_SCHEMA = SCHEMA_NAME() AND c.TABLE_NAME = ?
ORDER BY c.ORDINAL_POSITION`, []any{table}
	}
	return cols + `
WHERE c.TABLE_SCHEMA = ? AND c.TABLE_NAME = ?
ORDER BY c.ORDINAL_POSITION`, []any{schema, table}
}

// fixedSize returns the CHAR length; CHAR has no maximum-length form.
func fixedSize(c Column) int {
	if c.Size == SizeMax {
		return defaultStringSize
	}
	return c.size()
}

func columnDDL(d Dialect, c Column, typ, auto string) string {
	var b strings.Builder
	b.WriteString(d.QuoteIdent(c.Name))
	b.WriteByte(' ')
	b.WriteString(typ)
	b.WriteString(auto)
	if c.notNull() {
		b.WriteString(" NOT NULL")
	}
	if c.PrimaryKey {
		b.WriteString(" PRIMARY KEY")
	}
	return b.String()
}
