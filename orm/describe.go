package orm

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
)

// ColumnInfo is one column as reported by the database catalog.
type ColumnInfo struct {
	// Type is the upper-case SQL type including its length, e.g.
	// "NVARCHAR(MAX)" or "CHAR(10)".
	Type          string  `json:"type" yaml:"type"`
	AllowNull     bool    `json:"allowNull" yaml:"allowNull"`
	Default       *string `json:"default,omitempty" yaml:"default,omitempty"`
	PrimaryKey    bool    `json:"primaryKey" yaml:"primaryKey"`
	AutoIncrement bool    `json:"autoIncrement" yaml:"autoIncrement"`
}

type describeRow struct {
	Name       string         `db:"name"`
	Type       string         `db:"type"`
	Length     sql.NullInt64  `db:"length"`
	IsNullable string         `db:"is_nullable"`
	Default    sql.NullString `db:"column_default"`
	IsPrimary  bool           `db:"is_primary"`
	IsIdentity bool           `db:"is_identity"`
}

// DescribeTable returns the columns of table keyed by column name. The
// table may be qualified as "schema.table"; otherwise the connection's
// current schema is used. A table without columns is reported as
// ErrNotFound.
func DescribeTable(ctx context.Context, db Querier, table string) (map[string]ColumnInfo, error) {
	schema, name := "", table
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		schema, name = table[:i], table[i+1:]
	}

	d := db.dialect()
	query, args := d.DescribeQuery(schema, name)
	query = rewritePlaceholders(d, query)

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err //nolint:wrapcheck // pass through
	}
	defer func() { _ = rows.Close() }()

	var described []describeRow
	if err := sqlx.StructScan(rows, &described); err != nil {
		return nil, fmt.Errorf("orm: describe %s: %w", table, err)
	}
	if len(described) == 0 {
		return nil, fmt.Errorf("orm: describe %s: %w", table, ErrNotFound)
	}

	columns := make(map[string]ColumnInfo, len(described))
	for _, r := range described {
		info := ColumnInfo{
			Type:          typeString(r.Type, r.Length),
			AllowNull:     strings.EqualFold(r.IsNullable, "YES"),
			PrimaryKey:    r.IsPrimary,
			AutoIncrement: r.IsIdentity,
		}
		if r.Default.Valid {
			def := r.Default.String
			info.Default = &def
		}
		columns[r.Name] = info
	}
	return columns, nil
}

// typeString renders a catalog type with its length. A length of -1 is
// how SQL Server reports the MAX forms.
func typeString(typ string, length sql.NullInt64) string {
	typ = strings.ToUpper(typ)
	if !length.Valid || strings.Contains(typ, "(") {
		return typ
	}
	if length.Int64 == -1 {
		return typ + "(MAX)"
	}
	return fmt.Sprintf("%s(%d)", typ, length.Int64)
}
