package orm

import (
	"fmt"
	"strings"
)

// ColumnType is the logical type of a column. Each Dialect renders it to a
// concrete SQL type.
type ColumnType int

const (
	Integer ColumnType = iota
	BigInt
	Boolean
	String
	Char
	Text
	UUID
	Timestamp
)

// SizeMax requests the largest length a dialect supports for String
// columns, e.g. NVARCHAR(MAX) on SQL Server.
const SizeMax = -1

const defaultStringSize = 255

var columnTypeNames = map[ColumnType]string{
	Integer:   "integer",
	BigInt:    "bigint",
	Boolean:   "boolean",
	String:    "string",
	Char:      "char",
	Text:      "text",
	UUID:      "uuid",
	Timestamp: "timestamp",
}

func (t ColumnType) String() string {
	if name, ok := columnTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ColumnType(%d)", int(t))
}

// ParseColumnType resolves a lower-case type name as used in `db` struct
// tags ("string", "char", "bigint", ...).
func ParseColumnType(name string) (ColumnType, error) {
	for t, n := range columnTypeNames {
		if strings.EqualFold(n, name) {
			return t, nil
		}
	}
	return 0, fmt.Errorf("orm: unknown column type %q", name)
}

// Column describes one physical column of a Table.
type Column struct {
	Name          string
	Type          ColumnType
	Size          int // String/Char length; 0 means the default, SizeMax the maximum
	PrimaryKey    bool
	AutoIncrement bool
	NotNull       bool
}

func (c Column) size() int {
	if c.Size == 0 {
		return defaultStringSize
	}
	return c.Size
}

func (c Column) notNull() bool { return c.NotNull || c.PrimaryKey }

// ForeignKey references a column of another table.
type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	OnDelete  string // e.g. "CASCADE"; empty leaves the database default
	OnUpdate  string
}

// Table is the schema of a model, rendered by ormgen as <Factory>Table.
type Table struct {
	Name        string
	Columns     []Column
	ForeignKeys []ForeignKey
}

// Column returns the column with the given name.
func (t Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}
