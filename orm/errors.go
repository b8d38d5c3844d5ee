package orm

import "errors"

var (
	// ErrNotFound is returned when a query expects a row, or DescribeTable a
	// table, and finds none.
	ErrNotFound = errors.New("orm: not found")

	// ErrUnknownDialect is returned by DialectByName.
	ErrUnknownDialect = errors.New("orm: unknown dialect")

	// ErrForeignKeyCycle is returned by Sync when the tables' foreign keys
	// cannot be ordered.
	ErrForeignKeyCycle = errors.New("orm: foreign key cycle")

	// ErrMissingWhere guards Delete against wiping a table.
	ErrMissingWhere = errors.New("orm: Delete without WHERE clause is not allowed")

	// ErrMissingPrimaryKey is returned by Update for a record without a key.
	ErrMissingPrimaryKey = errors.New("orm: primary key value is required for Update")
)
