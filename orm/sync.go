package orm

import (
	"context"
	"fmt"
	"strings"
)

// SyncOptions controls Sync.
type SyncOptions struct {
	// Force drops the tables before creating them, leaving them empty.
	Force bool
}

// Sync creates the given tables in foreign key order. With Force the tables
// are dropped first, dependents before the tables they reference.
func Sync(ctx context.Context, db Querier, opts SyncOptions, tables ...Table) error {
	ordered, err := sortTables(tables)
	if err != nil {
		return err
	}
	d := db.dialect()

	if opts.Force {
		for i := len(ordered) - 1; i >= 0; i-- {
			if _, err := db.ExecContext(ctx, DropTableSQL(d, ordered[i].Name, true)); err != nil {
				return fmt.Errorf("orm: drop %s: %w", ordered[i].Name, err)
			}
		}
	}
	for _, t := range ordered {
		if _, err := db.ExecContext(ctx, CreateTableSQL(d, t, true)); err != nil {
			return fmt.Errorf("orm: create %s: %w", t.Name, err)
		}
	}
	return nil
}

// sortTables orders tables so that every table comes after the tables its
// foreign keys reference. References to tables outside the set are ignored.
// The input order is kept among independent tables.
func sortTables(tables []Table) ([]Table, error) {
	index := make(map[string]int, len(tables))
	for i, t := range tables {
		index[t.Name] = i
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(tables))
	ordered := make([]Table, 0, len(tables))

	var visit func(i int, path []string) error
	visit = func(i int, path []string) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("%w: %s", ErrForeignKeyCycle, strings.Join(append(path, tables[i].Name), " -> "))
		}
		state[i] = visiting
		path = append(path, tables[i].Name)
		for _, fk := range tables[i].ForeignKeys {
			j, ok := index[fk.RefTable]
			if !ok || j == i {
				continue
			}
			if err := visit(j, path); err != nil {
				return err
			}
		}
		state[i] = done
		ordered = append(ordered, tables[i])
		return nil
	}

	for i := range tables {
		if err := visit(i, nil); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

// CreateTableSQL renders CREATE TABLE for t. With ifNotExists the
// statement is a no-op when the table already exists.
func CreateTableSQL(d Dialect, t Table, ifNotExists bool) string {
	defs := make([]string, 0, len(t.Columns)+len(t.ForeignKeys))
	for _, c := range t.Columns {
		defs = append(defs, d.ColumnDDL(c))
	}
	for _, fk := range t.ForeignKeys {
		defs = append(defs, foreignKeyDDL(d, fk))
	}

	body := fmt.Sprintf("%s (%s)", d.QuoteIdent(t.Name), strings.Join(defs, ", "))
	if !ifNotExists {
		return "CREATE TABLE " + body
	}
	if _, ok := d.(mssqlDialect); ok {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NULL CREATE TABLE %s", objectName(d, t.Name), body)
	}
	return "CREATE TABLE IF NOT EXISTS " + body
}

// DropTableSQL renders DROP TABLE for the named table.
func DropTableSQL(d Dialect, name string, ifExists bool) string {
	if !ifExists {
		return "DROP TABLE " + d.QuoteIdent(name)
	}
	if _, ok := d.(mssqlDialect); ok {
		return fmt.Sprintf("IF OBJECT_ID(N'%s', N'U') IS NOT NULL DROP TABLE %s", objectName(d, name), d.QuoteIdent(name))
	}
	return "DROP TABLE IF EXISTS " + d.QuoteIdent(name)
}

func foreignKeyDDL(d Dialect, fk ForeignKey) string {
	var b strings.Builder
	fmt.Fprintf(&b, "FOREIGN KEY (%s) REFERENCES %s (%s)",
		d.QuoteIdent(fk.Column), d.QuoteIdent(fk.RefTable), d.QuoteIdent(fk.RefColumn))
	if fk.OnDelete != "" {
		b.WriteString(" ON DELETE ")
		b.WriteString(fk.OnDelete)
	}
	if fk.OnUpdate != "" {
		b.WriteString(" ON UPDATE ")
		b.WriteString(fk.OnUpdate)
	}
	return b.String()
}

// objectName renders a quoted name for use inside an N'...' literal.
func objectName(d Dialect, name string) string {
	return strings.ReplaceAll(d.QuoteIdent(name), "'", "''")
}
