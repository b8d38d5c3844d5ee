package orm

import "strings"

// rewritePlaceholders numbers the ? markers of query in the dialect's
// placeholder style: $1 on PostgreSQL, @p1 on SQL Server. Markers inside
// single-quoted literals and "quoted" identifiers are left alone, and so
// are [bracketed] identifiers on SQL Server. PostgreSQL brackets are array
// syntax and get rewritten.
func rewritePlaceholders(d Dialect, query string) string {
	if _, ok := d.(mysqlDialect); ok {
		return query
	}
	_, brackets := d.(mssqlDialect)
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	var closing byte // closing quote of the literal or identifier being copied
	for i := range len(query) {
		c := query[i]
		switch {
		case closing != 0:
			if c == closing {
				closing = 0
			}
		case c == '\'':
			closing = '\''
		case c == '"':
			closing = '"'
		case c == '[' && brackets:
			closing = ']'
		case c == '?':
			n++
			b.WriteString(d.Placeholder(n))
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
