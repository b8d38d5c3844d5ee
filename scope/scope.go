package scope

import "strings"

// Applier receives scope fragments. orm.Query implements it; the
// interface lives here so orm can import scope.
type Applier interface {
	ApplyWhere(clause string, args []any)
	ApplyOrderBy(clause string)
	ApplyLimit(n int)
	ApplyOffset(n int)
	ApplySelect(columns string)
}

type scopeKind int

const (
	kindWhere scopeKind = iota
	kindOrderBy
	kindLimit
	kindOffset
	kindSelect
)

// Scope represents a single query condition fragment.
// Scopes are immutable and safe to reuse across queries.
type Scope struct {
	kind   scopeKind
	clause string
	args   []any
	n      int
}

// Apply dispatches this Scope to the given Applier.
func (s Scope) Apply(a Applier) {
	switch s.kind {
	case kindWhere:
		a.ApplyWhere(s.clause, s.args)
	case kindOrderBy:
		a.ApplyOrderBy(s.clause)
	case kindLimit:
		a.ApplyLimit(s.n)
	case kindOffset:
		a.ApplyOffset(s.n)
	case kindSelect:
		a.ApplySelect(s.clause)
	}
}

// Where returns a Scope that adds a WHERE clause fragment.
//
//	scope.Where("age > ?", 18)
//	scope.Where("name = ? AND role = ?", "alice", "admin")
func Where(clause string, args ...any) Scope {
	return Scope{kind: kindWhere, clause: clause, args: args}
}

// OrderBy returns a Scope that sets the ORDER BY clause.
//
//	scope.OrderBy("created_at DESC")
func OrderBy(clause string) Scope {
	return Scope{kind: kindOrderBy, clause: clause}
}

// Limit returns a Scope that sets the LIMIT.
func Limit(n int) Scope {
	return Scope{kind: kindLimit, n: n}
}

// Offset returns a Scope that sets the OFFSET.
func Offset(n int) Scope {
	return Scope{kind: kindOffset, n: n}
}

// Select returns a Scope that overrides the SELECT column list.
//
//	scope.Select("id", "name")
func Select(columns ...string) Scope {
	return Scope{kind: kindSelect, clause: strings.Join(columns, ", ")}
}

// In returns a WHERE scope with one placeholder per value. An empty
// slice matches nothing.
//
//	scope.In("id", []int{1, 2, 3})  // id IN (?, ?, ?)
func In[T any](column string, values []T) Scope {
	if len(values) == 0 {
		return Where("1 = 0")
	}
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return Where(column+" IN ("+placeholders(len(values))+")", args...)
}

// Like returns a WHERE scope matching column against a LIKE pattern.
// The pattern is bound as an argument, so wildcards are the caller's.
//
//	scope.Like("[Users].[username]", "%maan%")
func Like(column, pattern string) Scope {
	return Where(column+" LIKE ?", pattern)
}

// Contains matches rows whose column contains substr literally. The
// LIKE wildcards in substr, and SQL Server's [ character class, are
// escaped with '!', which no dialect treats specially inside a literal.
func Contains(column, substr string) Scope {
	return Where(column+" LIKE ? ESCAPE '!'", "%"+likeEscaper.Replace(substr)+"%")
}

var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_", "[", "![")

// Paginate returns the Limit and Offset of a 1-based page. Pages below 1
// are treated as the first page.
//
//	Users(db).Scopes(scope.Paginate(2, 20)...).All(ctx)  // OFFSET 20, LIMIT 20
func Paginate(page, perPage int) Scopes {
	page = max(page, 1)
	return Scopes{Limit(perPage), Offset((page - 1) * perPage)}
}

// Scopes builds a scope list up conditionally.
//
//	var s scope.Scopes
//	if name != "" {
//	    s = s.Append(scope.Contains("[Users].[username]", name))
//	}
//	s = s.Merge(scope.Paginate(page, 20))
//	LoginLogs(db).Join("User").Scopes(s...).All(ctx)
type Scopes []Scope

// Append adds scopes and returns a new Scopes. The receiver is not modified.
func (ss Scopes) Append(scopes ...Scope) Scopes {
	return append(append(Scopes(nil), ss...), scopes...)
}

// Merge concatenates two Scopes and returns a new Scopes.
// Neither receiver nor argument is modified.
func (ss Scopes) Merge(other Scopes) Scopes {
	return append(append(Scopes(nil), ss...), other...)
}

// Combine creates a Scopes from the given scopes.
//
//	scope.Combine(scope.Limit(10), scope.Offset(20))
func Combine(scopes ...Scope) Scopes {
	return Scopes(scopes)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}
