package regress

import (
	"context"
	"strings"
	"sync"

	"github.com/ormkit/ormgen/orm"
)

// Statement is one SQL statement seen by a Recorder.
type Statement struct {
	SQL  string
	Args []any
}

// Recorder is an orm.Logger that keeps every executed statement. It is
// safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	next  orm.Logger
	stmts []Statement
}

var _ orm.Logger = (*Recorder)(nil)

// NewRecorder returns a Recorder that forwards each statement to next,
// if next is non-nil.
func NewRecorder(next orm.Logger) *Recorder {
	return &Recorder{next: next}
}

func (r *Recorder) Log(ctx context.Context, query string, args ...any) {
	r.mu.Lock()
	r.stmts = append(r.stmts, Statement{SQL: query, Args: append([]any(nil), args...)})
	r.mu.Unlock()

	if r.next != nil {
		r.next.Log(ctx, query, args...)
	}
}

// Statements returns a copy of the recorded statements in execution order.
func (r *Recorder) Statements() []Statement {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Statement(nil), r.stmts...)
}

// Last returns the most recent statement whose first keyword is verb,
// compared case-insensitively.
func (r *Recorder) Last(verb string) (Statement, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.stmts) - 1; i >= 0; i-- {
		fields := strings.Fields(r.stmts[i].SQL)
		if len(fields) > 0 && strings.EqualFold(fields[0], verb) {
			return r.stmts[i], true
		}
	}
	return Statement{}, false
}

// Reset forgets every recorded statement.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.stmts = nil
	r.mu.Unlock()
}
