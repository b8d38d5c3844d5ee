package regress_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormgen/internal/regress"
)

type countingLogger struct {
	mu sync.Mutex
	n  int
}

func (l *countingLogger) Log(context.Context, string, ...any) {
	l.mu.Lock()
	l.n++
	l.mu.Unlock()
}

func TestRecorderConcurrentLog(t *testing.T) {
	t.Parallel()

	next := &countingLogger{}
	rec := regress.NewRecorder(next)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			rec.Log(t.Context(), fmt.Sprintf("INSERT INTO [t] VALUES (%d)", i))
		}()
	}
	wg.Wait()

	assert.Len(t, rec.Statements(), 50)
	assert.Equal(t, 50, next.n)
}

func TestRecorderLast(t *testing.T) {
	t.Parallel()

	rec := regress.NewRecorder(nil)
	rec.Log(t.Context(), "SELECT [a] FROM [t]")
	rec.Log(t.Context(), "INSERT INTO [t] ([a]) VALUES (@p1)", 1)
	rec.Log(t.Context(), "select [b] from [t]")
	rec.Log(t.Context(), "DELETE FROM [t] WHERE [a] = @p1", 1)

	stmt, ok := rec.Last("SELECT")
	require.True(t, ok)
	assert.Equal(t, "select [b] from [t]", stmt.SQL)

	stmt, ok = rec.Last("insert")
	require.True(t, ok)
	assert.Equal(t, []any{1}, stmt.Args)

	_, ok = rec.Last("MERGE")
	assert.False(t, ok)

	rec.Reset()
	assert.Empty(t, rec.Statements())
	_, ok = rec.Last("SELECT")
	assert.False(t, ok)
}
