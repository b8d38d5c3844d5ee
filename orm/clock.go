package orm

import (
	"context"
	"time"
)

// Clock supplies the time written to created/updated timestamp columns.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

type clockKey struct{}

// WithClock makes Create, CreateAll, Update and Upsert stamp records with
// c instead of the wall clock.
func WithClock(ctx context.Context, c Clock) context.Context {
	return context.WithValue(ctx, clockKey{}, c)
}

// now is truncated to microseconds, the finest precision shared by
// DATETIMEOFFSET, TIMESTAMPTZ and DATETIME(6), so a stamped record equals
// the row read back.
func now(ctx context.Context) time.Time {
	c, ok := ctx.Value(clockKey{}).(Clock)
	if !ok {
		c = ClockFunc(time.Now)
	}
	return c.Now().Truncate(time.Microsecond)
}
