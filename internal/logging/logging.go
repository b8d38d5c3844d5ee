// Package logging builds the zerolog loggers used by the CLI and the
// regression harness.
package logging

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"

	"github.com/ormkit/ormgen/orm"
)

// Output formats accepted by New.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

// New returns a logger writing to w at the given level. format is
// FormatConsole or FormatJSON.
func New(level, format string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level: %w", err)
	}

	switch format {
	case FormatJSON:
	case FormatConsole, "":
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.TimeOnly, NoColor: true}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// QueryLogger writes every statement executed through an orm.DB at debug
// level.
type QueryLogger struct {
	Logger zerolog.Logger
}

var _ orm.Logger = QueryLogger{}

func (l QueryLogger) Log(_ context.Context, query string, args ...any) {
	l.Logger.Debug().Str("sql", query).Interface("args", args).Msg("query")
}
