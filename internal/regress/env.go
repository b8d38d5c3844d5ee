package regress

import (
	"github.com/rs/zerolog"

	"github.com/ormkit/ormgen/internal/logging"
	"github.com/ormkit/ormgen/orm"
)

// Env is what a scenario runs against.
type Env struct {
	// DB logs every statement to Recorder.
	DB       *orm.DB
	Dialect  string
	Recorder *Recorder
	Logger   zerolog.Logger
}

// NewEnv wraps db so that its statements are recorded and logged at debug
// level through logger.
func NewEnv(db *orm.DB, logger zerolog.Logger) *Env {
	rec := NewRecorder(logging.QueryLogger{Logger: logger})
	return &Env{
		DB:       db.Debug(rec),
		Dialect:  db.Dialect().Name(),
		Recorder: rec,
		Logger:   logger,
	}
}

// Reset clears the recorded statements.
func (e *Env) Reset() {
	e.Recorder.Reset()
}
