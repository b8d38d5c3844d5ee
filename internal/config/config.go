// Package config loads ormgen settings from flags, ORMGEN_* environment
// variables and an optional config file.
package config

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/ormkit/ormgen/orm"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/microsoft/go-mssqldb"
)

// EnvPrefix is prepended to every environment variable, e.g. ORMGEN_DSN.
const EnvPrefix = "ORMGEN"

// Setting keys.
const (
	KeyDialect   = "dialect"
	KeyDSN       = "dsn"
	KeyLogLevel  = "log_level"
	KeyLogFormat = "log_format"

	KeyConnectTimeout = "connect_timeout"
)

// Settings holds the connection and logging configuration.
type Settings struct {
	Dialect   string `mapstructure:"dialect" validate:"required,oneof=mysql postgres postgresql pgx mssql sqlserver"`
	DSN       string `mapstructure:"dsn" validate:"required"`
	LogLevel  string `mapstructure:"log_level" validate:"required,oneof=trace debug info warn error"`
	LogFormat string `mapstructure:"log_format" validate:"required,oneof=console json"`

	// ConnectTimeout bounds how long Open retries an unreachable database.
	// Zero means a single attempt.
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" validate:"gte=0"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewViper returns a viper instance with defaults and environment
// binding in place.
func NewViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeyDialect, "mssql")
	v.SetDefault(KeyDSN, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
	v.SetDefault(KeyConnectTimeout, time.Duration(0))
	return v
}

// ReadFile merges the config file at path into v. An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	return nil
}

// Load decodes and validates the settings held by v.
func Load(v *viper.Viper) (Settings, error) {
	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("decode config: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field of s.
func (s Settings) Validate() error {
	if err := validate.Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, len(verrs))
			for i, fe := range verrs {
				fields[i] = fmt.Sprintf("%s (%s)", strings.ToLower(fe.Field()), fe.Tag())
			}
			return fmt.Errorf("invalid settings: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid settings: %w", err)
	}
	return nil
}

// Open connects to the configured database and checks that it answers,
// retrying with exponential backoff for up to ConnectTimeout. A freshly
// started SQL Server container refuses logins for a while.
func (s Settings) Open(ctx context.Context) (*orm.DB, error) {
	d, err := orm.DialectByName(s.Dialect)
	if err != nil {
		return nil, err //nolint:wrapcheck // already prefixed
	}

	raw, err := sql.Open(orm.DriverName(d), s.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.Name(), err)
	}
	db := orm.New(raw, d)
	ping := func() error { return db.Ping(ctx) }
	if s.ConnectTimeout > 0 {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = 250 * time.Millisecond
		b.MaxElapsedTime = s.ConnectTimeout
		err = backoff.Retry(ping, backoff.WithContext(b, ctx))
	} else {
		err = ping()
	}
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", d.Name(), err)
	}
	return db, nil
}
