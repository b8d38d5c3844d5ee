package orm

import (
	"context"
	"database/sql"
)

// Querier runs statements for generated queries. *DB and *Tx implement
// it; the unexported dialect method keeps other implementations out.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	dialect() Dialect
}

// Logger receives every statement before it is sent to the database.
type Logger interface {
	Log(ctx context.Context, query string, args ...any)
}

// conn is the part of *sql.DB and *sql.Tx a session needs.
type conn interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// session logs statements and forwards them to a conn.
type session struct {
	conn   conn
	d      Dialect
	logger Logger
}

func (s session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	s.log(ctx, query, args)
	return s.conn.QueryContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

func (s session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	s.log(ctx, query, args)
	return s.conn.ExecContext(ctx, query, args...) //nolint:wrapcheck // thin wrapper
}

func (s session) log(ctx context.Context, query string, args []any) {
	if s.logger != nil {
		s.logger.Log(ctx, query, args...)
	}
}

func (s session) dialect() Dialect { return s.d }

// DB is a connection pool bound to one Dialect.
type DB struct {
	session
	raw *sql.DB
}

// New wraps a *sql.DB opened with the driver of d.
func New(db *sql.DB, d Dialect) *DB {
	return &DB{session: session{conn: db, d: d}, raw: db}
}

// Debug returns a copy of db that passes every statement to l first.
func (db *DB) Debug(l Logger) *DB {
	cp := *db
	cp.logger = l
	return &cp
}

// Begin starts a transaction that logs like db.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	tx, err := db.raw.BeginTx(ctx, nil)
	if err != nil {
		return nil, err //nolint:wrapcheck // thin wrapper
	}
	return &Tx{session: session{conn: tx, d: db.d, logger: db.logger}, raw: tx}, nil
}

// Transaction runs fn in a transaction, committing when fn returns nil and
// rolling back when it fails or panics.
func (db *DB) Transaction(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Ping checks that the database is reachable.
func (db *DB) Ping(ctx context.Context) error { return db.raw.PingContext(ctx) } //nolint:wrapcheck // thin wrapper

func (db *DB) Dialect() Dialect { return db.d }

func (db *DB) Close() error { return db.raw.Close() } //nolint:wrapcheck // thin wrapper

// Tx is a transaction bound to its DB's Dialect.
type Tx struct {
	session
	raw *sql.Tx
}

func (tx *Tx) Commit() error { return tx.raw.Commit() } //nolint:wrapcheck // thin wrapper

func (tx *Tx) Rollback() error { return tx.raw.Rollback() } //nolint:wrapcheck // thin wrapper
