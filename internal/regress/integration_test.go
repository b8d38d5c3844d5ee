//go:build integration

package regress_test

import (
	"database/sql"
	"os"
	"regexp"
	"testing"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/rs/zerolog"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/mssql"

	"github.com/ormkit/ormgen/internal/regress"
	"github.com/ormkit/ormgen/orm"
)

const (
	mssqlImage    = "mcr.microsoft.com/mssql/server:2022-CU14-ubuntu-22.04"
	mssqlPassword = "Ormgen_Test1"
)

var mssqlDialect = regexp.MustCompile(`^mssql`)

// mssqlDSN returns ORMGEN_TEST_MSSQL_DSN, or starts a throwaway SQL Server
// container when it is unset.
func mssqlDSN(t *testing.T) string {
	t.Helper()

	if dsn := os.Getenv("ORMGEN_TEST_MSSQL_DSN"); dsn != "" {
		return dsn
	}

	ctr, err := mssql.Run(t.Context(), mssqlImage,
		mssql.WithAcceptEULA(),
		mssql.WithPassword(mssqlPassword),
	)
	testcontainers.CleanupContainer(t, ctr)
	if err != nil {
		t.Fatalf("start sql server: %v", err)
	}

	dsn, err := ctr.ConnectionString(t.Context())
	if err != nil {
		t.Fatalf("connection string: %v", err)
	}
	return dsn
}

func openMSSQL(t *testing.T) *regress.Env {
	t.Helper()

	raw, err := sql.Open("sqlserver", mssqlDSN(t))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = raw.Close() })
	if err := raw.PingContext(t.Context()); err != nil {
		t.Fatalf("ping: %v", err)
	}

	logger := zerolog.New(zerolog.NewTestWriter(t)).Level(zerolog.DebugLevel)
	return regress.NewEnv(orm.New(raw, orm.MSSQL), logger)
}

func requireMSSQL(t *testing.T) {
	t.Helper()

	if d := os.Getenv("ORMGEN_TEST_DIALECT"); !mssqlDialect.MatchString(d) {
		t.Skipf("ORMGEN_TEST_DIALECT=%q, MSSQL regressions need mssql", d)
	}
}

func TestMSSQLRegressions(t *testing.T) {
	requireMSSQL(t)

	regress.RunTests(t, openMSSQL, regress.MSSQLSuite)
}

func TestMSSQLRegressionsRunner(t *testing.T) {
	requireMSSQL(t)

	env := openMSSQL(t)
	runner := &regress.Runner{Env: env}

	// The second run force-syncs over the tables the first one left behind.
	for run := range 2 {
		report := runner.Run(t.Context(), regress.MSSQLSuite)
		if len(report.Outcomes) != len(regress.MSSQLSuite.Scenarios) {
			t.Fatalf("run %d: outcomes = %d, want %d", run, len(report.Outcomes), len(regress.MSSQLSuite.Scenarios))
		}
		for _, o := range report.Outcomes {
			if !o.Passed {
				t.Errorf("run %d: %s: %v", run, o.Scenario, o.Failures)
			}
		}
	}
}
