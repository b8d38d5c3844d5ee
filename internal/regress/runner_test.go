package regress_test

import (
	"context"
	"regexp"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ormkit/ormgen/internal/regress"
)

func newTestEnv(dialect string) *regress.Env {
	return &regress.Env{
		Dialect:  dialect,
		Recorder: regress.NewRecorder(nil),
		Logger:   zerolog.Nop(),
	}
}

func TestRunnerOutcomes(t *testing.T) {
	t.Parallel()

	var ranAfterFailNow bool
	suite := regress.Suite{
		Name:  "runner",
		Guard: regexp.MustCompile(`^mssql`),
		Scenarios: []regress.Scenario{
			{Name: "passes", Run: func(context.Context, require.TestingT, *regress.Env) {}},
			{Name: "fails", Issue: "#1", Run: func(_ context.Context, t require.TestingT, _ *regress.Env) {
				require.Equal(t, 1, 2)
				ranAfterFailNow = true
			}},
			{Name: "soft failure", Run: func(_ context.Context, t require.TestingT, _ *regress.Env) {
				assert.True(t, false, "first")
				assert.True(t, false, "second")
			}},
			{Name: "panics", Run: func(context.Context, require.TestingT, *regress.Env) {
				panic("boom")
			}},
		},
	}

	runner := &regress.Runner{Env: newTestEnv("mssql")}
	report := runner.Run(t.Context(), suite)

	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, "runner", report.Suite)
	assert.Equal(t, "mssql", report.Dialect)

	assert.True(t, report.Outcomes[0].Passed)
	assert.Empty(t, report.Outcomes[0].Failures)

	assert.Equal(t, "fails (#1)", report.Outcomes[1].Scenario)
	assert.False(t, report.Outcomes[1].Passed)
	require.Len(t, report.Outcomes[1].Failures, 1)
	assert.Contains(t, report.Outcomes[1].Failures[0], "Not equal")
	assert.False(t, ranAfterFailNow, "scenario kept running after FailNow")

	assert.False(t, report.Outcomes[2].Passed)
	assert.Len(t, report.Outcomes[2].Failures, 2)

	assert.False(t, report.Outcomes[3].Passed)
	assert.Contains(t, report.Outcomes[3].Failures[0], "panic: boom")

	assert.Equal(t, 3, report.Failed())
	assert.False(t, report.OK())
}

func TestRunnerSkipsOnGuardMismatch(t *testing.T) {
	t.Parallel()

	ran := false
	suite := regress.Suite{
		Name:  "guarded",
		Guard: regexp.MustCompile(`^mssql`),
		Scenarios: []regress.Scenario{
			{Name: "a", Run: func(context.Context, require.TestingT, *regress.Env) { ran = true }},
			{Name: "b", Run: func(context.Context, require.TestingT, *regress.Env) { ran = true }},
		},
	}

	report := (&regress.Runner{Env: newTestEnv("postgres")}).Run(t.Context(), suite)

	assert.False(t, ran)
	require.Len(t, report.Outcomes, 2)
	for _, o := range report.Outcomes {
		assert.True(t, o.Skipped)
	}
	assert.True(t, report.OK())
}

func TestRunnerResetsRecorderPerScenario(t *testing.T) {
	t.Parallel()

	env := newTestEnv("mssql")
	env.Recorder.Log(t.Context(), "SELECT 1")

	var seen []int
	record := func(_ context.Context, _ require.TestingT, env *regress.Env) {
		seen = append(seen, len(env.Recorder.Statements()))
		env.Recorder.Log(context.Background(), "SELECT 2")
	}
	suite := regress.Suite{
		Name:      "reset",
		Scenarios: []regress.Scenario{{Name: "first", Run: record}, {Name: "second", Run: record}},
	}

	report := (&regress.Runner{Env: env}).Run(t.Context(), suite)
	require.True(t, report.OK())
	assert.Equal(t, []int{0, 0}, seen)
}

func TestSuiteApplies(t *testing.T) {
	t.Parallel()

	guarded := regress.Suite{Guard: regexp.MustCompile(`^mssql`)}
	assert.True(t, guarded.Applies("mssql"))
	assert.False(t, guarded.Applies("postgres"))
	assert.False(t, guarded.Applies("mysql"))

	open := regress.Suite{}
	assert.True(t, open.Applies("mysql"))
}

func TestRunTestsSkipsOnGuardMismatch(t *testing.T) {
	t.Parallel()

	ran := false
	suite := regress.Suite{
		Name:      "guarded",
		Guard:     regexp.MustCompile(`^mssql`),
		Scenarios: []regress.Scenario{{Name: "a", Run: func(context.Context, require.TestingT, *regress.Env) { ran = true }}},
	}
	regress.RunTests(t, func(*testing.T) *regress.Env { return newTestEnv("mysql") }, suite)
	assert.False(t, ran)
}
