package regress

import "testing"

// RunTests runs suite as subtests of t, one per scenario. env is called
// once; the suite is skipped when its guard does not match the returned
// dialect.
func RunTests(t *testing.T, env func(t *testing.T) *Env, suite Suite) {
	t.Helper()

	t.Run(suite.Name, func(t *testing.T) {
		e := env(t)
		if !suite.Applies(e.Dialect) {
			t.Skipf("dialect %s does not match %s", e.Dialect, suite.Guard)
		}
		for _, sc := range suite.Scenarios {
			t.Run(sc.Title(), func(t *testing.T) {
				e.Reset()
				sc.Run(t.Context(), t, e)
			})
		}
	})
}
