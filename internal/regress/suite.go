package regress

import (
	"context"
	"regexp"

	"github.com/stretchr/testify/require"
)

// Suite is a named group of scenarios guarded by a dialect pattern.
type Suite struct {
	Name string
	// Guard is matched against Env.Dialect. A nil guard matches every
	// dialect.
	Guard     *regexp.Regexp
	Scenarios []Scenario
}

// Applies reports whether the suite runs on dialect.
func (s Suite) Applies(dialect string) bool {
	return s.Guard == nil || s.Guard.MatchString(dialect)
}

// Scenario is a single regression check. Run asserts through t; a failed
// require assertion ends the scenario.
type Scenario struct {
	Name string
	// Issue is the upstream report the scenario guards against, e.g.
	// "#9008". Empty when there is none.
	Issue string
	Run   func(ctx context.Context, t require.TestingT, env *Env)
}

// Title is the scenario name with its issue reference, if any.
func (s Scenario) Title() string {
	if s.Issue == "" {
		return s.Name
	}
	return s.Name + " (" + s.Issue + ")"
}
