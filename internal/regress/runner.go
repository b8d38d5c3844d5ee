package regress

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"
)

// Outcome is the result of one scenario.
type Outcome struct {
	Scenario string        `json:"scenario" yaml:"scenario"`
	Passed   bool          `json:"passed" yaml:"passed"`
	Skipped  bool          `json:"skipped,omitempty" yaml:"skipped,omitempty"`
	Failures []string      `json:"failures,omitempty" yaml:"failures,omitempty"`
	Duration time.Duration `json:"duration" yaml:"duration"`
}

// Report is the result of running one suite.
type Report struct {
	Suite    string    `json:"suite" yaml:"suite"`
	Dialect  string    `json:"dialect" yaml:"dialect"`
	Outcomes []Outcome `json:"outcomes" yaml:"outcomes"`
}

// Failed returns the number of scenarios that ran and failed.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		if !o.Passed && !o.Skipped {
			n++
		}
	}
	return n
}

// OK reports whether no scenario failed.
func (r Report) OK() bool { return r.Failed() == 0 }

// Runner runs suites outside of go test.
type Runner struct {
	Env *Env
}

// Run executes every scenario of suite in order. A scenario that fails
// does not stop the ones after it.
func (r *Runner) Run(ctx context.Context, suite Suite) Report {
	report := Report{Suite: suite.Name, Dialect: r.Env.Dialect}
	logger := r.Env.Logger.With().Str("suite", suite.Name).Logger()

	if !suite.Applies(r.Env.Dialect) {
		logger.Info().Str("dialect", r.Env.Dialect).Msg("suite does not apply, skipping")
		for _, sc := range suite.Scenarios {
			report.Outcomes = append(report.Outcomes, Outcome{Scenario: sc.Title(), Skipped: true})
		}
		return report
	}

	for _, sc := range suite.Scenarios {
		outcome := r.runScenario(ctx, sc)
		event := logger.Info()
		if !outcome.Passed {
			event = logger.Error().Strs("failures", outcome.Failures)
		}
		event.Str("scenario", outcome.Scenario).Dur("duration", outcome.Duration).Bool("passed", outcome.Passed).Msg("scenario finished")
		report.Outcomes = append(report.Outcomes, outcome)
	}
	return report
}

func (r *Runner) runScenario(ctx context.Context, sc Scenario) Outcome {
	r.Env.Reset()
	t := &scenarioT{}
	start := time.Now()

	done := make(chan struct{})
	go func() {
		defer close(done)
		defer func() {
			if p := recover(); p != nil {
				t.Errorf("panic: %v", p)
			}
		}()
		sc.Run(ctx, t, r.Env)
	}()
	<-done

	failures := t.failures()
	return Outcome{
		Scenario: sc.Title(),
		Passed:   len(failures) == 0,
		Failures: failures,
		Duration: time.Since(start),
	}
}

// scenarioT implements require.TestingT for scenarios run by a Runner.
// FailNow stops the scenario's goroutine the way testing.T does.
type scenarioT struct {
	mu   sync.Mutex
	errs []string
}

func (t *scenarioT) Errorf(format string, args ...any) {
	t.mu.Lock()
	t.errs = append(t.errs, fmt.Sprintf(format, args...))
	t.mu.Unlock()
}

func (t *scenarioT) FailNow() {
	t.mu.Lock()
	if len(t.errs) == 0 {
		t.errs = append(t.errs, "failed")
	}
	t.mu.Unlock()
	runtime.Goexit()
}

func (t *scenarioT) Helper() {}

func (t *scenarioT) failures() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.errs...)
}
