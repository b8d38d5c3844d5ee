package cli

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/ormkit/ormgen/internal/regress"
)

// RegressOptions holds flags for the regress command.
type RegressOptions struct {
	*RootOptions
	Suites []string
	JSON   bool
}

// NewRegressCommand creates the regress command.
func NewRegressCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RegressOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "regress",
		Short: "Run the dialect regression suites against a database",
		Long: `Run the dialect regression suites against the configured database.

Suites whose dialect guard does not match the configured dialect are
reported as skipped. Scenarios drop and recreate their tables: never run
this against a shared or production database.

Exit codes:
  0 - All scenarios passed or were skipped
  1 - One or more scenarios failed
  2 - Command error (bad flags, config or connection)`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRegress(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Suites, "suite", nil, "only run suites with these names")
	cmd.Flags().BoolVar(&opts.JSON, "json", false, "print the reports as JSON")

	return cmd
}

func runRegress(cmd *cobra.Command, opts *RegressOptions) error {
	s, err := opts.settings()
	if err != nil {
		return err
	}
	logger, err := opts.logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	suites, err := pickSuites(regress.Suites(), opts.Suites)
	if err != nil {
		return NewExitError(ExitCommandError, err)
	}

	ctx := cmd.Context()
	db, err := s.Open(ctx)
	if err != nil {
		return NewExitError(ExitCommandError, err)
	}
	defer func() { _ = db.Close() }()

	runner := &regress.Runner{Env: regress.NewEnv(db, logger)}
	reports := make([]regress.Report, 0, len(suites))
	failed := 0
	for _, suite := range suites {
		report := runner.Run(ctx, suite)
		failed += report.Failed()
		reports = append(reports, report)
	}

	if err := writeReports(cmd.OutOrStdout(), opts.JSON, reports); err != nil {
		return err
	}
	if failed > 0 {
		return NewExitError(ExitFailure, fmt.Errorf("%d scenario(s) failed", failed))
	}
	return nil
}

func pickSuites(all []regress.Suite, names []string) ([]regress.Suite, error) {
	if len(names) == 0 {
		return all, nil
	}
	picked := make([]regress.Suite, 0, len(names))
	for _, name := range names {
		i := slices.IndexFunc(all, func(s regress.Suite) bool { return s.Name == name })
		if i < 0 {
			return nil, fmt.Errorf("unknown suite %q", name)
		}
		picked = append(picked, all[i])
	}
	return picked, nil
}

func writeReports(w io.Writer, asJSON bool, reports []regress.Report) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(reports) //nolint:wrapcheck // output error
	}
	for _, r := range reports {
		fmt.Fprintf(w, "%s (%s)\n", r.Suite, r.Dialect)
		for _, o := range r.Outcomes {
			status := "PASS"
			switch {
			case o.Skipped:
				status = "SKIP"
			case !o.Passed:
				status = "FAIL"
			}
			fmt.Fprintf(w, "  %s  %s (%s)\n", status, o.Scenario, o.Duration.Round(time.Millisecond))
			for _, f := range o.Failures {
				fmt.Fprintf(w, "        %s\n", f)
			}
		}
	}
	return nil
}
