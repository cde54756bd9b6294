package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decorum/internal/decorator"
	"github.com/roach88/decorum/internal/engine"
	"github.com/roach88/decorum/internal/execution"
	"github.com/roach88/decorum/internal/harness"
	"github.com/roach88/decorum/internal/journal"
	"github.com/roach88/decorum/internal/unit"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	UnitsDir   string
	DBPath     string
	BestEffort bool
	Errors     bool
	Set        []string
}

// CaseView is the JSON form of one case outcome.
type CaseView struct {
	Method string `json:"method"`
	Passed bool   `json:"passed"`
	Error  string `json:"error,omitempty"`
}

// RunResult is the JSON payload of the run command.
type RunResult struct {
	Scenario string     `json:"scenario"`
	Class    string     `json:"class"`
	Passed   bool       `json:"passed"`
	Cases    []CaseView `json:"cases"`
	Error    string     `json:"error,omitempty"`
}

// NewRunCommand creates the run command. Decorators come from sources.
func NewRunCommand(rootOpts *RootOptions, sources ...decorator.Discoverer) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario.yaml>",
		Short: "Play a class scenario against the registered decorators",
		Long: `Play a class scenario through every lifecycle phase using the
decorators registered in this binary. Dispatches can be recorded to a
journal database with --db.

Properties declared by the scenario are overridden by --set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd, opts, sources, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.UnitsDir, "units", "", "directory of configuration units")
	cmd.Flags().StringVar(&opts.DBPath, "db", "", "journal database to record dispatches to")
	cmd.Flags().BoolVar(&opts.BestEffort, "best-effort", false, "run every teardown decorator even after a failure")
	cmd.Flags().BoolVar(&opts.Errors, "consider-errors", false, "pass failing case errors to after-test decorators")
	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "override property key=value (repeatable)")

	return cmd
}

func runScenario(cmd *cobra.Command, opts *RunOptions, sources []decorator.Discoverer, path string) error {
	out := newPrinter(opts.RootOptions, cmd)
	logger := newLogger(opts.RootOptions, out.diag())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		return exitErrorf(ExitUsage, "failed to load scenario: %w", err)
	}
	overrides, err := parseProperties(opts.Set)
	if err != nil {
		return exitErrorf(ExitUsage, "invalid --set: %w", err)
	}

	var loader execution.DescriptorLoader
	if opts.UnitsDir != "" {
		if err := requireDir(opts.UnitsDir); err != nil {
			return err
		}
		loader = unit.NewLoader(unit.Dir(opts.UnitsDir), unit.WithLogger(logger))
	}

	engineOpts := []engine.Option{engine.WithLogger(logger)}
	if opts.BestEffort {
		engineOpts = append(engineOpts, engine.WithTeardownPolicy(engine.BestEffortTeardown))
	}
	runnerOpts := []harness.Option{harness.WithLogger(logger)}
	if overrides != nil {
		runnerOpts = append(runnerOpts, harness.WithStaticProperties(overrides))
	}
	if opts.Errors {
		runnerOpts = append(runnerOpts, harness.WithConsiderErrors())
	}

	if opts.DBPath != "" {
		j, err := journal.Open(opts.DBPath)
		if err != nil {
			return exitErrorf(ExitUsage, "failed to open database: %w", err)
		}
		defer j.Close()

		clock, err := engine.ResumeClock(ctx, j)
		if err != nil {
			return exitErrorf(ExitUsage, "failed to read journal: %w", err)
		}
		engineOpts = append(engineOpts,
			engine.WithClock(clock),
			engine.WithObserver(journal.NewObserver(j, logger)),
		)
		runnerOpts = append(runnerOpts, harness.WithJournal(j))
	}

	executor := engine.New(decorator.NewRegistry(sources...), engineOpts...)
	contexts := execution.NewRegistry(loader, execution.WithLogger(logger))
	runner := harness.New(executor, contexts, runnerOpts...)

	out.Debugf("playing %s (%d methods)", scenario.Name, len(scenario.Methods))
	report := harness.Play(ctx, runner, scenario)

	result := resultOf(scenario.Name, report)
	if err := out.Result(result, formatRun(result)); err != nil {
		return err
	}
	if !result.Passed {
		return exitErrorf(ExitFailed, "scenario %s failed", scenario.Name)
	}
	return nil
}

func resultOf(name string, report *harness.Report) RunResult {
	result := RunResult{
		Scenario: name,
		Class:    report.Class,
		Passed:   !report.Failed(),
		Cases:    make([]CaseView, 0, len(report.Cases)),
	}
	if report.Err != nil {
		result.Error = report.Err.Error()
	}
	for _, c := range report.Cases {
		v := CaseView{Method: c.Method, Passed: c.Err == nil}
		if c.Err != nil {
			v.Error = c.Err.Error()
		}
		result.Cases = append(result.Cases, v)
	}
	return result
}

func formatRun(result RunResult) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Scenario: %s (%s)\n", result.Scenario, result.Class)
	for _, c := range result.Cases {
		if c.Passed {
			fmt.Fprintf(&sb, "  PASS  %s\n", c.Method)
			continue
		}
		fmt.Fprintf(&sb, "  FAIL  %s: %s\n", c.Method, strings.ReplaceAll(c.Error, "\n", "; "))
	}
	if result.Error != "" {
		fmt.Fprintf(&sb, "  class: %s\n", strings.ReplaceAll(result.Error, "\n", "; "))
	}
	if result.Passed {
		sb.WriteString("PASSED\n")
	} else {
		sb.WriteString("FAILED\n")
	}
	return sb.String()
}
