package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decorum/internal/unit"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
}

// SourceReport is the validation outcome of one configuration source.
type SourceReport struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Units  int    `json:"units"`
	Valid  bool   `json:"valid"`
	Code   string `json:"code,omitempty"`
	Line   int    `json:"line,omitempty"`
	Error  string `json:"error,omitempty"`
}

// ValidateResult is the JSON payload of the validate command.
type ValidateResult struct {
	Valid   bool           `json:"valid"`
	Sources []SourceReport `json:"sources"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate <dir>",
		Short: "Check every configuration source under a directory",
		Long: `Parse every configuration source under a directory and report each
one separately, rather than stopping at the first failure as loading does.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, opts, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	return cmd
}

func runValidate(cmd *cobra.Command, opts *ValidateOptions, dir string) error {
	out := newPrinter(opts.RootOptions, cmd)

	if err := requireDir(dir); err != nil {
		return err
	}

	resources, err := unit.Dir(dir).Discover()
	if err != nil {
		out.Fail(errorCode(err), err.Error(), nil)
		return exitErrorf(ExitUsage, "cannot scan directory: %w", err)
	}

	result := ValidateResult{Valid: true, Sources: make([]SourceReport, 0, len(resources))}
	for _, res := range resources {
		report := SourceReport{Path: res.Path, Format: string(res.Format), Valid: true}
		decls, err := unit.Parse(res)
		if err != nil {
			report.Valid = false
			report.Code = errorCode(err)
			report.Line = errorLine(err)
			report.Error = err.Error()
			result.Valid = false
		} else {
			report.Units = len(decls)
		}
		out.Debugf("checked %s (%s)", res.Path, res.Format)
		result.Sources = append(result.Sources, report)
	}

	if err := out.Result(result, formatValidate(result)); err != nil {
		return err
	}
	if !result.Valid {
		return exitErrorf(ExitFailed, "validation failed")
	}
	return nil
}

// errorLine returns the source line of a CUE failure, or 0.
func errorLine(err error) int {
	var le *unit.LoadError
	if errors.As(err, &le) && le.Pos.IsValid() {
		return le.Pos.Line()
	}
	return 0
}

func formatValidate(result ValidateResult) string {
	if len(result.Sources) == 0 {
		return "No configuration sources found\n"
	}

	var sb strings.Builder
	for _, s := range result.Sources {
		if s.Valid {
			fmt.Fprintf(&sb, "ok    %s (%d units)\n", s.Path, s.Units)
			continue
		}
		loc := s.Path
		if s.Line > 0 {
			loc = fmt.Sprintf("%s:%d", s.Path, s.Line)
		}
		fmt.Fprintf(&sb, "FAIL  %s [%s] %s\n", loc, s.Code, s.Error)
	}
	if result.Valid {
		sb.WriteString("All configuration sources are valid\n")
	}
	return sb.String()
}
