package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decorum/internal/unit"
)

// UnitsOptions holds flags for the units command.
type UnitsOptions struct {
	*RootOptions
	Set  []string
	Base []string
}

// UnitView is the JSON form of a merged descriptor.
type UnitView struct {
	Name            string         `json:"name,omitempty"`
	Named           bool           `json:"named"`
	Provider        string         `json:"provider,omitempty"`
	TransactionType string         `json:"transaction_type,omitempty"`
	Source          string         `json:"source"`
	Fingerprint     string         `json:"fingerprint"`
	Properties      map[string]any `json:"properties"`
}

// NewUnitsCommand creates the units command.
func NewUnitsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &UnitsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "units <dir>",
		Short: "Print the configuration units found under a directory",
		Long: `Discover persistence.xml, *.units.yaml and *.units.cue files under a
directory and print every unit with its merged properties.

Properties merge as: --base < unit properties < --set.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUnits(cmd, opts, args[0])
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringArrayVar(&opts.Set, "set", nil, "override property key=value (repeatable)")
	cmd.Flags().StringArrayVar(&opts.Base, "base", nil, "base property key=value (repeatable)")

	return cmd
}

func runUnits(cmd *cobra.Command, opts *UnitsOptions, dir string) error {
	out := newPrinter(opts.RootOptions, cmd)

	overrides, err := parseProperties(opts.Set)
	if err != nil {
		return exitErrorf(ExitUsage, "invalid --set: %w", err)
	}
	base, err := parseProperties(opts.Base)
	if err != nil {
		return exitErrorf(ExitUsage, "invalid --base: %w", err)
	}

	if err := requireDir(dir); err != nil {
		return err
	}

	logger := newLogger(opts.RootOptions, out.diag())
	loader := unit.NewLoader(unit.Dir(dir), unit.WithBaseProperties(base), unit.WithLogger(logger))

	descriptors, err := loader.LoadDescriptors(overrides)
	if err != nil {
		out.Fail(errorCode(err), err.Error(), nil)
		return exitErrorf(ExitFailed, "configuration units could not be loaded: %w", err)
	}

	views := make([]UnitView, 0, len(descriptors))
	for _, d := range descriptors {
		views = append(views, viewOf(d))
	}
	return out.Result(views, formatUnits(views))
}

func viewOf(d *unit.Descriptor) UnitView {
	name, named := d.UnitName()
	return UnitView{
		Name:            name,
		Named:           named,
		Provider:        d.Provider(),
		TransactionType: d.TransactionType(),
		Source:          d.Source(),
		Fingerprint:     d.Fingerprint(),
		Properties:      d.Properties(),
	}
}

func formatUnits(views []UnitView) string {
	if len(views) == 0 {
		return "No configuration units found\n"
	}

	var sb strings.Builder
	for i, v := range views {
		if i > 0 {
			sb.WriteString("\n")
		}
		name := v.Name
		if !v.Named {
			name = "(unnamed)"
		}
		fmt.Fprintf(&sb, "%s [%s]\n", name, v.Source)
		if v.Provider != "" {
			fmt.Fprintf(&sb, "  provider: %s\n", v.Provider)
		}
		if v.TransactionType != "" {
			fmt.Fprintf(&sb, "  transaction-type: %s\n", v.TransactionType)
		}
		fmt.Fprintf(&sb, "  fingerprint: %s\n", v.Fingerprint)
		for _, k := range slices.Sorted(maps.Keys(v.Properties)) {
			fmt.Fprintf(&sb, "  %s = %v\n", k, v.Properties[k])
		}
	}
	return sb.String()
}

func requireDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return exitErrorf(ExitUsage, "directory not found: %s", dir)
		}
		return exitErrorf(ExitUsage, "cannot access directory: %w", err)
	}
	if !info.IsDir() {
		return exitErrorf(ExitUsage, "not a directory: %s", dir)
	}
	return nil
}

// errorCode maps a load failure to its code, E001 when it carries none.
func errorCode(err error) string {
	if code := unit.ErrorCode(err); code != "" {
		return code
	}
	return unit.ErrCodeGeneric
}
