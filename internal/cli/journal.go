package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/decorum/internal/engine"
	"github.com/roach88/decorum/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	DBPath  string
	Class   string
	Context string
	Phase   string
	Failed  bool
}

// EntryView is the JSON form of a journal entry.
type EntryView struct {
	Seq       int64  `json:"seq"`
	ContextID string `json:"context_id"`
	Phase     string `json:"phase"`
	Class     string `json:"class"`
	Method    string `json:"method,omitempty"`
	Decorator string `json:"decorator"`
	Priority  int    `json:"priority"`
	Error     string `json:"error,omitempty"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recorded decorator dispatches",
		Long: `List the decorator dispatches recorded in a journal database,
in the order they happened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().StringVar(&opts.DBPath, "db", "", "path to journal database (required)")
	cmd.Flags().StringVar(&opts.Class, "class", "", "only dispatches for this test class")
	cmd.Flags().StringVar(&opts.Context, "context", "", "only dispatches for this context id")
	cmd.Flags().StringVar(&opts.Phase, "phase", "", "only this phase (before-all|before-test|after-test|after-all)")
	cmd.Flags().BoolVar(&opts.Failed, "failed", false, "only failed dispatches")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runJournal(cmd *cobra.Command, opts *JournalOptions) error {
	out := newPrinter(opts.RootOptions, cmd)

	filter := journal.Filter{Class: opts.Class, ContextID: opts.Context, Failed: opts.Failed}
	if opts.Phase != "" {
		phase, ok := engine.ParsePhase(opts.Phase)
		if !ok {
			return exitErrorf(ExitUsage, "unknown phase %q", opts.Phase)
		}
		filter.Phase = phase
	}

	// Opening would create an empty database, so check first.
	if _, err := os.Stat(opts.DBPath); err != nil {
		if os.IsNotExist(err) {
			return exitErrorf(ExitUsage, "database not found: %s", opts.DBPath)
		}
		return exitErrorf(ExitUsage, "cannot access database: %w", err)
	}

	j, err := journal.Open(opts.DBPath)
	if err != nil {
		return exitErrorf(ExitUsage, "failed to open database: %w", err)
	}
	defer j.Close()

	entries, err := j.List(cmd.Context(), filter)
	if err != nil {
		return exitErrorf(ExitUsage, "failed to read journal: %w", err)
	}
	out.Debugf("read %d dispatches from %s", len(entries), opts.DBPath)

	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, EntryView{
			Seq:       e.Seq,
			ContextID: e.ContextID,
			Phase:     e.Phase.String(),
			Class:     e.Class,
			Method:    e.Method,
			Decorator: e.Decorator,
			Priority:  e.Priority,
			Error:     e.Error,
		})
	}
	return out.Result(views, formatEntries(views))
}

func formatEntries(views []EntryView) string {
	if len(views) == 0 {
		return "No dispatches recorded\n"
	}

	var sb strings.Builder
	for _, v := range views {
		target := v.Class
		if v.Method != "" {
			target += "." + v.Method
		}
		fmt.Fprintf(&sb, "%4d  %-11s  %s  %s (priority %d)", v.Seq, v.Phase, target, v.Decorator, v.Priority)
		if v.Error != "" {
			fmt.Fprintf(&sb, "  FAILED: %s", v.Error)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
