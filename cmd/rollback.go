package cmd

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/migraview/runner"
)

var (
	rollbackMode   string
	rollbackFormat string
	steps          int
)

func init() {
	rollbackCmd.Flags().StringVarP(&rollbackMode, "mode", "m", "", "Visualization mode: default, clean or latest")
	rollbackCmd.Flags().StringVarP(&rollbackFormat, "format", "f", formatText, "Output format: text or json")
	rollbackCmd.Flags().IntVarP(&steps, "steps", "s", 0, "Preview rolling back only the last N migrations")
}

var rollbackCmd = &cobra.Command{
	Use:   "rollback",
	Short: "Preview what a rollback would undo",
	Long: `Show what the down() method of every migration a rollback reverts would change.

Examples:
  migraview rollback                 # Table and batch tree of every applied migration
  migraview rollback --mode clean    # One plan line per migration
  migraview rollback --mode latest   # Only the latest batch
  migraview rollback --steps 3       # Only the last 3 migrations
  migraview rollback --format json   # Machine readable preview
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if steps < 0 {
			return fmt.Errorf("steps must be at least 1")
		}
		mode, err := runner.ParseRollbackMode(rollbackMode)
		if err != nil {
			return err
		}
		format, err := parseFormat(rollbackFormat)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		r, closeState, err := newRunner(ctx)
		if err != nil {
			return err
		}
		defer closeState()

		opts := runner.RollbackOptions{Mode: mode, Steps: steps}
		return previewRollback(ctx, cmd.OutOrStdout(), r, opts, format, rollbackMode == "")
	},
}

func previewRollback(ctx context.Context, w io.Writer, r *runner.Runner, opts runner.RollbackOptions, format string, defaulted bool) error {
	previews, err := r.PreviewRollback(ctx, opts)
	if err != nil {
		return fmt.Errorf("rollback preview failed: %w", err)
	}

	if format == formatJSON {
		return writeJSON(w, previews)
	}

	fmt.Fprintln(w, "🔍 Analyzing migrations...")
	if defaulted && opts.Steps == 0 {
		yellow.Fprintln(w, "Using default rollback visualization mode...")
	}
	if len(previews) == 0 {
		fmt.Fprintln(w, "⚠️  No migrations have been run yet.")
		return nil
	}

	switch {
	case opts.Steps > 0:
		return printRollbackPlan(w, previews)
	case opts.Mode == runner.ModeClean:
		green.Fprintln(w, "Rollback Plan (Clean):")
		for _, p := range previews {
			fmt.Fprintf(w, "rollback: batch [%d] - file [%s]\n", p.Batch, p.Migration)
		}
		return nil
	case opts.Mode == runner.ModeLatest:
		return printLatestBatch(w, previews)
	default:
		return printRollbackPlan(w, previews)
	}
}

func printRollbackPlan(w io.Writer, previews []runner.RollbackPreview) error {
	rows := make([][]string, 0, len(previews))
	for i, p := range previews {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			p.Migration,
			strconv.Itoa(p.Batch),
			formatTimestamp(p.Migration),
		})
	}
	if err := printTable(w, []string{"#", "Migration", "Batch", "Timestamp"}, rows); err != nil {
		return err
	}

	printHeader(w, "Migration Rollback Plan", "Newest to Oldest")
	for _, group := range runner.GroupByBatch(previews) {
		cyan.Fprintf(w, "Batch %d\n", group.Batch)
		printTree(w, group.Migrations)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "⚠️  These migrations will be rolled back if you run `php artisan migrate:rollback`")
	return nil
}

func printLatestBatch(w io.Writer, previews []runner.RollbackPreview) error {
	green.Fprintf(w, "Latest Batch: %d\n", previews[0].Batch)

	rows := make([][]string, 0, len(previews))
	for _, p := range previews {
		rows = append(rows, []string{p.Migration})
	}
	if err := printTable(w, []string{"Migration File"}, rows); err != nil {
		return err
	}
	printTree(w, previews)
	return nil
}

func printTree(w io.Writer, previews []runner.RollbackPreview) {
	for i, p := range previews {
		fmt.Fprintf(w, "%s %s\n", green.Sprint(treePrefix(i, len(previews))), bold.Sprint(p.Migration))
		printActions(w, "     ", p.Actions)
	}
}
