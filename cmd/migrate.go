package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/migraview/runner"
	"github.com/ridoystarlord/migraview/watch"
)

var (
	migrateFormat string
	migrateWatch  bool
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Preview pending migrations",
	Long: `Show what the up() method of every pending migration would change.

Examples:
  migraview migrate                  # Preview pending migrations
  migraview migrate --format json    # Machine readable preview
  migraview migrate --watch          # Re-run the preview when scripts change
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(migrateFormat)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		r, closeState, err := newRunner(ctx)
		if err != nil {
			return err
		}
		defer closeState()

		preview := func() error {
			return previewMigrate(ctx, cmd.OutOrStdout(), r, format)
		}
		if !migrateWatch {
			return preview()
		}

		ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
		defer stop()

		w, err := watch.NewWatcher(cfg.MigrationsPath, preview)
		if err != nil {
			return err
		}
		w.OnError = func(err error) { fmt.Fprintln(cmd.ErrOrStderr(), "❌", err) }
		fmt.Fprintf(cmd.OutOrStdout(), "👀 Watching %s for changes (Ctrl+C to stop)\n", cfg.MigrationsPath)
		return w.Run(ctx)
	},
}

func init() {
	migrateCmd.Flags().StringVarP(&migrateFormat, "format", "f", formatText, "Output format: text or json")
	migrateCmd.Flags().BoolVarP(&migrateWatch, "watch", "w", false, "Watch the migrations directory and re-run the preview")
}

func previewMigrate(ctx context.Context, w io.Writer, r *runner.Runner, format string) error {
	previews, err := r.PreviewPending(ctx)
	if err != nil {
		return fmt.Errorf("migration preview failed: %w", err)
	}

	if format == formatJSON {
		return writeJSON(w, previews)
	}

	fmt.Fprintln(w, "🔍 Scanning for pending migrations...")
	if len(previews) == 0 {
		fmt.Fprintln(w, "✅ No pending migrations found.")
		return nil
	}

	printHeader(w, fmt.Sprintf("⚠️  Pending Migrations (%d)", len(previews)), cfg.MigrationsPath)
	for _, p := range previews {
		fmt.Fprintf(w, "%s %s\n", blue.Sprint("•"), bold.Sprint(p.Migration))
		printActions(w, "  ", p.Actions)
		if len(p.Actions) == 0 {
			red.Fprintln(w, "   no schema found!!!")
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "ℹ️  This is a preview of what will happen if you run `php artisan migrate`.")
	return nil
}
