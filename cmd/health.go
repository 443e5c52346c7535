package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

var healthTimeout time.Duration

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check access to the migration state",
	Long: `Check that the migrations table (or the state file) is accessible.

Examples:
  migraview health                    # Check the configured database
  migraview health --timeout 10s      # Set custom timeout
  migraview health --state-file s.yaml
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkStateHealth(cmd.Context(), cmd.OutOrStdout()); err != nil {
			return fmt.Errorf("health check failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Migration state is healthy and accessible")
		return nil
	},
}

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkStateHealth(ctx context.Context, w io.Writer) error {
	ctx, cancel := context.WithTimeout(ctx, healthTimeout)
	defer cancel()

	store, err := openState(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping: %w", err)
	}

	count, err := store.Count(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "📊 Found %d applied migrations\n", count)

	if _, err := scriptSource().ListAll(); err != nil {
		fmt.Fprintf(w, "⚠️  Migrations directory %s is not readable: %v\n", cfg.MigrationsPath, err)
	}
	return nil
}
