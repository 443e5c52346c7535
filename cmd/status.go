package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/migraview/config"
	"github.com/ridoystarlord/migraview/loader"
)

var statusExport string

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show applied and pending migrations",
	Long: `Show applied migrations with their batch and the scripts still pending.

Examples:
  migraview status
  migraview status --export migrations.yaml   # Snapshot the applied state for --state-file
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		r, closeState, err := newRunner(ctx)
		if err != nil {
			return err
		}
		defer closeState()

		applied, pending, err := r.Status(ctx)
		if err != nil {
			return fmt.Errorf("status error: %w", err)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "✅ Applied migrations:")
		for _, m := range applied {
			fmt.Fprintf(out, "   - %s %s\n", m.Name, gray.Sprintf("(batch %d)", m.Batch))
		}

		fmt.Fprintln(out, "\n🕒 Pending migrations:")
		for _, name := range pending {
			fmt.Fprintln(out, "   -", name)
		}

		if statusExport != "" {
			if err := loader.WriteStateYAML(config.AppFs, statusExport, applied); err != nil {
				return fmt.Errorf("export failed: %w", err)
			}
			fmt.Fprintf(out, "\n📝 Exported %d applied migrations to %s\n", len(applied), statusExport)
		}
		return nil
	},
}

func init() {
	statusCmd.Flags().StringVarP(&statusExport, "export", "e", "", "Write the applied migrations to a YAML state file")
}
