package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/migraview/config"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a .migraview.yaml config file",
	Long: `Write a .migraview.yaml in the current directory with the current settings.

The database URL is not written; keep it in .env as DATABASE_URL.

Examples:
  migraview init                              # Defaults
  migraview init --path app/migrations        # Custom migrations directory
  migraview init --force                      # Overwrite an existing file
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		if _, err := config.AppFs.Stat(config.FileName); err == nil && !initForce {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.FileName)
		}

		if err := config.Save(cfg, config.FileName); err != nil {
			return fmt.Errorf("error creating %s: %w", config.FileName, err)
		}

		fmt.Fprintf(out, "✅ Created %s\n", config.FileName)
		fmt.Fprintf(out, "📁 Migrations directory: %s\n", cfg.MigrationsPath)
		fmt.Fprintf(out, "🗄️  Migrations table: %s\n", cfg.MigrationsTable)
		fmt.Fprintln(out, "🚀 Run 'migraview migrate' to preview pending migrations")
		return nil
	},
}

func init() {
	initCmd.Flags().BoolVar(&initForce, "force", false, "Overwrite an existing config file")
}
