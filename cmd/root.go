package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/migraview/config"
	"github.com/ridoystarlord/migraview/debug"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "migraview",
	Short: "Preview Laravel migrations before you run them",
	Long: `migraview reads Laravel migration scripts and shows the schema changes
that migrate and migrate:rollback would make, without touching the database.

Examples:

  migraview migrate
  migraview rollback --mode latest
  migraview rollback --format json
  migraview status --state-file migrations.yaml
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(cfgFile, cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		debug.Init(cfg.Debug)
		debug.Debug("Configuration loaded",
			"config_file", cfg.ConfigFile,
			"migrations_path", cfg.MigrationsPath,
			"migrations_table", cfg.MigrationsTable,
			"state_file", cfg.StateFile)
		return nil
	},
}

// Execute runs the CLI
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("❌", err)
		os.Exit(1)
	}
}

// Register subcommands
func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "Config file (default searches ./.migraview.yaml, $HOME, $HOME/.config/migraview)")
	flags.StringP("path", "p", "", "Migrations directory (default database/migrations)")
	flags.String("table", "", "Migrations table name (default migrations)")
	flags.String("state-file", "", "Read applied migrations from a YAML file instead of the database")
	flags.String("database-url", "", "Database URL (default $DATABASE_URL)")
	flags.Bool("debug", false, "Enable debug logging")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(rollbackCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(initCmd)
}
