package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	checkTimeout time.Duration
	checkStrict  bool
	checkFormat  string
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check migration scripts against the applied state",
	Long: `Check the migration scripts and the migrations table for inconsistencies.

This command will:
- Report applied migrations whose script file is missing
- Report scripts whose up() or down() yields no recognizable schema change

Examples:
  migraview check                    # Report problems
  migraview check --strict           # Exit non-zero when problems are found
  migraview check --timeout 10s      # Set custom timeout
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(checkFormat)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(cmd.Context(), checkTimeout)
		defer cancel()

		r, closeState, err := newRunner(ctx)
		if err != nil {
			return err
		}
		defer closeState()

		report, err := r.Check(ctx)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		out := cmd.OutOrStdout()
		if format == formatJSON {
			if err := writeJSON(out, report); err != nil {
				return err
			}
		} else {
			fmt.Fprintf(out, "📊 Found %d scripts and %d applied migrations\n", report.Scripts, report.Applied)
			printNames(out, "⚠️  Applied migrations without a script file:", report.MissingScripts)
			printNames(out, "⚠️  Scripts with no schema changes in up():", report.EmptyUp)
			printNames(out, "⚠️  Scripts with no schema changes in down():", report.EmptyDown)
			if report.Clean() {
				fmt.Fprintln(out, "✅ Migrations are consistent")
			}
		}

		if checkStrict && !report.Clean() {
			return errors.New("check found problems")
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().DurationVarP(&checkTimeout, "timeout", "t", 10*time.Second, "Timeout for the check")
	checkCmd.Flags().BoolVar(&checkStrict, "strict", false, "Fail when problems are found")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", formatText, "Output format: text or json")
}
