package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/migraview/extract"
	"github.com/ridoystarlord/migraview/runner"
)

var diffFormat string

var diffCmd = &cobra.Command{
	Use:   "diff <migration>",
	Short: "Compare the up() and down() of one migration",
	Long: `Show what up() applies and what down() reverts for a single migration,
and flag tables or columns that up() adds but down() never drops.

The migration is named without the .php extension. No database access is needed.

Examples:
  migraview diff 2024_03_01_000000_add_bio_to_users
  migraview diff 2024_03_01_000000_add_bio_to_users --format json
`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := parseFormat(diffFormat)
		if err != nil {
			return err
		}

		scripts := scriptSource()
		name := strings.TrimSuffix(args[0], ".php")
		d := runner.New(scripts, scripts, nil).Diff(name)

		if format == formatJSON {
			return writeJSON(cmd.OutOrStdout(), d)
		}
		showScriptDiff(cmd.OutOrStdout(), d)
		return nil
	},
}

func init() {
	diffCmd.Flags().StringVarP(&diffFormat, "format", "f", formatText, "Output format: text or json")
	rootCmd.AddCommand(diffCmd)
}

func showScriptDiff(w io.Writer, d runner.ScriptDiff) {
	fmt.Fprintf(w, "🌳 %s\n", bold.Sprint(d.Migration))
	fmt.Fprintln(w, strings.Repeat("=", 50))

	if extract.IsMissing(d.Up) {
		red.Fprintf(w, "❌ %s\n", extract.MissingScriptText)
		return
	}

	fmt.Fprintln(w, "\n➕ up():")
	showProcedure(w, d.Up)
	fmt.Fprintln(w, "\n➖ down():")
	showProcedure(w, d.Down)

	if len(d.Unreverted) == 0 {
		fmt.Fprintln(w, "\n✅ down() reverts everything up() adds")
		return
	}
	fmt.Fprintln(w)
	yellow.Fprintln(w, "⚠️  Not reverted by down():")
	for _, name := range d.Unreverted {
		yellow.Fprintf(w, "   - %s\n", name)
	}
}

func showProcedure(w io.Writer, actions []extract.Action) {
	if len(actions) == 0 {
		red.Fprintln(w, "   no schema found!!!")
		return
	}
	printActions(w, "  ", actions)
}
