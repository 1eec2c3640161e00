package cmd

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/diff"
	"github.com/ridoystarlord/ssc/filesync"
)

var diffCmd = &cobra.Command{
	Use:   "diff [name]",
	Short: "Show what a pull would change in the local files",
	Long: `Read the database and compare the scripts it would produce with the
files on disk. Nothing is written.

Examples:
  ssc diff              # Compare against the first connection
  ssc diff staging      # Compare against a named connection
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadValidConfig()
		if err != nil {
			return err
		}
		conn, err := cfg.Connection(firstArg(args))
		if err != nil {
			return err
		}

		units, err := generate(cmd.Context(), cfg, conn)
		if err != nil {
			return err
		}
		engine, err := filesync.New(syncOptions(cfg))
		if err != nil {
			return err
		}
		ops, err := diff.Plan(engine, units)
		if err != nil {
			return err
		}

		showTextDiff(cmd.OutOrStdout(), ops)
		return nil
	},
}

func showTextDiff(out io.Writer, ops []diff.Operation) {
	if len(ops) == 0 {
		fmt.Fprintln(out, "✅ No differences found between database and local files")
		return
	}

	green := color.New(color.FgGreen)
	yellow := color.New(color.FgYellow)
	red := color.New(color.FgRed)

	for _, op := range ops {
		switch op.Type {
		case diff.CreateFile:
			green.Fprintf(out, "  + %s\n", op.Path)
		case diff.UpdateFile:
			yellow.Fprintf(out, "  ~ %s (+%d -%d)\n", op.Path, op.Added, op.Removed)
		case diff.DeleteFile:
			red.Fprintf(out, "  - %s\n", op.Path)
		}
	}

	counts := diff.Summary(ops)
	fmt.Fprintf(out, "\n📊 %d to add, %d to update, %d to remove\n",
		counts[diff.CreateFile], counts[diff.UpdateFile], counts[diff.DeleteFile])
}
