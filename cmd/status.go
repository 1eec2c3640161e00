package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/filesync"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show local changes since the last pull",
	Long: `Compare the generated files on disk with the checksums recorded by the
last pull. No database connection is needed.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}

		report, err := filesync.Status(syncOptions(cfg))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if !report.Dirty() {
			fmt.Fprintf(out, "✅ %d file(s) match the last pull\n", report.Clean)
			return nil
		}

		printPaths := func(title string, paths []string) {
			if len(paths) == 0 {
				return
			}
			fmt.Fprintln(out, title)
			for _, p := range paths {
				fmt.Fprintln(out, "   -", p)
			}
		}
		printPaths("🟡 Modified:", report.Modified)
		printPaths("🔵 Untracked:", report.Untracked)
		printPaths("🔴 Missing:", report.Missing)
		return nil
	},
}
