package cmd

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/database"
	"github.com/ridoystarlord/ssc/runner"
)

var (
	pushSkip   bool
	pushDryRun bool
)

// ErrAborted is returned when the user declines a confirmation.
var ErrAborted = errors.New("command aborted")

const pushWarning = "WARNING! All local SQL files will be executed against the requested database.\n" +
	"This can not be undone!\n" +
	"Make sure to backup your database first."

var pushCmd = &cobra.Command{
	Use:   "push [name]",
	Short: "Execute all local SQL files against the database",
	Long: `Replays every generated file against the database behind the named
connection (the first connection when omitted). Files run kind by kind:
schemas, tables, types, views, functions, stored procedures, triggers,
data and jobs. The first failing batch stops the push.`,
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

		files, err := runner.Files(cfg.Root(), cfg.Layout())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(files) == 0 {
			fmt.Fprintf(out, "⚠️  No SQL files found in %s\n", cfg.Root())
			return nil
		}

		if pushDryRun {
			fmt.Fprintf(out, "📊 %d file(s) would be pushed to %s:\n\n", len(files), conn.Database)
			return runner.Preview(files, out)
		}

		if !pushSkip {
			color.New(color.FgYellow).Fprintln(out, pushWarning)
			ok, err := newPrompter(cmd.InOrStdin(), out).confirm("Are you sure you want to continue?")
			if err != nil {
				return err
			}
			if !ok {
				return ErrAborted
			}
		}

		ctx := cmd.Context()
		db, err := database.Open(ctx, conn)
		if err != nil {
			return err
		}
		defer db.Close()

		// Session settings such as SET IDENTITY_INSERT must survive between
		// batches, so everything runs on one connection.
		session, err := db.Conn(ctx)
		if err != nil {
			return fmt.Errorf("could not acquire connection: %w", err)
		}
		defer session.Close()

		if err := runner.Run(ctx, session, files, runner.Options{Out: out}); err != nil {
			return err
		}

		fmt.Fprintln(out, "✅", color.GreenString("Successfully pushed!"))
		return nil
	},
}

func init() {
	pushCmd.Flags().BoolVarP(&pushSkip, "skip", "s", false, "Skip user warning prompt")
	pushCmd.Flags().BoolVar(&pushDryRun, "dry-run", false, "List the files and batches that would run without connecting")
}
