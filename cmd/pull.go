package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/database"
	"github.com/ridoystarlord/ssc/filesync"
	"github.com/ridoystarlord/ssc/generator"
	"github.com/ridoystarlord/ssc/introspect"
	"github.com/ridoystarlord/ssc/schema"
)

var pullParallel int

var pullCmd = &cobra.Command{
	Use:   "pull [name]",
	Short: "Generate SQL files for all tables, stored procedures, functions, etc.",
	Long: `Reads the catalog of the database behind the named connection (the first
connection when omitted) and writes one file per object below the output root.
Files that are no longer produced are removed.`,
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
		return pull(cmd.Context(), cmd, cfg, conn)
	},
}

func init() {
	pullCmd.Flags().IntVar(&pullParallel, "parallel", 4, "Maximum number of concurrent catalog queries")
}

func pull(ctx context.Context, cmd *cobra.Command, cfg *config.Config, conn database.Connection) error {
	fmt.Fprintf(cmd.OutOrStdout(), "🔵 Pulling %s from %s...\n", conn.Database, conn.Server)

	units, err := generate(ctx, cfg, conn)
	if err != nil {
		return err
	}

	engine, err := filesync.New(syncOptions(cfg))
	if err != nil {
		return err
	}
	for _, unit := range units {
		if err := engine.Write(unit); err != nil {
			return err
		}
	}
	stats, err := engine.Finalize()
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "✅", stats.Colored())
	return nil
}

// generate reads the catalog behind conn and renders every script unit.
func generate(ctx context.Context, cfg *config.Config, conn database.Connection) ([]schema.ScriptUnit, error) {
	db, err := database.Open(ctx, conn)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	cat, err := introspect.Fetch(ctx, db, introspect.Options{
		Database: conn.Database,
		Jobs:     cfg.Output.Jobs != "",
		Data:     cfg.Data,
		Parallel: pullParallel,
	})
	if err != nil {
		return nil, err
	}

	gen := generator.New(generator.Options{
		Idempotency:           cfg.Idempotency,
		IncludeConstraintName: cfg.IncludeConstraintName,
	})
	units := gen.Units(cat, cfg.Layout())
	slog.Debug("generated scripts", "units", len(units))
	return units, nil
}

func syncOptions(cfg *config.Config) filesync.Options {
	return filesync.Options{
		Root:  cfg.Root(),
		Files: cfg.Files,
		EOL:   cfg.EOL,
	}
}

func firstArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}
