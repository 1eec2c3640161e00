package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/database"
)

var healthCmd = &cobra.Command{
	Use:   "health [name]",
	Short: "Check database connectivity",
	Long: `Check if the database behind a connection is accessible and responsive.

Examples:
  ssc health                    # Check the first connection
  ssc health staging            # Check a named connection
  ssc health --timeout 10s      # Set custom timeout
`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		conn, err := cfg.Connection(firstArg(args))
		if err != nil {
			return err
		}
		if err := checkDatabaseHealth(cmd, conn); err != nil {
			return fmt.Errorf("database health check failed: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "✅ Database is healthy and accessible")
		return nil
	},
}

var healthTimeout time.Duration

func init() {
	healthCmd.Flags().DurationVarP(&healthTimeout, "timeout", "t", 5*time.Second, "Timeout for health check")
}

func checkDatabaseHealth(cmd *cobra.Command, conn database.Connection) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), healthTimeout)
	defer cancel()

	db, err := database.Open(ctx, conn)
	if err != nil {
		return err
	}
	defer db.Close()

	info, err := database.Inspect(ctx, db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "📊 Connected to %s as %s\n", info.Database, info.Login)
	fmt.Fprintf(out, "   %s\n", info.Version)
	return nil
}
