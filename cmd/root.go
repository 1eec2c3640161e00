package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/utils"
)

var (
	configFile string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "ssc",
	Short: "SQL Server source control",
	Long: `ssc scripts the objects of a SQL Server database into files that can be
kept under source control, and replays them against a database.

Examples:

  ssc init
  ssc pull dev
  ssc push staging
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		utils.SetupLogger(verbose)
		utils.LoadEnv()
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
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", config.DefaultFile, "Relative path to config file")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Print debug logs to stderr")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(pullCmd)
	rootCmd.AddCommand(pushCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(versionCmd)
}
