package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/database"
	"github.com/ridoystarlord/ssc/loader"
)

var (
	initForce     bool
	initSkip      bool
	initWebConfig string
)

// ErrConfigExists is returned by init when the config file is present and
// --force was not given.
var ErrConfigExists = errors.New("config file already exists")

// storage choices offered by init
const (
	storeMain = iota
	storeSeparate
	storeWebConfig
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create default config file",
	Long: `Create a config file holding the connections ssc works with.

Connections can be kept in the main config file, in a separate
connections file, or read from the connection strings of a Web.config.

Examples:
  ssc init                      # Answer a few questions
  ssc init --skip               # Write defaults without prompting
  ssc init -w ./app/Web.config  # Offer connections from a Web.config`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !initForce && config.Exists(configFile) {
			return fmt.Errorf("%w: %s", ErrConfigExists, configFile)
		}

		webPath := initWebConfig
		if webPath == "" {
			webPath = loader.DefaultWebConfigFile
		}
		var defaults database.Connection
		webConns, err := loader.LoadWebConfig(webPath)
		if err != nil {
			slog.Debug("no web config connections", "path", webPath, "error", err)
			webConns = nil
		}
		if len(webConns) > 0 {
			defaults = webConns[0]
		}

		out := cmd.OutOrStdout()
		if initSkip {
			var values map[string]any
			if initWebConfig != "" {
				values = map[string]any{"connections": initWebConfig}
			} else {
				values = map[string]any{"connections": []database.Connection{defaults}}
			}
			if err := config.Write(values, configFile); err != nil {
				return err
			}
			fmt.Fprintf(out, "✅ Created %s\n", configFile)
			return nil
		}

		return runInitPrompts(newPrompter(cmd.InOrStdin(), out), out, defaults, len(webConns) > 0, webPath)
	},
}

func runInitPrompts(p *prompter, out io.Writer, defaults database.Connection, hasWebConfig bool, webPath string) error {
	choices := []string{
		"Main configuration file.",
		"Separate connections configuration file.",
	}
	if hasWebConfig {
		choices = append(choices, "Web.config file with connection strings.")
	}
	store, err := p.choose("Where would you like to store connections?", choices)
	if err != nil {
		return err
	}

	if store == storeWebConfig {
		if err := config.Write(map[string]any{"connections": webPath}, configFile); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Created %s using connections from %s\n", configFile, webPath)
		return nil
	}

	conn, err := askConnection(p, defaults)
	if err != nil {
		return err
	}

	switch store {
	case storeSeparate:
		if err := config.Write(map[string]any{"connections": loader.DefaultConnectionsFile}, configFile); err != nil {
			return err
		}
		if err := loader.WriteConnectionsFile(loader.DefaultConnectionsFile, []database.Connection{conn}); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Created %s and %s\n", configFile, loader.DefaultConnectionsFile)
	default:
		if err := config.Write(map[string]any{"connections": []database.Connection{conn}}, configFile); err != nil {
			return err
		}
		fmt.Fprintf(out, "✅ Created %s\n", configFile)
	}
	return nil
}

func askConnection(p *prompter, defaults database.Connection) (database.Connection, error) {
	var conn database.Connection
	var err error

	if conn.Server, err = p.ask("Server URL", defaults.Server); err != nil {
		return conn, err
	}

	port := ""
	if defaults.Port > 0 {
		port = strconv.Itoa(defaults.Port)
	}
	for {
		answer, err := p.ask("Server port", port)
		if err != nil {
			return conn, err
		}
		if answer == "" {
			break
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n > 0 && n <= 65535 {
			conn.Port = n
			break
		}
		fmt.Fprintln(p.out, "💡 Port must be a number between 1 and 65535")
	}

	if conn.Database, err = p.ask("Database name", defaults.Database); err != nil {
		return conn, err
	}
	if conn.User, err = p.ask("Login username", defaults.User); err != nil {
		return conn, err
	}
	if conn.Password, err = p.password("Login password"); err != nil {
		return conn, err
	}
	if conn.Password == "" {
		conn.Password = defaults.Password
	}
	if conn.Name, err = p.ask("Connection name", "dev"); err != nil {
		return conn, err
	}
	return conn, nil
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing config file, if present")
	initCmd.Flags().BoolVarP(&initSkip, "skip", "s", false, "Use defaults only and skip the option prompts")
	initCmd.Flags().StringVarP(&initWebConfig, "webconfig", "w", "", "Relative path to Web.config file")
}
