package cmd

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ridoystarlord/ssc/config"
	"github.com/ridoystarlord/ssc/database"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List all available connections",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configFile)
		if err != nil {
			return err
		}
		conns, err := cfg.ResolveConnections()
		if err != nil {
			return err
		}
		return printConnections(cmd.OutOrStdout(), conns)
	},
}

const placeholder = "n/a"

func orPlaceholder(s string) string {
	if s == "" {
		return placeholder
	}
	return s
}

func printConnections(out io.Writer, conns []database.Connection) error {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tSERVER\tPORT\tDATABASE\tUSER\tPASSWORD")
	for _, c := range conns {
		port := placeholder
		if c.Port > 0 {
			port = strconv.Itoa(c.Port)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			orPlaceholder(c.Name),
			orPlaceholder(c.Server),
			port,
			orPlaceholder(c.Database),
			orPlaceholder(c.User),
			orPlaceholder(c.Password),
		)
	}
	return w.Flush()
}
