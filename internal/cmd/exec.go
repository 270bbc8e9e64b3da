package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newExecCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "exec SQL",
		Short: "Execute a statement and print its result",
		Example: `# Print the tables of the database
$ mysqlz exec -D shop "SHOW TABLES"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cli.driver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			rs, err := d.Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			printResult(rs, cli.Out)
			return nil
		},
	}
}

func newValueCmd(cli *CLI) *cobra.Command {
	return &cobra.Command{
		Use:   "value SQL",
		Short: "Execute a statement returning a single value and print it",
		Example: `# Count the users
$ mysqlz value -D shop "SELECT COUNT(*) FROM users"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := cli.driver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			v, err := d.ReadSingleValue(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}

			fmt.Fprintln(cli.Out, v.String())
			return nil
		},
	}
}
