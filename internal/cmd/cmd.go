// Package cmd implements the mysqlz command line interface.
package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/lensesio/tableprinter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ha-middleware/mysqlz"
	"github.com/ha-middleware/mysqlz/internal/logging"
)

type rootOptions struct {
	ConfigFile string
	Verbosity  int
}

// CLI holds the state shared by all commands
type CLI struct {
	Out         io.Writer
	RootOptions rootOptions
	log         *zap.Logger
}

// Run the main CLI command with the given args. The args should not contain
// the name of the binary (ex: os.Args[1:]).
func Run(ctx context.Context, args ...string) error {
	cli := &CLI{Out: os.Stdout, log: zap.NewNop()}
	cmd := NewRootCmd(cli)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// NewRootCmd creates the root mysqlz command
func NewRootCmd(cli *CLI) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:               "mysqlz",
		Short:             "Build and run MySQL statements",
		CompletionOptions: cobra.CompletionOptions{DisableDefaultCmd: true},
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cli.log = logging.Initialize(cli.RootOptions.Verbosity)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			_ = cli.log.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.AddCommand(
		newExecCmd(cli),
		newValueCmd(cli),
		newSelectCmd(cli),
	)

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cli.RootOptions.ConfigFile, "config", "", "Configuration file (default .mysqlz.yaml in the current, home or ~/.config/mysqlz directory)")
	flags.CountVarP(&cli.RootOptions.Verbosity, "verbose", "v", "Log verbosity, repeat to log executed statements")
	addConfigFlags(flags)

	return rootCmd
}

// driver creates a driver from the configuration of the running command
func (cli *CLI) driver(cmd *cobra.Command) (*mysqlz.Driver, error) {
	cfg, err := loadConfig(cli.RootOptions.ConfigFile, cmd.Flags())
	if err != nil {
		return nil, err
	}
	return mysqlz.New(cfg, mysqlz.WithLogger(cli.log)), nil
}

type execSummary struct {
	AffectedRows int64  `header:"affected rows"`
	LastInsertID int64  `header:"last insert id"`
	Elapsed      string `header:"elapsed"`
}

func newPrinter(out io.Writer) *tableprinter.Printer {
	table := tableprinter.New(out)

	table.HeaderAlignment = tableprinter.AlignLeft
	table.AutoWrapText = false
	table.DefaultAlignment = tableprinter.AlignLeft
	table.CenterSeparator = ""
	table.ColumnSeparator = ""
	table.RowSeparator = ""
	table.HeaderLine = false
	table.BorderBottom = false
	table.BorderLeft = false
	table.BorderRight = false
	table.BorderTop = false

	return table
}

// printResult prints the rows of a result set as a table, or a summary of
// the execution for statements that return no rows
func printResult(rs *mysqlz.ResultSet, out io.Writer) {
	table := newPrinter(out)

	schema := rs.Schema()
	if schema == nil {
		table.Print([]execSummary{{
			AffectedRows: rs.AffectedRows(),
			LastInsertID: rs.LastInsertID(),
			Elapsed:      rs.QueryTime().String(),
		}})
		return
	}

	header := make([]string, len(schema))
	var numeric []int
	for i, col := range schema {
		header[i] = col.Name
		if col.Type.Coerces() {
			numeric = append(numeric, i)
		}
	}

	rows := make([][]string, 0, rs.Len())
	for _, row := range rs.Rows() {
		values := row.Values()
		cells := make([]string, len(values))
		for i, v := range values {
			cells[i] = v.String()
		}
		rows = append(rows, cells)
	}

	table.Render(header, rows, numeric, false)
	fmt.Fprintf(out, "%d rows in set (%s)\n", rs.Len(), rs.QueryTime())
}
