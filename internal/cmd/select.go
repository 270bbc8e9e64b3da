package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha-middleware/mysqlz"
)

type selectOptions struct {
	Table     string
	Columns   []string
	Eq        []string
	Like      []string
	OrderBy   []string
	Desc      bool
	Offset    int64
	Limit     int64
	FoundRows bool
	Print     bool
}

func newSelectCmd(cli *CLI) *cobra.Command {
	var opts selectOptions

	cmd := &cobra.Command{
		Use:   "select",
		Short: "Build a SELECT statement and run or print it",
		Example: `# Print the ten most recent orders of a customer
$ mysqlz select --table orders --eq customer_id=42 --order created_at --desc --limit 10 --print`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			d, err := cli.driver(cmd)
			if err != nil {
				return err
			}
			defer d.Close()

			q, selectOpts, err := buildSelect(d.NewQuery(), opts)
			if err != nil {
				return err
			}

			if opts.Print {
				asSQL, err := q.SelectSQL(selectOpts)
				if err != nil {
					return err
				}
				fmt.Fprintln(cli.Out, asSQL)
				return nil
			}

			rs, err := q.Select(cmd.Context(), selectOpts)
			if err != nil {
				return err
			}
			printResult(rs, cli.Out)

			if opts.FoundRows {
				found, err := d.FoundRows(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cli.Out, "%d rows found\n", found)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&opts.Table, "table", "t", "", "Table to select from")
	cmd.Flags().StringSliceVarP(&opts.Columns, "columns", "c", nil, "Columns to select (default all)")
	cmd.Flags().StringArrayVar(&opts.Eq, "eq", nil, "Condition column=value, can be repeated")
	cmd.Flags().StringArrayVar(&opts.Like, "like", nil, "Condition column=pattern, can be repeated")
	cmd.Flags().StringSliceVar(&opts.OrderBy, "order", nil, "Columns to order by")
	cmd.Flags().BoolVar(&opts.Desc, "desc", false, "Order in descending order")
	cmd.Flags().Int64Var(&opts.Offset, "offset", 0, "Rows to skip")
	cmd.Flags().Int64Var(&opts.Limit, "limit", -1, "Maximum number of rows (default no limit)")
	cmd.Flags().BoolVar(&opts.FoundRows, "found-rows", false, "Print the number of rows matching without the limit")
	cmd.Flags().BoolVar(&opts.Print, "print", false, "Print the statement instead of executing it")

	_ = cmd.MarkFlagRequired("table")

	return cmd
}

// buildSelect applies the command options to a builder
func buildSelect(q *mysqlz.Builder, opts selectOptions) (*mysqlz.Builder, mysqlz.SelectOptions, error) {
	q.Table(opts.Table)

	if len(opts.Eq) > 0 || len(opts.Like) > 0 {
		conds := q.AddConditions()
		for _, eq := range opts.Eq {
			col, val, err := splitCondition(eq)
			if err != nil {
				return nil, mysqlz.SelectOptions{}, err
			}
			conds.WhereEq(col, val)
		}
		for _, like := range opts.Like {
			col, val, err := splitCondition(like)
			if err != nil {
				return nil, mysqlz.SelectOptions{}, err
			}
			conds.WhereLike(col, val)
		}
	}

	for _, col := range opts.OrderBy {
		if opts.Desc {
			q.OrderByDesc(col)
		} else {
			q.OrderByAsc(col)
		}
	}

	selectOpts := mysqlz.SelectOptions{
		Columns:       opts.Columns,
		CalcFoundRows: opts.FoundRows,
	}
	if opts.Limit >= 0 {
		selectOpts.Page = mysqlz.Page(opts.Offset, opts.Limit)
	}

	return q, selectOpts, q.Err()
}

func splitCondition(cond string) (string, string, error) {
	col, val, ok := strings.Cut(cond, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid condition %q, expected column=value", cond)
	}
	return col, val, nil
}
