package mysqlz

import (
	"context"
	"strings"
)

// SelectOptions holds the parameters of a SELECT statement that are not
// part of the builder state
type SelectOptions struct {
	// Columns to select. Selects * when empty.
	Columns []string

	// RawColumns disables quoting of Columns, so SQL functions and
	// expressions (e.g. "COUNT(*) AS total") can be selected. Raw columns
	// are inserted as-is.
	RawColumns bool

	// Distinct marks the statement as a SELECT DISTINCT statement
	Distinct bool

	// CalcFoundRows adds SQL_CALC_FOUND_ROWS, so the number of rows matching
	// without the LIMIT clause can be read with Driver.FoundRows
	CalcFoundRows bool

	// Page sets the LIMIT clause
	Page Pagination
}

// SelectSQL generates a SELECT statement from the builder state:
//
//	SELECT cols FROM table joins WHERE ... GROUP BY ... ORDER BY ... LIMIT ...
//
// Clauses without content are omitted. The builder state is not modified.
func (b *Builder) SelectSQL(opts SelectOptions) (string, error) {
	if err := b.check(); err != nil {
		return "", err
	}

	var clauses = []string{"SELECT"}

	if opts.Distinct {
		clauses = append(clauses, "DISTINCT")
	}

	if opts.CalcFoundRows {
		clauses = append(clauses, "SQL_CALC_FOUND_ROWS")
	}

	columns, err := b.selectColumns(opts)
	if err != nil {
		return "", b.HandleError(err)
	}
	clauses = append(clauses, columns)

	limit, err := opts.Page.ToSQL()
	if err != nil {
		return "", b.HandleError(err)
	}

	clauses = append(clauses,
		b.fromSQL(true),
		b.whereSQL(),
		b.groupBySQL(),
		b.orderBySQL(),
		limit,
	)

	return joinClauses(clauses...), nil
}

func (b *Builder) selectColumns(opts SelectOptions) (string, error) {
	cols := opts.Columns
	if !opts.RawColumns {
		quoted, err := b.quoter.QuoteEntityNames(cols)
		if err != nil {
			return "", err
		}
		cols = quoted
	}

	list := strings.TrimSpace(strings.Join(cols, ", "))
	if list == "" {
		return "*", nil
	}
	return list, nil
}

// Select generates a SELECT statement and executes it with the builder's
// driver
func (b *Builder) Select(ctx context.Context, opts SelectOptions) (*ResultSet, error) {
	asSQL, err := b.SelectSQL(opts)
	if err != nil {
		return nil, err
	}
	return b.execute(ctx, asSQL)
}
