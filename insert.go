package mysqlz

import (
	"context"
	"strings"
)

// insertPriorities holds the accepted priority flags of an INSERT statement
var insertPriorities = []string{"LOW_PRIORITY", "DELAYED", "HIGH_PRIORITY"}

// InsertOptions holds the parameters of an INSERT statement that are not
// part of the builder state
type InsertOptions struct {
	// OnDuplicateKey adds an ON DUPLICATE KEY UPDATE clause with the
	// record's assignments
	OnDuplicateKey Record

	// RawOnDuplicateValues disables quoting of the OnDuplicateKey values,
	// so SQL expressions like "VALUES(`hits`) + 1" can be used. Raw values
	// are inserted as-is.
	RawOnDuplicateValues bool

	// Ignore adds the IGNORE flag
	Ignore bool

	// Priority is one of LOW_PRIORITY, DELAYED or HIGH_PRIORITY
	// (case-insensitive), or empty for none
	Priority string
}

// InsertSQL generates an INSERT statement into the primary table. A single
// row renders the single-row form, several rows the multi-row form:
//
//	INSERT INTO `t` (`a`,`b`) VALUES ("1","2"), ("3","4")
//
// Columns are taken from the first row; every other row must have the same
// columns in the same order. Joins, conditions, GROUP BY and ORDER BY are not
// allowed in an INSERT statement.
func (b *Builder) InsertSQL(opts InsertOptions, rows ...Record) (string, error) {
	if err := b.check(); err != nil {
		return "", err
	}

	asSQL, err := b.insertSQL(opts, rows)
	if err != nil {
		return "", b.HandleError(err)
	}
	return asSQL, nil
}

func (b *Builder) insertSQL(opts InsertOptions, rows []Record) (string, error) {
	if err := b.checkInsertState(); err != nil {
		return "", err
	}

	var clauses = []string{"INSERT"}

	if opts.Priority != "" {
		priority, err := parseInsertPriority(opts.Priority)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, priority)
	}

	if opts.Ignore {
		clauses = append(clauses, "IGNORE")
	}

	clauses = append(clauses, "INTO "+b.primaryTable)

	if len(rows) == 0 {
		return "", invalidQuery("no rows found for insert")
	}

	columns := rows[0].Columns()
	if len(columns) == 0 {
		return "", invalidQuery("no columns found in row 0 for insert")
	}

	quotedColumns, err := b.quoter.QuoteEntityNames(columns)
	if err != nil {
		return "", err
	}
	clauses = append(clauses, "("+strings.Join(quotedColumns, ",")+") VALUES")

	values := make([]string, 0, len(rows))
	for i, row := range rows {
		if !sameColumns(columns, row) {
			return "", invalidQuery("columns of row %d do not match columns of row 0 (%s) for insert", i, strings.Join(columns, ", "))
		}
		quoted, err := b.quoter.QuoteAndJoinScalarValues(row.Values(), ",")
		if err != nil {
			return "", err
		}
		values = append(values, "("+quoted+")")
	}
	clauses = append(clauses, strings.Join(values, ", "))

	if len(opts.OnDuplicateKey) > 0 {
		updates, err := b.assignments(opts.OnDuplicateKey, opts.RawOnDuplicateValues)
		if err != nil {
			return "", err
		}
		clauses = append(clauses, "ON DUPLICATE KEY UPDATE "+strings.Join(updates, ", "))
	}

	return strings.Join(clauses, " "), nil
}

func (b *Builder) checkInsertState() error {
	switch {
	case len(b.joins) > 0:
		return invalidQuery("insert query cannot have JOIN")
	case len(b.conditions) > 0:
		return invalidQuery("insert query cannot have WHERE conditions")
	case len(b.grouping) > 0:
		return invalidQuery("insert query cannot have GROUP BY")
	case len(b.ordering) > 0:
		return invalidQuery("insert query cannot have ORDER BY")
	}
	return nil
}

func parseInsertPriority(priority string) (string, error) {
	for _, known := range insertPriorities {
		if strings.EqualFold(known, strings.TrimSpace(priority)) {
			return known, nil
		}
	}
	return "", invalidQuery("invalid priority %q found in query, use one of: %s", priority, strings.Join(insertPriorities, ", "))
}

func sameColumns(columns []string, row Record) bool {
	if len(columns) != len(row) {
		return false
	}
	for i, field := range row {
		if field.Column != columns[i] {
			return false
		}
	}
	return true
}

// Insert generates an INSERT statement and executes it with the builder's
// driver
func (b *Builder) Insert(ctx context.Context, opts InsertOptions, rows ...Record) (*ResultSet, error) {
	asSQL, err := b.InsertSQL(opts, rows...)
	if err != nil {
		return nil, err
	}
	return b.execute(ctx, asSQL)
}
