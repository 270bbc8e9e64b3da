package mysqlz

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// UpdateOptions holds the parameters of an UPDATE statement that are not
// part of the builder state
type UpdateOptions struct {
	// Page sets the LIMIT clause
	Page Pagination

	// RawValues disables quoting of the row values, so SQL expressions and
	// functions (e.g. "NOW()" or "`hits` + 1") can be assigned. Raw values
	// are inserted as-is.
	RawValues bool

	// LowPriority adds the LOW_PRIORITY flag
	LowPriority bool

	// Ignore adds the IGNORE flag
	Ignore bool
}

// UpdateSQL generates an UPDATE statement assigning the row's values:
//
//	UPDATE table joins SET `a`="1", `b`="2" WHERE ... ORDER BY ... LIMIT ...
//
// The row must not be empty. GROUP BY is not allowed in an UPDATE statement.
func (b *Builder) UpdateSQL(row Record, opts UpdateOptions) (string, error) {
	if err := b.check(); err != nil {
		return "", err
	}

	asSQL, err := b.updateSQL(row, opts)
	if err != nil {
		return "", b.HandleError(err)
	}
	return asSQL, nil
}

func (b *Builder) updateSQL(row Record, opts UpdateOptions) (string, error) {
	if len(b.grouping) > 0 {
		return "", invalidQuery("update query cannot have GROUP BY")
	}

	if len(row) == 0 {
		return "", invalidQuery("values not defined for update query")
	}

	var clauses = []string{"UPDATE"}

	if opts.LowPriority {
		clauses = append(clauses, "LOW_PRIORITY")
	}

	if opts.Ignore {
		clauses = append(clauses, "IGNORE")
	}

	updates, err := b.assignments(row, opts.RawValues)
	if err != nil {
		return "", err
	}

	limit, err := opts.Page.ToSQL()
	if err != nil {
		return "", err
	}

	clauses = append(clauses,
		b.fromSQL(false),
		"SET "+strings.Join(updates, ", "),
		b.whereSQL(),
		b.orderBySQL(),
		limit,
	)

	return joinClauses(clauses...), nil
}

// assignments renders "col=value" pairs of a record. With raw set, values
// are converted to text but not quoted.
func (b *Builder) assignments(rec Record, raw bool) ([]string, error) {
	updates := make([]string, 0, len(rec))
	for _, field := range rec {
		col, err := b.quoter.QuoteEntityName(field.Column)
		if err != nil {
			return nil, err
		}

		var val string
		switch {
		case raw && field.Value == nil:
			val = "NULL"
		case raw:
			val, err = cast.ToStringE(field.Value)
			if err != nil {
				return nil, fmt.Errorf("%w: raw value of column %s: %w", ErrTypeMismatch, col, err)
			}
		default:
			val, err = b.quoter.QuoteScalarValue(field.Value)
			if err != nil {
				return nil, err
			}
		}

		updates = append(updates, col+"="+val)
	}
	return updates, nil
}

// Update generates an UPDATE statement and executes it with the builder's
// driver
func (b *Builder) Update(ctx context.Context, row Record, opts UpdateOptions) (*ResultSet, error) {
	asSQL, err := b.UpdateSQL(row, opts)
	if err != nil {
		return nil, err
	}
	return b.execute(ctx, asSQL)
}
