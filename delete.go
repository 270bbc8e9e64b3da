package mysqlz

import "context"

// DeleteOptions holds the parameters of a DELETE statement that are not
// part of the builder state
type DeleteOptions struct {
	// Page sets the LIMIT clause
	Page Pagination

	// LowPriority adds the LOW_PRIORITY flag
	LowPriority bool

	// Quick adds the QUICK flag
	Quick bool

	// Ignore adds the IGNORE flag
	Ignore bool
}

// DeleteSQL generates a DELETE statement from the builder state:
//
//	DELETE [LOW_PRIORITY] [QUICK] [IGNORE] FROM table joins WHERE ... ORDER BY ... LIMIT ...
//
// GROUP BY is not allowed in a DELETE statement.
func (b *Builder) DeleteSQL(opts DeleteOptions) (string, error) {
	if err := b.check(); err != nil {
		return "", err
	}

	if len(b.grouping) > 0 {
		return "", b.HandleError(invalidQuery("delete query cannot have GROUP BY"))
	}

	var clauses = []string{"DELETE"}

	if opts.LowPriority {
		clauses = append(clauses, "LOW_PRIORITY")
	}

	if opts.Quick {
		clauses = append(clauses, "QUICK")
	}

	if opts.Ignore {
		clauses = append(clauses, "IGNORE")
	}

	limit, err := opts.Page.ToSQL()
	if err != nil {
		return "", b.HandleError(err)
	}

	clauses = append(clauses,
		b.fromSQL(true),
		b.whereSQL(),
		b.orderBySQL(),
		limit,
	)

	return joinClauses(clauses...), nil
}

// Delete generates a DELETE statement and executes it with the builder's
// driver
func (b *Builder) Delete(ctx context.Context, opts DeleteOptions) (*ResultSet, error) {
	asSQL, err := b.DeleteSQL(opts)
	if err != nil {
		return nil, err
	}
	return b.execute(ctx, asSQL)
}
