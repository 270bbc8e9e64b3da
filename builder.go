package mysqlz

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Builder accumulates the parts of an SQL statement: a primary table, joins,
// WHERE condition groups, GROUP BY and ORDER BY columns. The statement is
// generated by one of SelectSQL, InsertSQL, UpdateSQL or DeleteSQL, each of
// which validates the accumulated state for its own statement kind.
//
// Builder methods quote every identifier and value as soon as they are
// given. Errors from chained calls are collected and returned by the next
// call to one of the SQL generating methods.
//
// A Builder is not safe for concurrent use.
type Builder struct {
	*Statement
	quoter       *Quoter
	driver       *Driver
	primaryTable string
	joins        []JoinClause
	conditions   []*ConditionNode
	conditionsOp JoinOperator
	grouping     []string
	ordering     []OrderColumn
	errs         []error
}

// OrderColumn represents a column in an ORDER BY clause (with direction).
// Column is quoted.
type OrderColumn struct {
	Column string
	Desc   bool
}

// ToSQL generates SQL for an OrderColumn
func (o OrderColumn) ToSQL() string {
	str := o.Column
	if o.Desc {
		str += " DESC"
	} else {
		str += " ASC"
	}
	return str
}

// NewBuilder creates a new Builder quoting with q. A nil q uses a Quoter
// with the default escaper.
func NewBuilder(q *Quoter) *Builder {
	if q == nil {
		q = NewQuoter(nil)
	}
	return &Builder{
		Statement:    &Statement{},
		quoter:       q,
		conditionsOp: And,
	}
}

// Quoter returns the Quoter used by the builder
func (b *Builder) Quoter() *Quoter {
	return b.quoter
}

// Err returns the errors collected from chained calls so far, or nil
func (b *Builder) Err() error {
	return errors.Join(b.errs...)
}

// Reset clears all accumulated state and errors, so the builder can be
// used for a new statement
func (b *Builder) Reset() *Builder {
	b.primaryTable = ""
	b.joins = nil
	b.conditions = nil
	b.conditionsOp = And
	b.grouping = nil
	b.ordering = nil
	b.errs = nil
	return b
}

// Table sets the primary table of the statement. Calling it again replaces
// the previous table.
func (b *Builder) Table(name string) *Builder {
	table, err := b.quoter.QuoteEntityName(name)
	if err != nil {
		return b.fail(err)
	}
	b.primaryTable = table
	return b
}

// TableAs sets the primary table of the statement with an alias
func (b *Builder) TableAs(name, alias string) *Builder {
	table, err := b.quoter.QuoteEntityName(name)
	if err != nil {
		return b.fail(err)
	}
	as, err := b.quoter.QuoteEntityName(alias)
	if err != nil {
		return b.fail(err)
	}
	b.primaryTable = table + " AS " + as
	return b
}

// AddConditions creates a new top-level condition group and returns it.
// Top-level groups are joined with the operator set through
// ChangeConditionsJoinOperator (AND by default).
func (b *Builder) AddConditions() *ConditionNode {
	node := newConditionNode(b, nil)
	b.conditions = append(b.conditions, node)
	return node
}

// ChangeConditionsJoinOperator sets the operator joining the top-level
// condition groups ("AND" or "OR", case-insensitive). It does not change the
// operator inside each group.
func (b *Builder) ChangeConditionsJoinOperator(op string) *Builder {
	parsed, err := parseJoinOperator(op)
	if err != nil {
		return b.fail(err)
	}
	b.conditionsOp = parsed
	return b
}

// GroupBy appends a column to the GROUP BY clause
func (b *Builder) GroupBy(column string) *Builder {
	col, err := b.quoter.QuoteEntityName(column)
	if err != nil {
		return b.fail(err)
	}
	b.grouping = append(b.grouping, col)
	return b
}

// OrderByAsc appends "column ASC" to the ORDER BY clause
func (b *Builder) OrderByAsc(column string) *Builder {
	return b.orderBy(column, false)
}

// OrderByDesc appends "column DESC" to the ORDER BY clause
func (b *Builder) OrderByDesc(column string) *Builder {
	return b.orderBy(column, true)
}

func (b *Builder) orderBy(column string, desc bool) *Builder {
	col, err := b.quoter.QuoteEntityName(column)
	if err != nil {
		return b.fail(err)
	}
	b.ordering = append(b.ordering, OrderColumn{col, desc})
	return b
}

// execute runs a generated statement with the driver the builder was
// created by
func (b *Builder) execute(ctx context.Context, asSQL string) (*ResultSet, error) {
	if b.driver == nil {
		return nil, b.HandleError(fmt.Errorf("%w: builder has no driver, create it with Driver.NewQuery", ErrConnectionFailure))
	}
	return b.driver.Execute(ctx, asSQL)
}

func (b *Builder) fail(err error) *Builder {
	b.errs = append(b.errs, err)
	b.HandleError(err)
	return b
}

// check returns the collected errors of chained calls and makes sure a
// primary table was set
func (b *Builder) check() error {
	if err := b.Err(); err != nil {
		return err
	}
	if b.primaryTable == "" {
		return b.HandleError(invalidQuery("primary table is required in query, but is not set"))
	}
	return nil
}

func (b *Builder) hasConditions() bool {
	for _, node := range b.conditions {
		if !node.IsEmpty() {
			return true
		}
	}
	return false
}

func (b *Builder) fromSQL(keyword bool) string {
	clauses := make([]string, 0, len(b.joins)+2)
	if keyword {
		clauses = append(clauses, "FROM")
	}
	clauses = append(clauses, b.primaryTable)
	for _, join := range b.joins {
		clauses = append(clauses, join.sql)
	}
	return strings.Join(clauses, " ")
}

func (b *Builder) whereSQL() string {
	var groups []string
	for _, node := range b.conditions {
		if s := node.Parse(); s != "" {
			groups = append(groups, s)
		}
	}
	if len(groups) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(groups, " "+string(b.conditionsOp)+" ")
}

func (b *Builder) groupBySQL() string {
	if len(b.grouping) == 0 {
		return ""
	}
	return "GROUP BY " + strings.Join(b.grouping, ", ")
}

func (b *Builder) orderBySQL() string {
	if len(b.ordering) == 0 {
		return ""
	}
	cols := make([]string, len(b.ordering))
	for i, col := range b.ordering {
		cols[i] = col.ToSQL()
	}
	return "ORDER BY " + strings.Join(cols, ", ")
}

// joinClauses joins non-empty SQL clauses with a single space
func joinClauses(clauses ...string) string {
	parts := clauses[:0]
	for _, clause := range clauses {
		if clause != "" {
			parts = append(parts, clause)
		}
	}
	return strings.Join(parts, " ")
}
