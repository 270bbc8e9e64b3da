package mysqlz

import (
	"fmt"
	"strings"
)

// JoinOperator is the boolean operator joining the members of a condition
// group (AND or OR)
type JoinOperator string

// And joins conditions with AND
// Or joins conditions with OR
const (
	And JoinOperator = "AND"
	Or  JoinOperator = "OR"
)

var joinOperators = []JoinOperator{And, Or}

// parseJoinOperator matches op against the supported operators,
// case-insensitively
func parseJoinOperator(op string) (JoinOperator, error) {
	for _, known := range joinOperators {
		if strings.EqualFold(string(known), strings.TrimSpace(op)) {
			return known, nil
		}
	}
	return "", invalidQuery("invalid conditions join operator %q, use one of: %s, %s", op, And, Or)
}

// WhereCondition is an interface describing conditions that can be used
// inside an SQL WHERE clause. Parse generates the condition's SQL; all
// identifiers and values are already quoted. An empty string means the
// condition has nothing to render.
type WhereCondition interface {
	Parse() string
}

// Operator identifies the comparison performed by a Predicate
type Operator int

// Supported predicate operators
const (
	OpEq Operator = iota
	OpNotEq
	OpGt
	OpGte
	OpLt
	OpLte
	OpLike
	OpNotLike
	OpRegexp
	OpNotRegexp
	OpBetween
	OpIn
	OpNotIn
	OpIsNull
	OpIsNotNull
	OpExists
	OpInQuery
)

// scalarOperators holds the SQL of operators comparing a column with a
// single value
var scalarOperators = map[Operator]string{
	OpEq:        "=",
	OpNotEq:     "!=",
	OpGt:        ">",
	OpGte:       ">=",
	OpLt:        "<",
	OpLte:       "<=",
	OpLike:      " LIKE ",
	OpNotLike:   " NOT LIKE ",
	OpRegexp:    " REGEXP ",
	OpNotRegexp: " NOT REGEXP ",
}

// Predicate is a single condition on a column. Column and Operands are
// stored quoted; Subquery holds a raw SQL fragment for OpExists and
// OpInQuery.
type Predicate struct {
	Column   string
	Operator Operator
	Operands []string
	Subquery string
}

// Parse implements the WhereCondition interface, generating SQL from the
// predicate
func (p Predicate) Parse() string {
	if op, ok := scalarOperators[p.Operator]; ok {
		return p.Column + op + p.Operands[0]
	}

	switch p.Operator {
	case OpBetween:
		return p.Column + " BETWEEN " + p.Operands[0] + " AND " + p.Operands[1]
	case OpIn:
		return p.Column + " IN (" + strings.Join(p.Operands, ",") + ")"
	case OpNotIn:
		return p.Column + " NOT IN (" + strings.Join(p.Operands, ",") + ")"
	case OpIsNull:
		return p.Column + " IS NULL"
	case OpIsNotNull:
		return p.Column + " IS NOT NULL"
	case OpExists:
		return "EXISTS (" + p.Subquery + ")"
	case OpInQuery:
		return p.Column + " IN (" + p.Subquery + ")"
	}

	return ""
}

// ConditionNode is a group of conditions (predicates and nested groups)
// joined by a single operator. Nodes are created by a Builder or by another
// node through AddConditions, and belong to their creator.
type ConditionNode struct {
	builder    *Builder
	parent     *ConditionNode
	operator   JoinOperator
	conditions []WhereCondition
}

func newConditionNode(builder *Builder, parent *ConditionNode) *ConditionNode {
	return &ConditionNode{
		builder:  builder,
		parent:   parent,
		operator: And,
	}
}

// Parse implements the WhereCondition interface. Nested groups without
// conditions are skipped; a group with nothing to render returns an empty
// string.
func (node *ConditionNode) Parse() string {
	var sqls []string
	for _, cond := range node.conditions {
		if s := cond.Parse(); s != "" {
			sqls = append(sqls, s)
		}
	}
	if len(sqls) == 0 {
		return ""
	}
	return "(" + strings.Join(sqls, " "+string(node.operator)+" ") + ")"
}

// String returns the group's SQL. An empty group renders as "()".
func (node *ConditionNode) String() string {
	if s := node.Parse(); s != "" {
		return s
	}
	return "()"
}

// IsEmpty reports whether the group renders no condition at all
func (node *ConditionNode) IsEmpty() bool {
	return node.Parse() == ""
}

// Operator returns the operator joining the group's members
func (node *ConditionNode) Operator() JoinOperator {
	return node.operator
}

// Conditions returns the group's members, in order
func (node *ConditionNode) Conditions() []WhereCondition {
	return append([]WhereCondition{}, node.conditions...)
}

// AddConditions creates a new group nested in this one and returns it
func (node *ConditionNode) AddConditions() *ConditionNode {
	child := newConditionNode(node.builder, node)
	node.conditions = append(node.conditions, child)
	return child
}

// ChangeJoinOperator sets the operator joining the group's members ("AND"
// or "OR", case-insensitive)
func (node *ConditionNode) ChangeJoinOperator(op string) *ConditionNode {
	parsed, err := parseJoinOperator(op)
	if err != nil {
		node.fail(err)
		return node
	}
	node.operator = parsed
	return node
}

// Parent returns the group this group is nested in. Groups created directly
// by a Builder have no parent and return ErrNoParent.
func (node *ConditionNode) Parent() (*ConditionNode, error) {
	if node.parent == nil {
		return nil, ErrNoParent
	}
	return node.parent, nil
}

// Builder returns the Builder owning the condition tree
func (node *ConditionNode) Builder() *Builder {
	return node.builder
}

// WhereEq adds a "column = value" condition
func (node *ConditionNode) WhereEq(column string, value interface{}) *ConditionNode {
	return node.whereScalar("WhereEq", column, OpEq, value)
}

// WhereNotEq adds a "column != value" condition
func (node *ConditionNode) WhereNotEq(column string, value interface{}) *ConditionNode {
	return node.whereScalar("WhereNotEq", column, OpNotEq, value)
}

// WhereGt adds a "column > value" condition
func (node *ConditionNode) WhereGt(column string, value interface{}) *ConditionNode {
	return node.whereScalar("WhereGt", column, OpGt, value)
}

// WhereGte adds a "column >= value" condition
func (node *ConditionNode) WhereGte(column string, value interface{}) *ConditionNode {
	return node.whereScalar("WhereGte", column, OpGte, value)
}

// WhereLt adds a "column < value" condition
func (node *ConditionNode) WhereLt(column string, value interface{}) *ConditionNode {
	return node.whereScalar("WhereLt", column, OpLt, value)
}

// WhereLte adds a "column <= value" condition
func (node *ConditionNode) WhereLte(column string, value interface{}) *ConditionNode {
	return node.whereScalar("WhereLte", column, OpLte, value)
}

// WhereLike adds a "column LIKE pattern" condition
func (node *ConditionNode) WhereLike(column string, pattern interface{}) *ConditionNode {
	return node.whereScalar("WhereLike", column, OpLike, pattern)
}

// WhereNotLike adds a "column NOT LIKE pattern" condition
func (node *ConditionNode) WhereNotLike(column string, pattern interface{}) *ConditionNode {
	return node.whereScalar("WhereNotLike", column, OpNotLike, pattern)
}

// WhereRegexp adds a "column REGEXP pattern" condition
func (node *ConditionNode) WhereRegexp(column string, pattern interface{}) *ConditionNode {
	return node.whereScalar("WhereRegexp", column, OpRegexp, pattern)
}

// WhereNotRegexp adds a "column NOT REGEXP pattern" condition
func (node *ConditionNode) WhereNotRegexp(column string, pattern interface{}) *ConditionNode {
	return node.whereScalar("WhereNotRegexp", column, OpNotRegexp, pattern)
}

// WhereBetween adds a "column BETWEEN low AND high" condition
func (node *ConditionNode) WhereBetween(column string, low, high interface{}) *ConditionNode {
	col, err := node.quoter().QuoteEntityName(column)
	if err != nil {
		return node.fail(err)
	}
	operands, err := node.quoteOperands("WhereBetween", low, high)
	if err != nil {
		return node.fail(err)
	}
	return node.add(Predicate{Column: col, Operator: OpBetween, Operands: operands})
}

// WhereIn adds a "column IN (values...)" condition. At least one value is
// required.
func (node *ConditionNode) WhereIn(column string, values ...interface{}) *ConditionNode {
	return node.whereList("WhereIn", column, OpIn, values)
}

// WhereNotIn adds a "column NOT IN (values...)" condition. At least one
// value is required.
func (node *ConditionNode) WhereNotIn(column string, values ...interface{}) *ConditionNode {
	return node.whereList("WhereNotIn", column, OpNotIn, values)
}

// WhereIsNull adds a "column IS NULL" condition
func (node *ConditionNode) WhereIsNull(column string) *ConditionNode {
	col, err := node.quoter().QuoteEntityName(column)
	if err != nil {
		return node.fail(err)
	}
	return node.add(Predicate{Column: col, Operator: OpIsNull})
}

// WhereIsNotNull adds a "column IS NOT NULL" condition
func (node *ConditionNode) WhereIsNotNull(column string) *ConditionNode {
	col, err := node.quoter().QuoteEntityName(column)
	if err != nil {
		return node.fail(err)
	}
	return node.add(Predicate{Column: col, Operator: OpIsNotNull})
}

// WhereExists adds an "EXISTS (subquery)" condition. The subquery is raw
// SQL and is inserted as-is; never build it from user input without quoting
// every part of it.
func (node *ConditionNode) WhereExists(subquery string) *ConditionNode {
	sub := strings.TrimSpace(subquery)
	if sub == "" {
		return node.fail(invalidQuery("empty subquery for WHERE EXISTS"))
	}
	return node.add(Predicate{Operator: OpExists, Subquery: sub})
}

// WhereInQuery adds a "column IN (subquery)" condition. The subquery is raw
// SQL and is inserted as-is, like in WhereExists.
func (node *ConditionNode) WhereInQuery(column, subquery string) *ConditionNode {
	col, err := node.quoter().QuoteEntityName(column)
	if err != nil {
		return node.fail(err)
	}
	sub := strings.TrimSpace(subquery)
	if sub == "" {
		return node.fail(invalidQuery("empty subquery for WHERE IN"))
	}
	return node.add(Predicate{Column: col, Operator: OpInQuery, Subquery: sub})
}

func (node *ConditionNode) whereScalar(method, column string, op Operator, value interface{}) *ConditionNode {
	col, err := node.quoter().QuoteEntityName(column)
	if err != nil {
		return node.fail(err)
	}
	if value == nil {
		return node.fail(invalidQuery("only scalar values are supported in %s, use WhereIsNull for NULL", method))
	}
	operands, err := node.quoteOperands(method, value)
	if err != nil {
		return node.fail(err)
	}
	return node.add(Predicate{Column: col, Operator: op, Operands: operands})
}

func (node *ConditionNode) whereList(method, column string, op Operator, values []interface{}) *ConditionNode {
	col, err := node.quoter().QuoteEntityName(column)
	if err != nil {
		return node.fail(err)
	}
	if len(values) == 0 {
		return node.fail(invalidQuery("empty value list passed to %s", method))
	}
	operands, err := node.quoteOperands(method, values...)
	if err != nil {
		return node.fail(err)
	}
	return node.add(Predicate{Column: col, Operator: op, Operands: operands})
}

func (node *ConditionNode) quoteOperands(method string, values ...interface{}) ([]string, error) {
	operands, err := node.quoter().QuoteScalarValues(values)
	if err != nil {
		return nil, fmt.Errorf("%w: only scalar values are supported in %s: %w", ErrInvalidQuery, method, err)
	}
	return operands, nil
}

func (node *ConditionNode) add(cond WhereCondition) *ConditionNode {
	node.conditions = append(node.conditions, cond)
	return node
}

func (node *ConditionNode) fail(err error) *ConditionNode {
	node.builder.fail(err)
	return node
}

func (node *ConditionNode) quoter() *Quoter {
	return node.builder.quoter
}
