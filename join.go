package mysqlz

import "strings"

// JoinKind is an enumerated type representing the kind of a JOIN clause
type JoinKind int

// CrossJoin represents a CROSS JOIN
// InnerJoin represents an INNER JOIN
// LeftJoin represents a LEFT JOIN
// LeftOuterJoin represents a LEFT OUTER JOIN
// RightJoin represents a RIGHT JOIN
// RightOuterJoin represents a RIGHT OUTER JOIN
// NaturalLeftOuterJoin represents a NATURAL LEFT OUTER JOIN
// NaturalRightOuterJoin represents a NATURAL RIGHT OUTER JOIN
// StraightJoin represents a STRAIGHT_JOIN
const (
	CrossJoin JoinKind = iota
	InnerJoin
	LeftJoin
	LeftOuterJoin
	RightJoin
	RightOuterJoin
	NaturalLeftOuterJoin
	NaturalRightOuterJoin
	StraightJoin
)

var joinKeywords = []string{
	"CROSS JOIN",
	"INNER JOIN",
	"LEFT JOIN",
	"LEFT OUTER JOIN",
	"RIGHT JOIN",
	"RIGHT OUTER JOIN",
	"NATURAL LEFT OUTER JOIN",
	"NATURAL RIGHT OUTER JOIN",
	"STRAIGHT_JOIN",
}

// String returns the SQL keyword of the join kind (e.g. "LEFT OUTER JOIN")
func (k JoinKind) String() string {
	if k < 0 || int(k) >= len(joinKeywords) {
		return "JOIN"
	}
	return joinKeywords[k]
}

// JoinRef is a single reference in the ON clause of a join. It either
// compares two columns (see On) or a column with a value (see OnValue).
type JoinRef struct {
	Column   string
	Other    string
	Value    interface{}
	hasValue bool
}

// On creates a reference comparing two columns, e.g. On("u.id", "p.user_id")
// renders as `u`.`id`=`p`.`user_id`
func On(column, other string) JoinRef {
	return JoinRef{Column: column, Other: other}
}

// OnValue creates a reference comparing a column with a scalar value. A nil
// value renders as "column IS NULL".
func OnValue(column string, value interface{}) JoinRef {
	return JoinRef{Column: column, Value: value, hasValue: true}
}

// JoinClause represents a JOIN clause. Table and Alias are quoted; the
// rendered clause is built once, when the join is added to a Builder.
type JoinClause struct {
	Kind  JoinKind
	Table string
	Alias string
	sql   string
}

// ToSQL returns the SQL of the join clause
func (j JoinClause) ToSQL() string {
	return j.sql
}

// Join appends a join of the provided kind on table (with a required alias)
// to the builder. At least one reference is required. Column references are
// rendered before value references, all of them joined with AND.
func (b *Builder) Join(kind JoinKind, table, alias string, refs ...JoinRef) *Builder {
	clause, err := b.buildJoin(kind, table, alias, refs)
	if err != nil {
		return b.fail(err)
	}
	b.joins = append(b.joins, clause)
	return b
}

func (b *Builder) buildJoin(kind JoinKind, table, alias string, refs []JoinRef) (JoinClause, error) {
	t, err := b.quoter.QuoteEntityName(table)
	if err != nil {
		return JoinClause{}, err
	}
	a, err := b.quoter.QuoteEntityName(alias)
	if err != nil {
		return JoinClause{}, err
	}

	var columns, values []string
	for _, ref := range refs {
		col, err := b.quoter.QuoteEntityName(ref.Column)
		if err != nil {
			return JoinClause{}, err
		}
		if !ref.hasValue {
			other, err := b.quoter.QuoteEntityName(ref.Other)
			if err != nil {
				return JoinClause{}, err
			}
			columns = append(columns, col+"="+other)
			continue
		}
		if ref.Value == nil {
			values = append(values, col+" IS NULL")
			continue
		}
		val, err := b.quoter.QuoteScalarValue(ref.Value)
		if err != nil {
			return JoinClause{}, err
		}
		values = append(values, col+"="+val)
	}

	if len(columns)+len(values) == 0 {
		return JoinClause{}, invalidQuery("join references ON (...) not found in %s", kind)
	}

	return JoinClause{
		Kind:  kind,
		Table: t,
		Alias: a,
		sql:   kind.String() + " " + t + " AS " + a + " ON (" + strings.Join(append(columns, values...), " AND ") + ")",
	}, nil
}

// CrossJoin is a wrapper of Join for creating a CROSS JOIN
func (b *Builder) CrossJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(CrossJoin, table, alias, refs...)
}

// InnerJoin is a wrapper of Join for creating an INNER JOIN
func (b *Builder) InnerJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(InnerJoin, table, alias, refs...)
}

// LeftJoin is a wrapper of Join for creating a LEFT JOIN
func (b *Builder) LeftJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(LeftJoin, table, alias, refs...)
}

// LeftOuterJoin is a wrapper of Join for creating a LEFT OUTER JOIN
func (b *Builder) LeftOuterJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(LeftOuterJoin, table, alias, refs...)
}

// RightJoin is a wrapper of Join for creating a RIGHT JOIN
func (b *Builder) RightJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(RightJoin, table, alias, refs...)
}

// RightOuterJoin is a wrapper of Join for creating a RIGHT OUTER JOIN
func (b *Builder) RightOuterJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(RightOuterJoin, table, alias, refs...)
}

// NaturalLeftOuterJoin is a wrapper of Join for creating a NATURAL LEFT
// OUTER JOIN
func (b *Builder) NaturalLeftOuterJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(NaturalLeftOuterJoin, table, alias, refs...)
}

// NaturalRightOuterJoin is a wrapper of Join for creating a NATURAL RIGHT
// OUTER JOIN
func (b *Builder) NaturalRightOuterJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(NaturalRightOuterJoin, table, alias, refs...)
}

// StraightJoin is a wrapper of Join for creating a STRAIGHT_JOIN
func (b *Builder) StraightJoin(table, alias string, refs ...JoinRef) *Builder {
	return b.Join(StraightJoin, table, alias, refs...)
}
