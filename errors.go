package mysqlz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

// Sentinel errors returned by mysqlz. Use errors.Is to check for them.
var (
	// ErrInvalidQuery is returned when a statement cannot be built, e.g. an
	// identifier is empty, an operator is unknown or a clause is not allowed
	// for the statement kind.
	ErrInvalidQuery = errors.New("mysqlz: invalid query")

	// ErrTypeMismatch is returned when a non-scalar value is given where a
	// scalar is required.
	ErrTypeMismatch = errors.New("mysqlz: type mismatch")

	// ErrConnectionFailure is returned when connecting to the server fails.
	ErrConnectionFailure = errors.New("mysqlz: connection failure")

	// ErrAlreadyExists is returned when a write violates a unique key.
	ErrAlreadyExists = errors.New("mysqlz: already exists")

	// ErrForeignKeyRestriction is returned when a write violates a foreign
	// key constraint.
	ErrForeignKeyRestriction = errors.New("mysqlz: foreign key restriction")

	// ErrExecutionFailure is returned for any other failed statement.
	ErrExecutionFailure = errors.New("mysqlz: execution failure")

	// ErrCountMismatch is returned by the single row/value readers when the
	// result does not hold exactly one row or field.
	ErrCountMismatch = errors.New("mysqlz: count mismatch")

	// ErrNotFound is returned by the single row/value readers when nothing
	// could be read.
	ErrNotFound = errors.New("mysqlz: not found")

	// ErrNoParent is returned by ConditionNode.Parent on a root node.
	ErrNoParent = errors.New("mysqlz: condition has no parent")
)

// MySQL error numbers that get their own error kind.
const (
	errDuplicateEntry      = 1062
	errForeignKeyParentRow = 1451
	errForeignKeyChildRow  = 1452
)

// QueryError describes a failed statement. Kind is one of the sentinel
// errors above, Cause is the error returned by the server (if any).
type QueryError struct {
	Kind    error
	Query   string
	Code    uint16
	Message string
	Cause   error
}

func (e *QueryError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if e.Message != "" {
		b.WriteString(": " + e.Message)
	} else if e.Cause != nil {
		b.WriteString(": " + e.Cause.Error())
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, " (code %d)", e.Code)
	}
	if e.Query != "" {
		b.WriteString(", query: " + e.Query)
	}
	return b.String()
}

// Unwrap allows errors.Is to match the error kind and errors.As to reach the
// underlying driver error.
func (e *QueryError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// invalidQuery creates an ErrInvalidQuery error with a formatted reason
func invalidQuery(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidQuery}, args...)...)
}

// classifyError maps an error returned by the server to a *QueryError of the
// matching kind
func classifyError(err error, query string) *QueryError {
	qe := &QueryError{Kind: ErrExecutionFailure, Query: query, Cause: err}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		qe.Code = myErr.Number
		qe.Message = myErr.Message
		switch myErr.Number {
		case errDuplicateEntry:
			qe.Kind = ErrAlreadyExists
		case errForeignKeyParentRow, errForeignKeyChildRow:
			qe.Kind = ErrForeignKeyRestriction
		}
	}

	return qe
}
