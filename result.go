package mysqlz

import (
	"time"

	"github.com/spf13/cast"
)

// Column describes a result column
type Column struct {
	Name         string
	Type         TypeTag
	DatabaseType string
}

// Row is a single fetched row: an ordered list of named values
type Row struct {
	names  []string
	values []Value
}

// NewRow creates a row from parallel lists of names and values
func NewRow(names []string, values []Value) *Row {
	return &Row{
		names:  append([]string{}, names...),
		values: append([]Value{}, values...),
	}
}

// Len returns the number of fields in the row
func (r *Row) Len() int { return len(r.names) }

// Names returns the field names of the row, in order
func (r *Row) Names() []string { return append([]string{}, r.names...) }

// Values returns the values of the row, in order
func (r *Row) Values() []Value { return append([]Value{}, r.values...) }

// Get returns the value of a field, and false if the row has no such field
func (r *Row) Get(name string) (Value, bool) {
	if i := r.index(name); i >= 0 {
		return r.values[i], true
	}
	return Null(), false
}

// Set sets the value of a field. A field the row does not have is appended.
func (r *Row) Set(name string, v Value) {
	if i := r.index(name); i >= 0 {
		r.values[i] = v
		return
	}
	r.names = append(r.names, name)
	r.values = append(r.values, v)
}

// Record converts the row into a Record, e.g. to insert it into another
// table
func (r *Row) Record() Record {
	rec := make(Record, len(r.names))
	for i, name := range r.names {
		rec[i] = Field{name, r.values[i].Interface()}
	}
	return rec
}

func (r *Row) index(name string) int {
	for i, n := range r.names {
		if n == name {
			return i
		}
	}
	return -1
}

// matches reports whether the row's fields line up with the schema columns
func (r *Row) matches(schema []Column) bool {
	if len(r.names) != len(schema) {
		return false
	}
	for i, col := range schema {
		if r.names[i] != col.Name {
			return false
		}
	}
	return true
}

func (r *Row) rename(from, to string) {
	if i := r.index(from); i >= 0 {
		r.names[i] = to
	}
}

func (r *Row) remove(name string) {
	if i := r.index(name); i >= 0 {
		r.names = append(r.names[:i], r.names[i+1:]...)
		r.values = append(r.values[:i], r.values[i+1:]...)
	}
}

func (r *Row) clone() *Row {
	return NewRow(r.names, r.values)
}

// ResultSet is the result of an executed statement. Statements that return
// no rows (INSERT, UPDATE...) have an empty row list and no schema.
type ResultSet struct {
	rows         []*Row
	affectedRows int64
	lastInsertID int64
	queryTime    time.Duration
	schema       []Column
	applied      bool
}

// Rows returns the fetched rows, in order
func (rs *ResultSet) Rows() []*Row { return rs.rows }

// Len returns the number of fetched rows
func (rs *ResultSet) Len() int { return len(rs.rows) }

// AffectedRows returns the number of rows changed by the statement
func (rs *ResultSet) AffectedRows() int64 { return rs.affectedRows }

// LastInsertID returns the AUTO_INCREMENT id generated by the statement
func (rs *ResultSet) LastInsertID() int64 { return rs.lastInsertID }

// QueryTime returns how long the statement took to execute and fetch
func (rs *ResultSet) QueryTime() time.Duration { return rs.queryTime }

// Schema returns the column metadata, or nil for statements that return no
// rows
func (rs *ResultSet) Schema() []Column { return append([]Column(nil), rs.schema...) }

// ApplySchema converts the values of every row to the type family of their
// column: decimal and floating point columns to floats, integer columns up
// to MEDIUMINT to integers. Other columns, including BIGINT, are left as
// they were fetched. It does nothing without a schema, and applying it more
// than once has no further effect.
func (rs *ResultSet) ApplySchema() {
	if rs.applied || len(rs.schema) == 0 {
		return
	}
	rs.applied = true

	for _, row := range rs.rows {
		byPosition := row.matches(rs.schema)
		for i, col := range rs.schema {
			coerce, ok := coercions[col.Type]
			if !ok {
				continue
			}
			// columns sharing a name (e.g. joined tables) are only told
			// apart by position
			j := i
			if !byPosition {
				j = row.index(col.Name)
			}
			if j >= 0 {
				row.values[j] = coerce(row.values[j])
			}
		}
	}
}

// RenameField renames a field in every row and in the schema
func (rs *ResultSet) RenameField(from, to string) {
	for _, row := range rs.rows {
		row.rename(from, to)
	}
	for i := range rs.schema {
		if rs.schema[i].Name == from {
			rs.schema[i].Name = to
		}
	}
}

// RemoveField removes a field from every row and from the schema
func (rs *ResultSet) RemoveField(name string) {
	for _, row := range rs.rows {
		row.remove(name)
	}
	for i := range rs.schema {
		if rs.schema[i].Name == name {
			rs.schema = append(rs.schema[:i], rs.schema[i+1:]...)
			break
		}
	}
}

// Clone returns a deep copy of the result set
func (rs *ResultSet) Clone() *ResultSet {
	clone := *rs
	clone.schema = append([]Column(nil), rs.schema...)
	clone.rows = make([]*Row, len(rs.rows))
	for i, row := range rs.rows {
		clone.rows[i] = row.clone()
	}
	return &clone
}

// Records converts every row into a Record, e.g. to copy them into another
// table with a multi-row INSERT
func (rs *ResultSet) Records() []Record {
	recs := make([]Record, len(rs.rows))
	for i, row := range rs.rows {
		recs[i] = row.Record()
	}
	return recs
}

// fetchedValue converts a value scanned from the driver into a Value.
// Times scanned with parseTime enabled are formatted as DATETIME text,
// anything else that is not scalar is converted to text.
func fetchedValue(raw interface{}) Value {
	if t, ok := raw.(time.Time); ok {
		return String(t.Format("2006-01-02 15:04:05"))
	}

	if val, err := ValueOf(raw); err == nil {
		return val
	}
	return String(cast.ToString(raw))
}
