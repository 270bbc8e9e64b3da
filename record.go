package mysqlz

import "sort"

// Field is a single column/value pair of a Record
type Field struct {
	Column string
	Value  interface{}
}

// Record is an ordered list of column/value pairs, used as a row for
// INSERT and as the assignment list for UPDATE. Order is preserved in the
// generated SQL.
type Record []Field

// RecordOf creates a Record from a map. Since maps are unordered, columns
// are sorted by name.
func RecordOf(m map[string]interface{}) Record {
	rec := make(Record, 0, len(m))
	for _, key := range sortKeys(m) {
		rec = append(rec, Field{key, m[key]})
	}
	return rec
}

// Set returns a copy of the record with the column set to value. An
// existing column keeps its position, a new one is appended.
func (rec Record) Set(column string, value interface{}) Record {
	out := make(Record, len(rec), len(rec)+1)
	copy(out, rec)
	for i := range out {
		if out[i].Column == column {
			out[i].Value = value
			return out
		}
	}
	return append(out, Field{column, value})
}

// Columns returns the column names of the record, in order
func (rec Record) Columns() []string {
	cols := make([]string, len(rec))
	for i, field := range rec {
		cols[i] = field.Column
	}
	return cols
}

// Values returns the values of the record, in order
func (rec Record) Values() []interface{} {
	vals := make([]interface{}, len(rec))
	for i, field := range rec {
		vals[i] = field.Value
	}
	return vals
}

func sortKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
