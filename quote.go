package mysqlz

import (
	"regexp"
	"strings"
)

// DefaultColumnValue is a placeholder entity name which is rendered as the
// DEFAULT keyword, e.g. to insert a column's default value. It is matched
// case-insensitively.
const DefaultColumnValue = "DEFAULT_TABLE_COLUMN_VALUE"

var whitespace = regexp.MustCompile(`\s+`)

// Escaper is the value escaping primitive of the database client.
// EscapeString must return s with every character that could end or alter
// a quoted string literal escaped.
type Escaper interface {
	EscapeString(s string) string
}

// BackslashEscaper escapes values the way mysql_real_escape_string does,
// which is correct for servers in the default SQL mode.
type BackslashEscaper struct{}

// EscapeString implements Escaper
func (BackslashEscaper) EscapeString(s string) string {
	if !strings.ContainsAny(s, "\x00\n\r\\'\"\x1a") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case 0:
			b.WriteString(`\0`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\\':
			b.WriteString(`\\`)
		case '\'':
			b.WriteString(`\'`)
		case '"':
			b.WriteString(`\"`)
		case '\x1a':
			b.WriteString(`\Z`)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// QuotesEscaper escapes values for servers running with the
// NO_BACKSLASH_ESCAPES SQL mode, where a backslash is an ordinary character
// and the only way to embed the delimiter is to double it.
type QuotesEscaper struct{}

// EscapeString implements Escaper
func (QuotesEscaper) EscapeString(s string) string {
	return strings.ReplaceAll(s, `"`, `""`)
}

// Quoter quotes entity names (tables, columns, aliases) and scalar values
// into safe MySQL identifiers and literals.
type Quoter struct {
	escaper Escaper
}

// NewQuoter creates a Quoter that escapes values with the provided escaper.
// A nil escaper defaults to BackslashEscaper.
func NewQuoter(escaper Escaper) *Quoter {
	if escaper == nil {
		escaper = BackslashEscaper{}
	}
	return &Quoter{escaper: escaper}
}

// QuoteEntityName quotes a table, column or alias name. Names may be
// dot-separated (e.g. "table.column"), each part is quoted separately.
// Surrounding whitespace and backticks are trimmed from every part; a part
// that ends up empty is an ErrInvalidQuery. "*" is left unquoted and
// DefaultColumnValue becomes DEFAULT.
func (q *Quoter) QuoteEntityName(name string) (string, error) {
	parts := strings.Split(name, ".")
	for i, part := range parts {
		part = whitespace.ReplaceAllString(part, " ")
		part = strings.Trim(part, " `")
		switch {
		case part == "":
			return "", invalidQuery("entity name %q evaluates to an empty string", name)
		case part == "*":
			parts[i] = "*"
		case strings.EqualFold(part, DefaultColumnValue):
			parts[i] = "DEFAULT"
		default:
			parts[i] = "`" + strings.ReplaceAll(part, "`", "``") + "`"
		}
	}
	return strings.Join(parts, "."), nil
}

// QuoteEntityNames quotes a list of entity names
func (q *Quoter) QuoteEntityNames(names []string) ([]string, error) {
	quoted := make([]string, 0, len(names))
	for _, name := range names {
		qn, err := q.QuoteEntityName(name)
		if err != nil {
			return nil, err
		}
		quoted = append(quoted, qn)
	}
	return quoted, nil
}

// QuoteAndJoinEntityNames quotes a list of entity names and joins them with
// sep (a comma if sep is empty)
func (q *Quoter) QuoteAndJoinEntityNames(names []string, sep string) (string, error) {
	quoted, err := q.QuoteEntityNames(names)
	if err != nil {
		return "", err
	}
	return strings.Join(quoted, separator(sep)), nil
}

// QuoteScalarValue escapes and quotes a scalar value. nil becomes NULL,
// booleans become "1" or "0". Values that are not scalar fail with
// ErrTypeMismatch.
func (q *Quoter) QuoteScalarValue(value interface{}) (string, error) {
	v, err := ValueOf(value)
	if err != nil {
		return "", err
	}
	return q.quoteValue(v), nil
}

func (q *Quoter) quoteValue(v Value) string {
	if v.IsNull() {
		return "NULL"
	}
	return `"` + q.escaper.EscapeString(v.Str()) + `"`
}

// QuoteScalarValues quotes a list of scalar values
func (q *Quoter) QuoteScalarValues(values []interface{}) ([]string, error) {
	quoted := make([]string, 0, len(values))
	for _, value := range values {
		qv, err := q.QuoteScalarValue(value)
		if err != nil {
			return nil, err
		}
		quoted = append(quoted, qv)
	}
	return quoted, nil
}

// QuoteAndJoinScalarValues quotes a list of scalar values and joins them
// with sep (a comma if sep is empty)
func (q *Quoter) QuoteAndJoinScalarValues(values []interface{}, sep string) (string, error) {
	quoted, err := q.QuoteScalarValues(values)
	if err != nil {
		return "", err
	}
	return strings.Join(quoted, separator(sep)), nil
}

// QuoteRecordKeys quotes the column names of a record
func (q *Quoter) QuoteRecordKeys(rec Record) ([]string, error) {
	return q.QuoteEntityNames(rec.Columns())
}

// QuoteRecord quotes both the column names (as entity names) and the values
// (as scalars) of a record, keeping their pairing and order.
func (q *Quoter) QuoteRecord(rec Record) ([]QuotedField, error) {
	quoted := make([]QuotedField, 0, len(rec))
	for _, field := range rec {
		col, err := q.QuoteEntityName(field.Column)
		if err != nil {
			return nil, err
		}
		val, err := q.QuoteScalarValue(field.Value)
		if err != nil {
			return nil, err
		}
		quoted = append(quoted, QuotedField{col, val})
	}
	return quoted, nil
}

// QuotedField is a record field whose column and value were both quoted
type QuotedField struct {
	Column string
	Value  string
}

func separator(sep string) string {
	if sep == "" {
		return ","
	}
	return sep
}
