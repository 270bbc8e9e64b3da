package mysqlz

import "strings"

// TypeTag identifies the MySQL type of a result column
type TypeTag int

// Column type tags, named after the MySQL protocol field types. TypeChar is
// the legacy name of the TINY field type; the database type name "CHAR"
// (a fixed length string column) maps to TypeString.
const (
	TypeUnknown TypeTag = iota
	TypeDecimal
	TypeNewDecimal
	TypeFloat
	TypeDouble
	TypeTiny
	TypeChar
	TypeShort
	TypeLong
	TypeInt24
	TypeLongLong
	TypeNull
	TypeTimestamp
	TypeDate
	TypeTime
	TypeDatetime
	TypeYear
	TypeBit
	TypeJSON
	TypeEnum
	TypeSet
	TypeBlob
	TypeString
	TypeGeometry
)

var typeTagNames = map[TypeTag]string{
	TypeUnknown:    "UNKNOWN",
	TypeDecimal:    "DECIMAL",
	TypeNewDecimal: "NEWDECIMAL",
	TypeFloat:      "FLOAT",
	TypeDouble:     "DOUBLE",
	TypeTiny:       "TINY",
	TypeChar:       "CHAR",
	TypeShort:      "SHORT",
	TypeLong:       "LONG",
	TypeInt24:      "INT24",
	TypeLongLong:   "LONGLONG",
	TypeNull:       "NULL",
	TypeTimestamp:  "TIMESTAMP",
	TypeDate:       "DATE",
	TypeTime:       "TIME",
	TypeDatetime:   "DATETIME",
	TypeYear:       "YEAR",
	TypeBit:        "BIT",
	TypeJSON:       "JSON",
	TypeEnum:       "ENUM",
	TypeSet:        "SET",
	TypeBlob:       "BLOB",
	TypeString:     "STRING",
	TypeGeometry:   "GEOMETRY",
}

// String returns the protocol name of the type tag (e.g. "NEWDECIMAL")
func (t TypeTag) String() string {
	if name, ok := typeTagNames[t]; ok {
		return name
	}
	return typeTagNames[TypeUnknown]
}

// databaseTypes maps the type names reported by the driver for a result
// column (sql.ColumnType.DatabaseTypeName) to type tags
var databaseTypes = map[string]TypeTag{
	"DECIMAL":    TypeNewDecimal,
	"FLOAT":      TypeFloat,
	"DOUBLE":     TypeDouble,
	"TINYINT":    TypeTiny,
	"SMALLINT":   TypeShort,
	"INT":        TypeLong,
	"MEDIUMINT":  TypeInt24,
	"BIGINT":     TypeLongLong,
	"NULL":       TypeNull,
	"TIMESTAMP":  TypeTimestamp,
	"DATE":       TypeDate,
	"TIME":       TypeTime,
	"DATETIME":   TypeDatetime,
	"YEAR":       TypeYear,
	"BIT":        TypeBit,
	"JSON":       TypeJSON,
	"ENUM":       TypeEnum,
	"SET":        TypeSet,
	"TINYBLOB":   TypeBlob,
	"MEDIUMBLOB": TypeBlob,
	"LONGBLOB":   TypeBlob,
	"BLOB":       TypeBlob,
	"TINYTEXT":   TypeBlob,
	"MEDIUMTEXT": TypeBlob,
	"LONGTEXT":   TypeBlob,
	"TEXT":       TypeBlob,
	"VARCHAR":    TypeString,
	"VARBINARY":  TypeString,
	"CHAR":       TypeString,
	"BINARY":     TypeString,
	"GEOMETRY":   TypeGeometry,
	"VECTOR":     TypeString,
}

// TypeTagOf returns the type tag of a database type name, as reported by
// the driver. Unsigned integer types ("UNSIGNED INT") map to the same tag as
// their signed version; unknown names map to TypeUnknown.
func TypeTagOf(databaseType string) TypeTag {
	name := strings.ToUpper(strings.TrimSpace(databaseType))
	name = strings.TrimPrefix(name, "UNSIGNED ")
	if tag, ok := databaseTypes[name]; ok {
		return tag
	}
	return TypeUnknown
}

// coercion converts a fetched value to the Go type family of its column
type coercion func(Value) Value

// coercions holds the conversion applied to each type tag. Tags that are
// not listed (strings, blobs, dates, BIGINT...) are left untouched.
var coercions = map[TypeTag]coercion{
	TypeDecimal:    toFloat,
	TypeNewDecimal: toFloat,
	TypeFloat:      toFloat,
	TypeDouble:     toFloat,
	TypeTiny:       toInt,
	TypeChar:       toInt,
	TypeShort:      toInt,
	TypeLong:       toInt,
	TypeInt24:      toInt,
}

// Coerces reports whether values of the type tag are converted when a
// schema is applied
func (t TypeTag) Coerces() bool {
	_, ok := coercions[t]
	return ok
}

// toFloat converts v to a float. NULL stays NULL and values that hold no
// number are returned unchanged.
func toFloat(v Value) Value {
	if v.IsNull() || v.Kind() == KindFloat {
		return v
	}
	f, err := v.Float()
	if err != nil {
		return v
	}
	return Float(f)
}

// toInt converts v to an integer. NULL stays NULL and values that hold no
// number are returned unchanged.
func toInt(v Value) Value {
	if v.IsNull() || v.Kind() == KindInt {
		return v
	}
	i, err := v.Int()
	if err != nil {
		return v
	}
	return Int(i)
}
