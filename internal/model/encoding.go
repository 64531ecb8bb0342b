package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Wire layouts for temporal columns (ISO-8601, no zone, as stored). Values
// with a fractional second use DateTimeMicroLayout, which always prints six
// digits.
const (
	DateLayout          = "2006-01-02"
	DateTimeLayout      = "2006-01-02T15:04:05"
	DateTimeMicroLayout = "2006-01-02T15:04:05.000000"
)

// mysql text protocol layout for DATETIME/TIMESTAMP values.
const sqlDateTimeLayout = "2006-01-02 15:04:05.999999"

// Encoder turns a scanned driver value into its JSON representation.
type Encoder func(v any) (any, error)

// wireEncoders is the serialization policy: database type name -> wire
// representation. Types not listed use encodeDefault.
var wireEncoders = map[string]Encoder{
	"DECIMAL":    encodeDecimal,
	"NUMERIC":    encodeDecimal,
	"DATE":       encodeDate,
	"DATETIME":   encodeDateTime,
	"TIMESTAMP":  encodeDateTime,
	"TIME":       encodeText,
	"YEAR":       encodeText,
	"CHAR":       encodeText,
	"VARCHAR":    encodeText,
	"TEXT":       encodeText,
	"TINYTEXT":   encodeText,
	"MEDIUMTEXT": encodeText,
	"LONGTEXT":   encodeText,
	"ENUM":       encodeText,
	"SET":        encodeText,
}

// EncodeValue applies the serialization policy for a column of dbType.
// NULL is always encoded as JSON null.
func EncodeValue(dbType string, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if enc, ok := wireEncoders[normalizeType(dbType)]; ok {
		return enc(v)
	}
	return encodeDefault(v)
}

// normalizeType strips size/precision suffixes such as "DECIMAL(10,2)".
func normalizeType(t string) string {
	t = strings.ToUpper(strings.TrimSpace(t))
	if i := strings.IndexByte(t, '('); i >= 0 {
		t = strings.TrimSpace(t[:i])
	}
	return t
}

func encodeDefault(v any) (any, error) {
	switch t := v.(type) {
	case []byte:
		return string(t), nil
	case time.Time:
		return formatDateTime(t), nil
	}
	return v, nil
}

func encodeText(v any) (any, error) {
	switch t := v.(type) {
	case []byte:
		return string(t), nil
	case string:
		return t, nil
	case time.Time:
		return formatDateTime(t), nil
	}
	return fmt.Sprint(v), nil
}

func encodeDecimal(v any) (any, error) {
	var d decimal.Decimal
	switch t := v.(type) {
	case []byte:
		return encodeDecimal(string(t))
	case string:
		var err error
		if d, err = decimal.NewFromString(t); err != nil {
			return nil, fmt.Errorf("decode decimal %q: %w", t, err)
		}
	case float64:
		d = decimal.NewFromFloat(t)
	case int64:
		d = decimal.NewFromInt(t)
	case decimal.Decimal:
		d = t
	default:
		return nil, fmt.Errorf("decode decimal: unsupported type %T", v)
	}
	return d.InexactFloat64(), nil
}

func encodeDate(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(DateLayout), nil
	case []byte:
		return string(t), nil
	case string:
		return t, nil
	}
	return nil, fmt.Errorf("decode date: unsupported type %T", v)
}

func encodeDateTime(v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return formatDateTime(t), nil
	case []byte:
		return encodeDateTime(string(t))
	case string:
		if ts, err := time.Parse(sqlDateTimeLayout, t); err == nil {
			return formatDateTime(ts), nil
		}
		return t, nil
	}
	return nil, fmt.Errorf("decode datetime: unsupported type %T", v)
}

// formatDateTime drops the fraction only when there are no microseconds.
func formatDateTime(t time.Time) string {
	if t.Nanosecond()/int(time.Microsecond) == 0 {
		return t.Format(DateTimeLayout)
	}
	return t.Format(DateTimeMicroLayout)
}
