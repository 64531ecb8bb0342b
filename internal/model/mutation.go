package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// FieldKind is the column type a body field is coerced to before binding.
type FieldKind int

const (
	Text FieldKind = iota
	Integer
	Decimal
)

func (k FieldKind) String() string {
	switch k {
	case Integer:
		return "integer"
	case Decimal:
		return "decimal"
	default:
		return "text"
	}
}

// Booking status values written by the gateway.
const (
	BookingStatusPending = "Pending"
)

// DefaultCommissionRate is stored for agents created without a rate.
var DefaultCommissionRate = decimal.RequireFromString("10.00")

// Field is one JSON body field bound to the column of the same name.
// Default is used when a non-required field is absent or null; a nil
// Default stores SQL NULL.
type Field struct {
	Name     string
	Kind     FieldKind
	Required bool
	Default  any
}

// Mutation is the field list of one INSERT or UPDATE against an entity.
type Mutation struct {
	Entity Entity
	Fields []Field
}

// Assignment holds bound columns and their arguments in field order.
type Assignment struct {
	Columns []string
	Args    []any
}

// Map returns the assignment as column -> value.
func (a Assignment) Map() map[string]any {
	m := make(map[string]any, len(a.Columns))
	for i, c := range a.Columns {
		m[c] = a.Args[i]
	}
	return m
}

var (
	CreateAgent = Mutation{Entity: Agents, Fields: []Field{
		{Name: "Name", Kind: Text, Required: true},
		{Name: "Email", Kind: Text, Required: true},
		{Name: "Phone", Kind: Text, Required: true},
		{Name: "CommissionRate", Kind: Decimal, Default: DefaultCommissionRate},
	}}
	CreateBooking = Mutation{Entity: Bookings, Fields: []Field{
		{Name: "CustomerID", Kind: Integer, Required: true},
		{Name: "PackageID", Kind: Integer, Required: true},
		{Name: "TotalAmount", Kind: Decimal, Required: true},
		{Name: "AgentID", Kind: Integer, Required: true},
		{Name: "Status", Kind: Text, Default: BookingStatusPending},
		{Name: "TransportID", Kind: Integer},
	}}
	// UpdateAgent replaces every editable agent column.
	UpdateAgent = Mutation{Entity: Agents, Fields: []Field{
		{Name: "Name", Kind: Text, Required: true},
		{Name: "Email", Kind: Text, Required: true},
		{Name: "Phone", Kind: Text, Required: true},
		{Name: "CommissionRate", Kind: Decimal, Required: true},
	}}
	// UpdateBooking only touches the status column.
	UpdateBooking = Mutation{Entity: Bookings, Fields: []Field{
		{Name: "Status", Kind: Text, Required: true},
	}}
)

// Creates lists the insert mutations served by POST.
func Creates() []Mutation { return []Mutation{CreateAgent, CreateBooking} }

// Updates lists the update mutations served by PUT.
func Updates() []Mutation { return []Mutation{UpdateAgent, UpdateBooking} }

var validate = validator.New()

// Bind validates body against the field list and returns the values to
// bind. A required field is missing when it is absent, null, empty, zero or
// false. Missing fields are reported together before any value is coerced.
func (m Mutation) Bind(body map[string]any) (Assignment, error) {
	var missing []string
	for _, f := range m.Fields {
		if !f.Required {
			continue
		}
		if err := validate.Var(body[f.Name], "required"); err != nil {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		return Assignment{}, &MissingFieldsError{Fields: missing}
	}

	a := Assignment{
		Columns: make([]string, 0, len(m.Fields)),
		Args:    make([]any, 0, len(m.Fields)),
	}
	for _, f := range m.Fields {
		raw := body[f.Name]
		var v any
		if raw == nil {
			v = f.Default
		} else {
			var err error
			if v, err = f.Kind.coerce(raw); err != nil {
				return Assignment{}, &FieldError{Field: f.Name, Kind: f.Kind, Err: err}
			}
		}
		a.Columns = append(a.Columns, f.Name)
		a.Args = append(a.Args, v)
	}
	return a, nil
}

// coerce converts a decoded JSON value (string, float64, bool, map, slice)
// into a driver argument of kind k.
func (k FieldKind) coerce(raw any) (any, error) {
	switch k {
	case Integer:
		switch t := raw.(type) {
		case float64:
			if t != math.Trunc(t) || math.IsInf(t, 0) {
				return nil, fmt.Errorf("%v is not a whole number", t)
			}
			// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold
			if t < math.MinInt64 || t >= math.MaxInt64 {
				return nil, fmt.Errorf("%v is out of range", t)
			}
			return int64(t), nil
		case string:
			return strconv.ParseInt(strings.TrimSpace(t), 10, 64)
		}
	case Decimal:
		switch t := raw.(type) {
		case float64:
			return decimal.NewFromFloat(t), nil
		case string:
			return decimal.NewFromString(strings.TrimSpace(t))
		}
	default:
		switch t := raw.(type) {
		case string:
			return t, nil
		case float64:
			return strconv.FormatFloat(t, 'f', -1, 64), nil
		}
	}
	return nil, fmt.Errorf("unsupported JSON type %T", raw)
}
