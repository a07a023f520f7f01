package concept

import (
	"fmt"
	"strconv"
	"time"
)

// ValueType identifies the Go type held by a Value.
type ValueType int

const (
	ValueBoolean ValueType = iota + 1
	ValueLong
	ValueDouble
	ValueString
	ValueDateTime
)

// String implements fmt.Stringer.
func (t ValueType) String() string {
	switch t {
	case ValueBoolean:
		return "boolean"
	case ValueLong:
		return "long"
	case ValueDouble:
		return "double"
	case ValueString:
		return "string"
	case ValueDateTime:
		return "datetime"
	default:
		return fmt.Sprintf("ValueType(%d)", int(t))
	}
}

// Value is a single scalar answer, such as the result of an aggregate.
type Value struct {
	typ ValueType
	b   bool
	l   int64
	d   float64
	s   string
	t   time.Time
}

func NewBoolean(b bool) Value       { return Value{typ: ValueBoolean, b: b} }
func NewLong(l int64) Value         { return Value{typ: ValueLong, l: l} }
func NewDouble(d float64) Value     { return Value{typ: ValueDouble, d: d} }
func NewString(s string) Value      { return Value{typ: ValueString, s: s} }
func NewDateTime(t time.Time) Value { return Value{typ: ValueDateTime, t: t} }

// Type returns the value type.
func (v Value) Type() ValueType { return v.typ }

// Long returns the value as an int64.
func (v Value) Long() (int64, error) {
	if v.typ != ValueLong {
		return 0, fmt.Errorf("value is %s, not long", v.typ)
	}
	return v.l, nil
}

// Double returns the value as a float64. Longs are widened.
func (v Value) Double() (float64, error) {
	switch v.typ {
	case ValueDouble:
		return v.d, nil
	case ValueLong:
		return float64(v.l), nil
	}
	return 0, fmt.Errorf("value is %s, not double", v.typ)
}

// Boolean returns the value as a bool.
func (v Value) Boolean() (bool, error) {
	if v.typ != ValueBoolean {
		return false, fmt.Errorf("value is %s, not boolean", v.typ)
	}
	return v.b, nil
}

// DateTime returns the value in the process local time zone, so it follows
// the active TZ setting.
func (v Value) DateTime() (time.Time, error) {
	if v.typ != ValueDateTime {
		return time.Time{}, fmt.Errorf("value is %s, not datetime", v.typ)
	}
	return v.t.In(time.Local), nil
}

// String renders the value the way scenario tables spell it.
func (v Value) String() string {
	switch v.typ {
	case ValueBoolean:
		return strconv.FormatBool(v.b)
	case ValueLong:
		return strconv.FormatInt(v.l, 10)
	case ValueDouble:
		return strconv.FormatFloat(v.d, 'g', -1, 64)
	case ValueString:
		return v.s
	case ValueDateTime:
		return v.t.In(time.Local).Format("2006-01-02T15:04:05.000")
	default:
		return "<invalid value>"
	}
}
