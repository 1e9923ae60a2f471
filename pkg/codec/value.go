package codec

import (
	"fmt"

	settings "github.com/goliatone/go-settings"
)

// Value is the serialized form of a single setting. The zero Value is empty.
type Value struct {
	kind settings.Kind
	b    bool
	i    int64
	f    float64
	s    string
}

func Bool(v bool) Value { return Value{kind: settings.KindBool, b: v} }

func Int(v int64) Value { return Value{kind: settings.KindInt, i: v} }

func Float(v float64) Value { return Value{kind: settings.KindFloat, f: v} }

func Text(v string) Value { return Value{kind: settings.KindText, s: v} }

func (v Value) Kind() settings.Kind { return v.kind }

// Any returns the underlying Go value, or nil for an empty Value.
func (v Value) Any() any {
	switch v.kind {
	case settings.KindBool:
		return v.b
	case settings.KindInt:
		return v.i
	case settings.KindFloat:
		return v.f
	case settings.KindText:
		return v.s
	default:
		return nil
	}
}

func (v Value) String() string {
	if v.kind == settings.KindEmpty {
		return "empty"
	}
	return fmt.Sprintf("%s(%v)", v.kind, v.Any())
}

// Item builds a fresh, clean item holding v.
func (v Value) Item() *settings.Item {
	switch v.kind {
	case settings.KindBool:
		return settings.FromBool(v.b)
	case settings.KindInt:
		return settings.FromInt(v.i)
	case settings.KindFloat:
		return settings.FromFloat(v.f)
	case settings.KindText:
		return settings.FromText(v.s)
	default:
		return settings.NewItem()
	}
}

// ValueOf captures the current value of item.
func ValueOf(item *settings.Item) Value {
	switch item.Kind() {
	case settings.KindBool:
		return Bool(item.Bool())
	case settings.KindInt:
		return Int(item.Int())
	case settings.KindFloat:
		return Float(item.Float())
	case settings.KindText:
		return Text(item.Text())
	default:
		return Value{}
	}
}

// Record pairs a setting name with its value.
type Record struct {
	Name  string
	Value Value
}
