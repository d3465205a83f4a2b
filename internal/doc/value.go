package doc

import (
	"fmt"
	"maps"
	"math"
	"slices"
)

// Value is a sealed interface over the node types of a configuration document.
// Only Null, Bool, Int, Float, String, Seq and Map implement it.
type Value interface {
	docValue()
}

// Null represents an explicit YAML null.
type Null struct{}

func (Null) docValue() {}

// Bool represents a boolean scalar.
type Bool bool

func (Bool) docValue() {}

// Int represents an integer scalar.
type Int int64

func (Int) docValue() {}

// Float represents a floating point scalar.
type Float float64

func (Float) docValue() {}

// String represents a string scalar.
type String string

func (String) docValue() {}

// Seq represents a sequence of values.
type Seq []Value

func (Seq) docValue() {}

// Map represents a string-keyed mapping.
// Use SortedKeys for deterministic iteration.
type Map map[string]Value

func (Map) docValue() {}

// SortedKeys returns the mapping keys in byte order.
func (m Map) SortedKeys() []string {
	return slices.Sorted(maps.Keys(m))
}

// StringList builds a Seq of strings. A single argument still produces a list,
// which is how pipeline options such as `using` and `measure` are spelled.
func StringList(items ...string) Seq {
	seq := make(Seq, len(items))
	for i, s := range items {
		seq[i] = String(s)
	}
	return seq
}

// FromAny converts plain Go values (as produced by literals in tests or by
// other decoders) into a Value.
func FromAny(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return val, nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float64:
		return Float(val), nil
	case string:
		return String(val), nil
	case []string:
		return StringList(val...), nil
	case []any:
		seq := make(Seq, len(val))
		for i, elem := range val {
			item, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			seq[i] = item
		}
		return seq, nil
	case map[string]any:
		m := make(Map, len(val))
		for k, elem := range val {
			item, err := FromAny(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			m[k] = item
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported type: %T", v)
	}
}

// MustMap is like FromAny for a map literal but panics on error.
// Use only in tests or for literals known to be valid.
func MustMap(v map[string]any) Map {
	out, err := FromAny(v)
	if err != nil {
		panic(err)
	}
	return out.(Map)
}

// Clone returns a deep copy of v. The copy shares no mutable structure with v.
func Clone(v Value) Value {
	switch val := v.(type) {
	case Seq:
		if val == nil {
			return Seq(nil)
		}
		out := make(Seq, len(val))
		for i, elem := range val {
			out[i] = Clone(elem)
		}
		return out
	case Map:
		if val == nil {
			return Map(nil)
		}
		out := make(Map, len(val))
		for k, elem := range val {
			out[k] = Clone(elem)
		}
		return out
	default:
		// Scalars are immutable.
		return v
	}
}

// CloneMap is Clone specialised to a document root.
func CloneMap(m Map) Map {
	return Clone(m).(Map)
}

// ToAny converts v back into plain Go values: map[string]any, []any, bool,
// int64, float64, string and nil.
func ToAny(v Value) any {
	switch val := v.(type) {
	case Bool:
		return bool(val)
	case Int:
		return int64(val)
	case Float:
		return float64(val)
	case String:
		return string(val)
	case Seq:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = ToAny(elem)
		}
		return out
	case Map:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = ToAny(elem)
		}
		return out
	default:
		return nil
	}
}

// Equal reports deep structural equality. Mapping key order is irrelevant,
// sequence order is significant, Int never equals Float and NaN equals NaN.
func Equal(a, b Value) bool {
	switch x := a.(type) {
	case nil:
		return b == nil
	case Null:
		_, ok := b.(Null)
		return ok
	case Bool:
		y, ok := b.(Bool)
		return ok && x == y
	case Int:
		y, ok := b.(Int)
		return ok && x == y
	case Float:
		y, ok := b.(Float)
		return ok && (x == y || (math.IsNaN(float64(x)) && math.IsNaN(float64(y))))
	case String:
		y, ok := b.(String)
		return ok && x == y
	case Seq:
		y, ok := b.(Seq)
		if !ok || len(x) != len(y) {
			return false
		}
		for i := range x {
			if !Equal(x[i], y[i]) {
				return false
			}
		}
		return true
	case Map:
		y, ok := b.(Map)
		if !ok || len(x) != len(y) {
			return false
		}
		for k, xv := range x {
			yv, ok := y[k]
			if !ok || !Equal(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
