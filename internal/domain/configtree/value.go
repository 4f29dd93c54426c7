package configtree

import (
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
)

// Kind identifies the variant held by a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// Value is an immutable configuration tree node. The zero Value is Null.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string
	list []Value
	m    map[string]Value
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a numeric value.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Int wraps an integer.
func Int(n int) Value { return Number(float64(n)) }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// List builds a list from the supplied elements.
func List(items ...Value) Value {
	out := make([]Value, len(items))
	copy(out, items)
	return Value{kind: KindList, list: out}
}

// Strings builds a list of strings.
func Strings(items []string) Value {
	out := make([]Value, len(items))
	for i, item := range items {
		out[i] = String(item)
	}
	return Value{kind: KindList, list: out}
}

// Map builds a map node. The input map is copied.
func Map(entries map[string]Value) Value {
	out := make(map[string]Value, len(entries))
	for k, v := range entries {
		out[k] = v
	}
	return Value{kind: KindMap, m: out}
}

// StringMap builds a map node from string values.
func StringMap(entries map[string]string) Value {
	out := make(map[string]Value, len(entries))
	for k, v := range entries {
		out[k] = String(v)
	}
	return Value{kind: KindMap, m: out}
}

// FromAny converts decoded JSON/YAML data into a Value. Unsupported types are
// rendered with fmt and stored as strings.
func FromAny(raw any) Value {
	switch v := raw.(type) {
	case nil:
		return Null()
	case Value:
		return v
	case bool:
		return Bool(v)
	case string:
		return String(v)
	case int:
		return Int(v)
	case int32:
		return Number(float64(v))
	case int64:
		return Number(float64(v))
	case float32:
		return Number(float64(v))
	case float64:
		return Number(v)
	case []string:
		return Strings(v)
	case []any:
		items := make([]Value, len(v))
		for i, item := range v {
			items[i] = FromAny(item)
		}
		return Value{kind: KindList, list: items}
	case map[string]string:
		return StringMap(v)
	case map[string]any:
		entries := make(map[string]Value, len(v))
		for key, item := range v {
			entries[key] = FromAny(item)
		}
		return Value{kind: KindMap, m: entries}
	default:
		return String(fmt.Sprintf("%v", v))
	}
}

// Kind reports the variant of v.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is the null value.
func (v Value) IsNull() bool { return v.kind == KindNull }

// IsPrimitive reports whether v is a bool, number or string.
func (v Value) IsPrimitive() bool {
	return v.kind == KindBool || v.kind == KindNumber || v.kind == KindString
}

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) { return v.b, v.kind == KindBool }

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) { return v.n, v.kind == KindNumber }

// AsInt32 returns the numeric payload truncated to int32.
func (v Value) AsInt32() (int32, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return int32(v.n), true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) { return v.s, v.kind == KindString }

// Len returns the number of elements of a list or entries of a map.
func (v Value) Len() int {
	switch v.kind {
	case KindList:
		return len(v.list)
	case KindMap:
		return len(v.m)
	default:
		return 0
	}
}

// Items returns a copy of the list elements.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	out := make([]Value, len(v.list))
	copy(out, v.list)
	return out
}

// Get returns the entry stored under key in a map node.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Null(), false
	}
	item, ok := v.m[key]
	return item, ok
}

// Keys returns the sorted keys of a map node.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// StringSlice returns the string elements of a list node, skipping others.
func (v Value) StringSlice() []string {
	if v.kind != KindList {
		return nil
	}
	out := make([]string, 0, len(v.list))
	for _, item := range v.list {
		if s, ok := item.AsString(); ok {
			out = append(out, s)
		}
	}
	return out
}

// StringMapping returns the string-valued entries of a map node.
func (v Value) StringMapping() map[string]string {
	if v.kind != KindMap {
		return nil
	}
	out := make(map[string]string, len(v.m))
	for k, item := range v.m {
		switch item.kind {
		case KindString:
			out[k] = item.s
		case KindNumber, KindBool:
			out[k] = item.scalarString()
		}
	}
	return out
}

// With returns a copy of a map node with key set to item. Non-map receivers
// are treated as empty maps.
func (v Value) With(key string, item Value) Value {
	entries := make(map[string]Value, len(v.m)+1)
	if v.kind == KindMap {
		for k, existing := range v.m {
			entries[k] = existing
		}
	}
	entries[key] = item
	return Value{kind: KindMap, m: entries}
}

// Interface converts v back into plain Go data.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindList:
		out := make([]any, len(v.list))
		for i, item := range v.list {
			out[i] = item.Interface()
		}
		return out
	case KindMap:
		out := make(map[string]any, len(v.m))
		for k, item := range v.m {
			out[k] = item.Interface()
		}
		return out
	default:
		return nil
	}
}

// MarshalJSON renders the tree with sorted map keys.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// String renders the value compactly for log messages.
func (v Value) String() string {
	if v.IsPrimitive() {
		return v.scalarString()
	}
	data, err := v.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("<%s>", v.kind)
	}
	return string(data)
}

func (v Value) scalarString() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		if v.n == math.Trunc(v.n) && math.Abs(v.n) < 1e15 {
			return strconv.FormatInt(int64(v.n), 10)
		}
		return strconv.FormatFloat(v.n, 'g', -1, 64)
	case KindString:
		return v.s
	default:
		return "null"
	}
}
