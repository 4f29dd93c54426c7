package configtree

import (
	"encoding/json"
	"sort"

	"github.com/alexisbeaulieu97/lambda-deploy/pkg/diff"
)

// ChangeKind classifies a field-level difference.
type ChangeKind string

const (
	FieldAdded    ChangeKind = "added"
	FieldModified ChangeKind = "modified"
)

// FieldChange describes one top-level field that differs.
type FieldChange struct {
	Field   string
	Kind    ChangeKind
	Current Value
	Desired Value
}

// Delta is the result of comparing two configurations. It is a decision, not
// a patch.
type Delta struct {
	Changed bool
	Fields  []FieldChange

	current Value
	desired Value
}

// FieldNames lists the changed top-level fields in order.
func (d Delta) FieldNames() []string {
	names := make([]string, 0, len(d.Fields))
	for _, f := range d.Fields {
		names = append(names, f.Field)
	}
	return names
}

// Render returns a unified diff of the normalized configurations, or "" when
// nothing changed.
func (d Delta) Render() string {
	if !d.Changed {
		return ""
	}
	current, err := renderIndented(d.current)
	if err != nil {
		return ""
	}
	desired, err := renderIndented(d.desired)
	if err != nil {
		return ""
	}
	return diff.GenerateUnifiedDiff(current, desired, "current", "desired")
}

// Differ compares normalized configuration trees.
type Differ struct {
	normalizer *Normalizer
}

// NewDiffer builds a Differ that normalizes both sides with n. A nil
// normalizer falls back to DefaultNormalizer.
func NewDiffer(n *Normalizer) *Differ {
	if n == nil {
		n = DefaultNormalizer()
	}
	return &Differ{normalizer: n}
}

// Changed compares current against desired. Only fields present in the
// normalized desired tree can produce a change; fields the caller left out
// are never reported even when current holds a value for them.
func (d *Differ) Changed(current, desired Value) Delta {
	cur := d.normalizer.Normalize(current)
	des := d.normalizer.Normalize(desired)

	delta := Delta{current: cur, desired: des}
	for _, key := range des.Keys() {
		want, _ := des.Get(key)
		have, ok := cur.Get(key)
		switch {
		case !ok:
			delta.Fields = append(delta.Fields, FieldChange{Field: key, Kind: FieldAdded, Desired: want})
		case !Equal(have, want):
			delta.Fields = append(delta.Fields, FieldChange{Field: key, Kind: FieldModified, Current: have, Desired: want})
		}
	}
	delta.Changed = len(delta.Fields) > 0
	return delta
}

// Equal reports structural equality. Lists whose elements are all primitives
// compare as multisets; lists holding structured elements compare by
// position.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindMap:
		if len(a.m) != len(b.m) {
			return false
		}
		for key, left := range a.m {
			right, ok := b.m[key]
			if !ok || !Equal(left, right) {
				return false
			}
		}
		return true
	case KindList:
		if len(a.list) != len(b.list) {
			return false
		}
		if allPrimitive(a.list) && allPrimitive(b.list) {
			left := sortedPrimitives(a.list)
			right := sortedPrimitives(b.list)
			for i := range left {
				if !Equal(left[i], right[i]) {
					return false
				}
			}
			return true
		}
		for i := range a.list {
			if !Equal(a.list[i], b.list[i]) {
				return false
			}
		}
		return true
	}
	return false
}

func allPrimitive(items []Value) bool {
	for _, item := range items {
		if !item.IsPrimitive() {
			return false
		}
	}
	return true
}

func sortedPrimitives(items []Value) []Value {
	out := make([]Value, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].kind != out[j].kind {
			return out[i].kind < out[j].kind
		}
		switch out[i].kind {
		case KindBool:
			return !out[i].b && out[j].b
		case KindNumber:
			return out[i].n < out[j].n
		default:
			return out[i].s < out[j].s
		}
	})
	return out
}

func renderIndented(v Value) ([]byte, error) {
	data, err := json.MarshalIndent(v.Interface(), "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
