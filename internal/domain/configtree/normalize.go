package configtree

// PreserveRule keeps a block's list children even when they are empty. The
// Lambda API treats a VpcConfig with zero subnets differently from no
// VpcConfig at all, so those lists must survive pruning.
type PreserveRule struct {
	Block string
	Lists []string
}

// Normalizer prunes semantically empty values from configuration trees.
type Normalizer struct {
	rules map[string][]string
}

// NewNormalizer returns a Normalizer honouring the supplied allow-list.
func NewNormalizer(rules ...PreserveRule) *Normalizer {
	n := &Normalizer{rules: make(map[string][]string, len(rules))}
	for _, rule := range rules {
		if rule.Block == "" {
			continue
		}
		n.rules[rule.Block] = append(n.rules[rule.Block], rule.Lists...)
	}
	return n
}

// DefaultNormalizer preserves the VpcConfig identifier lists.
func DefaultNormalizer() *Normalizer {
	return NewNormalizer(PreserveRule{
		Block: "VpcConfig",
		Lists: []string{"SubnetIds", "SecurityGroupIds"},
	})
}

// IsEmpty reports whether v carries no information: null, "", an empty
// collection, or a collection made only of empty values.
func IsEmpty(v Value) bool {
	switch v.kind {
	case KindNull:
		return true
	case KindString:
		return v.s == ""
	case KindList:
		for _, item := range v.list {
			if !IsEmpty(item) {
				return false
			}
		}
		return true
	case KindMap:
		for _, item := range v.m {
			if !IsEmpty(item) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// Normalize returns v with every empty entry removed. A top-level value that
// is entirely empty normalizes to an empty map when it was a map and Null
// otherwise.
func (n *Normalizer) Normalize(v Value) Value {
	out, ok := n.walk(v)
	if ok {
		return out
	}
	if v.kind == KindMap {
		return Map(nil)
	}
	if v.kind == KindList {
		return List()
	}
	return Null()
}

// walk returns the pruned value and false when it should be dropped.
func (n *Normalizer) walk(v Value) (Value, bool) {
	switch v.kind {
	case KindMap:
		entries := make(map[string]Value, len(v.m))
		for key, item := range v.m {
			if lists, ok := n.rules[key]; ok && item.kind == KindMap {
				entries[key] = n.preserveBlock(item, lists)
				continue
			}
			if pruned, keep := n.walk(item); keep {
				entries[key] = pruned
			}
		}
		if len(entries) == 0 {
			return Value{}, false
		}
		return Value{kind: KindMap, m: entries}, true
	case KindList:
		items := make([]Value, 0, len(v.list))
		for _, item := range v.list {
			if pruned, keep := n.walk(item); keep {
				items = append(items, pruned)
			}
		}
		if len(items) == 0 {
			return Value{}, false
		}
		return Value{kind: KindList, list: items}, true
	default:
		if IsEmpty(v) {
			return Value{}, false
		}
		return v, true
	}
}

func (n *Normalizer) preserveBlock(block Value, lists []string) Value {
	preserved := make(map[string]struct{}, len(lists))
	entries := make(map[string]Value, len(block.m)+len(lists))
	for _, name := range lists {
		preserved[name] = struct{}{}
		item, ok := block.m[name]
		if !ok || item.kind != KindList {
			entries[name] = List()
			continue
		}
		kept := make([]Value, 0, len(item.list))
		for _, element := range item.list {
			if pruned, keep := n.walk(element); keep {
				kept = append(kept, pruned)
			}
		}
		entries[name] = Value{kind: KindList, list: kept}
	}
	for key, item := range block.m {
		if _, ok := preserved[key]; ok {
			continue
		}
		if pruned, keep := n.walk(item); keep {
			entries[key] = pruned
		}
	}
	return Value{kind: KindMap, m: entries}
}
