package configtree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDifferIdenticalConfigsAreUnchanged(t *testing.T) {
	t.Parallel()

	cfg := FromAny(map[string]any{
		"MemorySize":  128,
		"Environment": map[string]any{"Variables": map[string]any{"A": "1"}},
		"Layers":      []any{"arn:a", "arn:b"},
		"FileSystemConfigs": []any{
			map[string]any{"Arn": "arn:fs", "LocalMountPath": "/mnt/data"},
		},
	})

	delta := NewDiffer(nil).Changed(cfg, cfg)
	require.False(t, delta.Changed)
	require.Empty(t, delta.Fields)
	require.Equal(t, "", delta.Render())
}

func TestDifferPrimitiveArraysIgnoreOrder(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{"tags": []any{"a", "b"}})
	desired := FromAny(map[string]any{"tags": []any{"b", "a"}})

	require.False(t, NewDiffer(nil).Changed(current, desired).Changed)
}

func TestDifferStructuredArraysRespectOrder(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{"mounts": []any{map[string]any{"a": 1}, map[string]any{"b": 2}}})
	desired := FromAny(map[string]any{"mounts": []any{map[string]any{"b": 2}, map[string]any{"a": 1}}})

	delta := NewDiffer(nil).Changed(current, desired)
	require.True(t, delta.Changed)
	require.Equal(t, []string{"mounts"}, delta.FieldNames())
	require.Equal(t, FieldModified, delta.Fields[0].Kind)
}

func TestDifferIgnoresFieldsMissingFromDesired(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{"MemorySize": 128, "Timeout": 30, "Description": "old"})
	desired := FromAny(map[string]any{"Timeout": 30, "Description": ""})

	require.False(t, NewDiffer(nil).Changed(current, desired).Changed)
}

func TestDifferReportsNewFields(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{"Timeout": 3})
	desired := FromAny(map[string]any{"Timeout": 3, "TracingConfig": map[string]any{"Mode": "Active"}})

	delta := NewDiffer(nil).Changed(current, desired)
	require.True(t, delta.Changed)
	require.Len(t, delta.Fields, 1)
	require.Equal(t, "TracingConfig", delta.Fields[0].Field)
	require.Equal(t, FieldAdded, delta.Fields[0].Kind)
}

func TestDifferTreatsEmptyCurrentAsAbsent(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{"KMSKeyArn": ""})
	desired := FromAny(map[string]any{"KMSKeyArn": ""})

	require.False(t, NewDiffer(nil).Changed(current, desired).Changed)
}

func TestDifferScalarChangeRendersDiff(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{"MemorySize": 128})
	desired := FromAny(map[string]any{"MemorySize": 256})

	delta := NewDiffer(nil).Changed(current, desired)
	require.True(t, delta.Changed)
	require.Equal(t, "128", delta.Fields[0].Current.String())
	require.Equal(t, "256", delta.Fields[0].Desired.String())

	rendered := delta.Render()
	require.True(t, strings.Contains(rendered, "-  \"MemorySize\": 128"), rendered)
	require.True(t, strings.Contains(rendered, "+  \"MemorySize\": 256"), rendered)
}

func TestDifferVpcDetachIsAChange(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{
		"VpcConfig": map[string]any{"SubnetIds": []any{"subnet-1"}, "SecurityGroupIds": []any{"sg-1"}},
	})
	desired := FromAny(map[string]any{
		"VpcConfig": map[string]any{"SubnetIds": []any{}, "SecurityGroupIds": []any{}},
	})

	delta := NewDiffer(nil).Changed(current, desired)
	require.True(t, delta.Changed)
	require.Equal(t, []string{"VpcConfig"}, delta.FieldNames())
}

func TestDifferVpcReorderIsNotAChange(t *testing.T) {
	t.Parallel()

	current := FromAny(map[string]any{
		"VpcConfig": map[string]any{"SubnetIds": []any{"subnet-2", "subnet-1"}, "SecurityGroupIds": []any{"sg-1"}},
	})
	desired := FromAny(map[string]any{
		"VpcConfig": map[string]any{"SubnetIds": []any{"subnet-1", "subnet-2"}, "SecurityGroupIds": []any{"sg-1"}},
	})

	require.False(t, NewDiffer(nil).Changed(current, desired).Changed)
}

func TestEqual(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		a, b Value
		want bool
	}{
		{name: "kind mismatch", a: String("1"), b: Int(1), want: false},
		{name: "map extra key", a: FromAny(map[string]any{"a": 1}), b: FromAny(map[string]any{"a": 1, "b": 2}), want: false},
		{name: "nested maps", a: FromAny(map[string]any{"a": map[string]any{"b": "c"}}), b: FromAny(map[string]any{"a": map[string]any{"b": "c"}}), want: true},
		{name: "length mismatch", a: Strings([]string{"a"}), b: Strings([]string{"a", "a"}), want: false},
		{name: "multiset duplicates", a: Strings([]string{"a", "a", "b"}), b: Strings([]string{"a", "b", "b"}), want: false},
		{name: "mixed primitive kinds", a: List(Int(1), String("x"), Bool(true)), b: List(Bool(true), Int(1), String("x")), want: true},
		{name: "mixed structured list is positional", a: List(String("x"), Map(nil)), b: List(Map(nil), String("x")), want: false},
		{name: "null equals null", a: Null(), b: Null(), want: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, Equal(tc.a, tc.b))
		})
	}
}
