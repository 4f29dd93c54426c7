package configtree

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIsEmpty(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value Value
		want  bool
	}{
		{name: "null", value: Null(), want: true},
		{name: "empty string", value: String(""), want: true},
		{name: "empty list", value: List(), want: true},
		{name: "empty map", value: Map(nil), want: true},
		{name: "list of empties", value: List(String(""), Null(), Map(nil)), want: true},
		{name: "nested empty map", value: FromAny(map[string]any{"a": map[string]any{"b": ""}}), want: true},
		{name: "false is not empty", value: Bool(false), want: false},
		{name: "zero is not empty", value: Int(0), want: false},
		{name: "non-empty string", value: String("x"), want: false},
		{name: "list with one value", value: List(String(""), String("a")), want: false},
		{name: "map with one value", value: FromAny(map[string]any{"a": "", "b": 1}), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tc.want, IsEmpty(tc.value))
		})
	}
}

func TestNormalizePrunesEmptyEntries(t *testing.T) {
	t.Parallel()

	input := FromAny(map[string]any{
		"FunctionName": "demo",
		"Description":  "",
		"MemorySize":   256,
		"Publish":      false,
		"Layers":       []any{"", "arn:aws:lambda:us-east-1:123456789012:layer:a:1", nil},
		"Environment":  map[string]any{"Variables": map[string]any{}},
		"TracingConfig": map[string]any{
			"Mode": "",
		},
		"ImageConfig": map[string]any{
			"Command":          []any{"handler"},
			"WorkingDirectory": "",
		},
	})

	got := DefaultNormalizer().Normalize(input)

	require.Equal(t, []string{"FunctionName", "ImageConfig", "Layers", "MemorySize", "Publish"}, got.Keys())
	layers, _ := got.Get("Layers")
	require.Equal(t, []string{"arn:aws:lambda:us-east-1:123456789012:layer:a:1"}, layers.StringSlice())
	image, _ := got.Get("ImageConfig")
	require.Equal(t, []string{"Command"}, image.Keys())
	publish, _ := got.Get("Publish")
	b, ok := publish.AsBool()
	require.True(t, ok)
	require.False(t, b)
}

func TestNormalizeOnlyEmptyLeavesYieldsEmptyTree(t *testing.T) {
	t.Parallel()

	input := FromAny(map[string]any{
		"Description": "",
		"Layers":      []any{},
		"Environment": map[string]any{"Variables": map[string]any{"": ""}},
	})

	got := DefaultNormalizer().Normalize(input)
	require.Equal(t, KindMap, got.Kind())
	require.Zero(t, got.Len())
}

func TestNormalizePreservesVpcLists(t *testing.T) {
	t.Parallel()

	t.Run("empty block keeps explicit empty lists", func(t *testing.T) {
		t.Parallel()
		input := FromAny(map[string]any{
			"Description": "",
			"VpcConfig":   map[string]any{},
		})

		got := DefaultNormalizer().Normalize(input)
		vpc, ok := got.Get("VpcConfig")
		require.True(t, ok)
		require.Equal(t, []string{"SecurityGroupIds", "SubnetIds"}, vpc.Keys())
		subnets, _ := vpc.Get("SubnetIds")
		require.Equal(t, KindList, subnets.Kind())
		require.Zero(t, subnets.Len())
	})

	t.Run("non-list identifiers become empty lists", func(t *testing.T) {
		t.Parallel()
		input := FromAny(map[string]any{
			"VpcConfig": map[string]any{"SubnetIds": "subnet-1", "VpcId": ""},
		})

		got := DefaultNormalizer().Normalize(input)
		vpc, _ := got.Get("VpcConfig")
		require.Equal(t, []string{"SecurityGroupIds", "SubnetIds"}, vpc.Keys())
		subnets, _ := vpc.Get("SubnetIds")
		require.Zero(t, subnets.Len())
	})

	t.Run("absent block stays absent", func(t *testing.T) {
		t.Parallel()
		got := DefaultNormalizer().Normalize(FromAny(map[string]any{"VpcConfig": nil, "Timeout": 3}))
		_, ok := got.Get("VpcConfig")
		require.False(t, ok)
	})

	t.Run("without allow-list the block is pruned", func(t *testing.T) {
		t.Parallel()
		got := NewNormalizer().Normalize(FromAny(map[string]any{
			"VpcConfig": map[string]any{"SubnetIds": []any{}, "SecurityGroupIds": []any{}},
		}))
		require.Zero(t, got.Len())
	})
}

func TestNormalizeIsIdempotent(t *testing.T) {
	t.Parallel()

	corpus := []Value{
		Null(),
		String(""),
		Int(42),
		List(String("b"), String(""), String("a")),
		FromAny(map[string]any{
			"VpcConfig": map[string]any{"SubnetIds": []any{"subnet-1", ""}, "Extra": ""},
			"Nested":    map[string]any{"A": map[string]any{"B": []any{map[string]any{}, "x"}}},
		}),
		FromAny(map[string]any{
			"FileSystemConfigs": []any{
				map[string]any{"Arn": "arn:fs", "LocalMountPath": "/mnt/a"},
				map[string]any{"Arn": "", "LocalMountPath": ""},
			},
			"Tags": map[string]any{"team": "core", "empty": ""},
		}),
	}

	n := DefaultNormalizer()
	for _, tree := range corpus {
		once := n.Normalize(tree)
		twice := n.Normalize(once)
		require.True(t, Equal(once, twice), "normalize should be idempotent for %s", tree)
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	input := FromAny(map[string]any{"A": "", "B": "x"})
	_ = DefaultNormalizer().Normalize(input)
	require.Equal(t, 2, input.Len())
}
