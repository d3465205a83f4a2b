package doc

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromAny_Literals(t *testing.T) {
	v, err := FromAny(map[string]any{
		"s":    "x",
		"i":    3,
		"f":    0.5,
		"b":    true,
		"n":    nil,
		"list": []any{"a", 1},
		"strs": []string{"ANTS"},
	})
	require.NoError(t, err)

	want := Map{
		"s":    String("x"),
		"i":    Int(3),
		"f":    Float(0.5),
		"b":    Bool(true),
		"n":    Null{},
		"list": Seq{String("a"), Int(1)},
		"strs": StringList("ANTS"),
	}
	assert.True(t, Equal(want, v))
}

func TestFromAny_Unsupported(t *testing.T) {
	_, err := FromAny(map[string]any{"ch": make(chan int)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported type")
}

func TestClone_Independent(t *testing.T) {
	orig := MustMap(map[string]any{
		"pipeline_setup": map[string]any{"pipeline_name": "abcd"},
		"using":          []any{"ANTS"},
	})
	cp := CloneMap(orig)
	require.True(t, Equal(orig, cp))

	require.NoError(t, Set(cp, P("pipeline_setup", "pipeline_name"), String("other")))
	cp["using"].(Seq)[0] = String("FSL")

	name, _ := Get(orig, P("pipeline_setup", "pipeline_name"))
	assert.Equal(t, String("abcd"), name)
	assert.Equal(t, StringList("ANTS"), orig["using"])
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"same scalar", String("a"), String("a"), true},
		{"different scalar", String("a"), String("b"), false},
		{"int vs float", Int(1), Float(1), false},
		{"null vs absent", Null{}, nil, false},
		{"map order insensitive", Map{"a": Int(1), "b": Int(2)}, Map{"b": Int(2), "a": Int(1)}, true},
		{"map extra key", Map{"a": Int(1)}, Map{"a": Int(1), "b": Int(2)}, false},
		{"seq order sensitive", StringList("a", "b"), StringList("b", "a"), false},
		{"nested", Map{"x": Seq{Map{"y": Bool(true)}}}, Map{"x": Seq{Map{"y": Bool(true)}}}, true},
		{"string vs bool", String("true"), Bool(true), false},
		{"nan", Float(math.NaN()), Float(math.NaN()), true},
		{"nan vs number", Float(math.NaN()), Float(0), false},
		{"nested nan", Map{"fwhm": Seq{Float(math.NaN())}}, Map{"fwhm": Seq{Float(math.NaN())}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Equal(tt.a, tt.b))
			assert.Equal(t, tt.want, Equal(tt.b, tt.a))
		})
	}
}

func TestStringList(t *testing.T) {
	assert.Equal(t, Seq{String("Pearson")}, StringList("Pearson"))
	assert.Empty(t, StringList())
}

func TestToAny_RoundTrip(t *testing.T) {
	in := map[string]any{
		"a": []any{int64(1), 2.5, "x", nil, true},
		"b": map[string]any{"c": "d"},
	}
	v, err := FromAny(in)
	require.NoError(t, err)
	assert.Equal(t, in, ToAny(v))
}
