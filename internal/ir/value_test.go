package ir

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValueSet_AcceptsNumbers(t *testing.T) {
	vs, err := ParseValueSet(map[string]any{
		"a": 1,
		"b": 2.5,
		"c": int64(-3),
		"d": json.Number("0.25"),
		"e": float32(0.5),
	})
	require.NoError(t, err)
	assert.Equal(t, ValueSet{"a": 1, "b": 2.5, "c": -3, "d": 0.25, "e": 0.5}, vs)
}

func TestParseValueSet_RejectsNonNumeric(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		key  string
	}{
		{"string", map[string]any{"a": 1, "b": "x"}, "b"},
		{"bool", map[string]any{"a": true}, "a"},
		{"null", map[string]any{"a": nil}, "a"},
		{"nested object", map[string]any{"pos": map[string]any{"x": 1}}, "pos"},
		{"list", map[string]any{"a": []any{1, 2}}, "a"},
		{"nan", map[string]any{"a": math.NaN()}, "a"},
		{"inf", map[string]any{"a": math.Inf(1)}, "a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vs, err := ParseValueSet(tt.raw)
			require.Error(t, err)
			assert.Nil(t, vs)

			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.key, ve.Key)
			assert.True(t, IsValidationError(err))
		})
	}
}

func TestParseValueSet_NilMap(t *testing.T) {
	_, err := ParseValueSet(nil)
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestParseNamedValueSet_AttributesField(t *testing.T) {
	_, err := ParseNamedValueSet("target", map[string]any{"a": "x"})
	require.Error(t, err)
	assert.Equal(t, `invalid target: key "a": expected number, got string`, err.Error())
}

func TestValidateKeys(t *testing.T) {
	require.NoError(t, ValidateKeys(ValueSet{"x": 1, "y": 2}, "x", "y"))
	require.NoError(t, ValidateKeys(ValueSet{"x": 1}, "x", "y"))

	err := ValidateKeys(ValueSet{"x": 1, "z": 2}, "x", "y")
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "z", ve.Key)
}

func TestSameKeys(t *testing.T) {
	require.NoError(t, SameKeys(ValueSet{"a": 1, "b": 2}, ValueSet{"b": 0, "a": 0}))

	err := SameKeys(ValueSet{"a": 1, "b": 2}, ValueSet{"a": 1})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "b", ve.Key)
	assert.Equal(t, "missing key", ve.Reason)

	err = SameKeys(ValueSet{"a": 1}, ValueSet{"a": 1, "c": 3})
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "c", ve.Key)
	assert.Equal(t, "unexpected key", ve.Reason)
}

func TestValueSet_CloneIsIndependent(t *testing.T) {
	orig := ValueSet{"a": 1}
	cp := orig.Clone()
	cp["a"] = 2
	assert.Equal(t, 1.0, orig["a"])
	assert.Nil(t, ValueSet(nil).Clone())
}

func TestValueSet_Equal(t *testing.T) {
	assert.True(t, ValueSet{"a": 1, "b": 2}.Equal(ValueSet{"b": 2, "a": 1}))
	assert.False(t, ValueSet{"a": 1}.Equal(ValueSet{"a": 1.0000001}))
	assert.False(t, ValueSet{"a": 1}.Equal(ValueSet{"b": 1}))
	assert.False(t, ValueSet{"a": 1}.Equal(ValueSet{"a": 1, "b": 1}))
}

func TestValueSet_SortedKeysUTF16Order(t *testing.T) {
	// U+1F600 encodes as surrogates 0xD83D 0xDE00, which sort before U+FB01.
	vs := ValueSet{"\uFB01": 1, "\U0001F600": 2, "b": 3, "a": 4}
	assert.Equal(t, []string{"a", "b", "\U0001F600", "\uFB01"}, vs.SortedKeys())
}

func TestTweenSpec_Validate(t *testing.T) {
	valid := TweenSpec{
		Name:     "fade",
		From:     ValueSet{"a": 0},
		To:       ValueSet{"a": 1},
		Duration: time.Second,
		Refresh:  DefaultRefresh,
	}
	require.NoError(t, valid.Validate())

	noDuration := valid
	noDuration.Duration = 0
	err := noDuration.Validate()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "duration", ve.Field)

	badRefresh := valid
	badRefresh.Refresh = -time.Millisecond
	require.ErrorAs(t, badRefresh.Validate(), &ve)
	assert.Equal(t, "refresh", ve.Field)

	mismatched := valid
	mismatched.To = ValueSet{"b": 1}
	require.ErrorAs(t, mismatched.Validate(), &ve)
	assert.Equal(t, "to", ve.Field)
}
