package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferTypeBool(t *testing.T) {
	// Boolean defaults win regardless of tooltip content.
	assert.Equal(t, TypeBool, InferType(true, 0, 1, 1, ""))
	assert.Equal(t, TypeBool, InferType(false, 0, 1, 1, "%COMBO[a,b] choices"))
}

func TestInferTypeCombo(t *testing.T) {
	tests := []struct {
		name    string
		tooltip string
		want    TypeCode
	}{
		{"plain combo", "%COMBO[a,b,c]", TypeCombo},
		{"combo with trailing text", "%COMBO[Low,Medium,High] Quality preset.", TypeCombo},
		{"single option", "%COMBO[only]", TypeCombo},
		{"not at start", "pick one %COMBO[a,b]", TypeInt},
		{"unclosed bracket", "%COMBO[a,b", TypeInt},
		{"plain tooltip", "Maximum iterations.", TypeInt},
		{"empty tooltip", "", TypeInt},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(int64(1), 0, 2, 1, tt.tooltip))
		})
	}
}

func TestInferTypeIntVsFloat(t *testing.T) {
	// Lua numbers carry no int/float distinction: a default counts as
	// integral only when value, min, max, and step all have none.
	assert.Equal(t, TypeInt, InferType(float64(3), 0, 10, 1, ""))
	assert.Equal(t, TypeFloat, InferType(float64(3), 0, 10, 0.5, ""))
	assert.Equal(t, TypeFloat, InferType(2.5, 0, 10, 1, ""))
	assert.Equal(t, TypeFloat, InferType(float64(1), 0.5, 10, 1, ""))
	assert.Equal(t, TypeInt, InferType(int64(7), -5, 100, 1, "anything"))
}

func TestInferTypeComboRequiresIntegralDefault(t *testing.T) {
	assert.Equal(t, TypeFloat, InferType(1.5, 0, 5, 0.5, "%COMBO[a,b]"))
}

func TestDecode(t *testing.T) {
	assert.Equal(t, true, Decode(TypeBool, 1.0))
	assert.Equal(t, false, Decode(TypeBool, 0.0))
	assert.Equal(t, 3, Decode(TypeInt, 3.7))
	assert.Equal(t, 2, Decode(TypeCombo, 2.0))
	assert.Equal(t, 0.25, Decode(TypeFloat, 0.25))
}

func TestDecodeIdempotent(t *testing.T) {
	// Decoding an already-correctly-typed value is a no-op.
	assert.Equal(t, true, Decode(TypeBool, true))
	assert.Equal(t, 5, Decode(TypeInt, 5))
	assert.Equal(t, 1, Decode(TypeCombo, 1))
	assert.Equal(t, 2.5, Decode(TypeFloat, 2.5))
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		value any
		code  TypeCode
	}{
		{"bool true", true, TypeBool},
		{"bool false", false, TypeBool},
		{"int", 42, TypeInt},
		{"negative int", -3, TypeInt},
		{"combo index", 2, TypeCombo},
		{"float", 1.75, TypeFloat},
		{"zero float", 0.0, TypeFloat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.value, Decode(tt.code, Encode(tt.value)))
		})
	}
}

func TestComboLabels(t *testing.T) {
	assert.Equal(t, []string{"Low", "Medium", "High"}, ComboLabels("%COMBO[Low,Medium,High] Quality preset."))
	assert.Equal(t, []string{"only"}, ComboLabels("%COMBO[only]"))
	assert.Nil(t, ComboLabels("no combo here"))
}

func TestTypeCodeString(t *testing.T) {
	assert.Equal(t, "bool", TypeBool.String())
	assert.Equal(t, "int", TypeInt.String())
	assert.Equal(t, "float", TypeFloat.String())
	assert.Equal(t, "combo", TypeCombo.String())
	assert.Equal(t, "unknown", TypeCode(99).String())
}
