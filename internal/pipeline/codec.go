package pipeline

import (
	"regexp"
	"strings"
)

// TypeCode is the internal representation of a setting, inferred once at
// load time from the declared default and tooltip. Settings travel through
// a numeric-only transport; the codec is what lets booleans and enumerations
// round-trip through it without losing semantic type.
type TypeCode int

// Internal setting types.
const (
	// TypeBool - boolean, transported as 0/1.
	TypeBool TypeCode = iota
	// TypeInt - plain integer.
	TypeInt
	// TypeFloat - floating point.
	TypeFloat
	// TypeCombo - integer displayed as a combo box selection; the value is
	// the selected option's index.
	TypeCombo
)

// String returns a string representation of the type code.
func (c TypeCode) String() string {
	switch c {
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeCombo:
		return "combo"
	default:
		return "unknown"
	}
}

// comboTagRegex matches the reserved combo annotation: a literal %COMBO[
// prefix, comma-separated option labels, and arbitrary trailing text.
var comboTagRegex = regexp.MustCompile(`^%COMBO\[(?:.*?,)*.*?\].*$`)

// InferType infers the internal type of a setting from its default value,
// bounds, step, and tooltip.
//
// Priority: boolean defaults are always TypeBool regardless of tooltip;
// integral defaults with a %COMBO tooltip are TypeCombo; other integral
// defaults are TypeInt; everything else is TypeFloat. Lua numbers carry no
// int/float distinction, so a default counts as integral only when value,
// min, max, and step all have no fractional part.
func InferType(value any, min, max, step float64, tooltip string) TypeCode {
	if _, ok := value.(bool); ok {
		return TypeBool
	}

	f, ok := toFloat(value)
	if !ok {
		return TypeFloat
	}
	if isIntegral(f) && isIntegral(min) && isIntegral(max) && isIntegral(step) {
		if comboTagRegex.MatchString(tooltip) {
			return TypeCombo
		}
		return TypeInt
	}
	return TypeFloat
}

// Decode maps a transported value back to its semantic type. Decoding an
// already-correctly-typed value is a no-op.
func Decode(code TypeCode, value any) any {
	switch code {
	case TypeBool:
		if b, ok := value.(bool); ok {
			return b
		}
		if f, ok := toFloat(value); ok {
			return f != 0
		}
		return false
	case TypeInt, TypeCombo:
		if i, ok := value.(int); ok {
			return i
		}
		if f, ok := toFloat(value); ok {
			return int(f)
		}
		return 0
	default:
		if f, ok := toFloat(value); ok {
			return f
		}
		return 0.0
	}
}

// Encode maps a semantic value to the numeric transport form.
func Encode(value any) float64 {
	if b, ok := value.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	if f, ok := toFloat(value); ok {
		return f
	}
	return 0
}

// ComboLabels extracts the option labels from a %COMBO tooltip annotation.
// Returns nil when the tooltip carries no combo annotation.
func ComboLabels(tooltip string) []string {
	if !comboTagRegex.MatchString(tooltip) {
		return nil
	}
	start := strings.Index(tooltip, "[")
	end := strings.Index(tooltip, "]")
	if start < 0 || end < start {
		return nil
	}
	return strings.Split(tooltip[start+1:end], ",")
}

func toFloat(value any) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}

func isIntegral(f float64) bool {
	return f == float64(int64(f))
}
