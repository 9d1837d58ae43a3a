package grade

import (
	"strings"
	"unicode/utf8"
)

// Derived feature names and the input fields they are computed from.
const (
	FeatureUpstreamScore     = "nutrition-score-fr_100g"
	FeatureIngredientsLength = "ingredients_text_length"
	FeatureAdditivesLength   = "additives_text_length"
	FeatureAdditivesCount    = "additives_n"

	FieldIngredientsText = "ingredients_text"
	FieldAdditives       = "additives"
)

// DefaultFeatures is the feature order the production model was trained on.
// It is used when neither the model nor its bundle declares feature names.
var DefaultFeatures = []string{
	"energy_100g", "fat_100g", "saturated-fat_100g",
	"carbohydrates_100g", "sugars_100g", "fiber_100g",
	"proteins_100g", "salt_100g", "sodium_100g", "iron_100g",
	FeatureAdditivesCount, FeatureIngredientsLength,
	FeatureAdditivesLength, FeatureUpstreamScore,
}

// Frame is a single-row table: one named column per feature, in the order
// the model declares them.
type Frame struct {
	Columns []string
	Values  []float64
}

// Len returns the number of columns.
func (f Frame) Len() int { return len(f.Columns) }

// Value returns the value of the named column.
func (f Frame) Value(name string) (float64, bool) {
	for i, c := range f.Columns {
		if c == name {
			return f.Values[i], true
		}
	}
	return 0, false
}

// ResolveFeatures builds the frame for the given feature names. Every name
// receives exactly one value; anything that cannot be derived is 0.
func ResolveFeatures(names []string, in Input) Frame {
	frame := Frame{
		Columns: append([]string(nil), names...),
		Values:  make([]float64, len(names)),
	}
	for i, name := range names {
		frame.Values[i] = resolveFeature(name, in)
	}
	return frame
}

func resolveFeature(name string, in Input) float64 {
	switch name {
	case FeatureUpstreamScore:
		return 0
	case FeatureIngredientsLength:
		return textLength(in, FieldIngredientsText)
	case FeatureAdditivesLength:
		return textLength(in, FieldAdditives)
	case FeatureAdditivesCount:
		text, ok := in.Text(FieldAdditives)
		if !ok {
			return 0
		}
		return float64(len(strings.Split(text, ",")))
	default:
		return CoerceFeature(in[name])
	}
}

func textLength(in Input, field string) float64 {
	text, ok := in.Text(field)
	if !ok {
		return 0
	}
	return float64(utf8.RuneCountInString(text))
}
