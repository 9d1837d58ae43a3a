package grade

import (
	"errors"
	"fmt"
	"strings"
)

// Fallback values reported whenever a real prediction could not be made.
const (
	FallbackGrade                = "c"
	FallbackConfidence           = 50.0
	MissingBackendConfidence     = 65.0
	inputSampleLimit             = 100
	noInputMessage               = "No input data provided"
	missingBackendInstallMessage = "rebuild nutrigrade with the grade/xgb backend linked in"
)

// Result is the single JSON document written for every invocation. On
// success only NutritionGrade and Confidence are set.
type Result struct {
	NutritionGrade string  `json:"nutrition_grade"`
	Confidence     float64 `json:"confidence"`
	Error          string  `json:"error,omitempty"`
	InputSample    string  `json:"input_sample,omitempty"`
	Traceback      string  `json:"traceback,omitempty"`
	Fallback       bool    `json:"fallback,omitempty"`
}

// Success wraps a prediction.
func Success(p Prediction) Result {
	return Result{NutritionGrade: p.Grade, Confidence: p.Confidence}
}

// Failure is the generic fallback for an error that reached the boundary.
func Failure(err error) Result {
	return Result{
		NutritionGrade: FallbackGrade,
		Confidence:     FallbackConfidence,
		Error:          err.Error(),
		Traceback:      errorTrace(err),
		Fallback:       true,
	}
}

// NoInput is returned when the caller passed no argument.
func NoInput() Result {
	return Result{
		NutritionGrade: FallbackGrade,
		Confidence:     FallbackConfidence,
		Error:          noInputMessage,
		Fallback:       true,
	}
}

// InvalidInput is returned for an argument that is not a JSON object.
func InvalidInput(raw string, err error) Result {
	return Result{
		NutritionGrade: FallbackGrade,
		Confidence:     FallbackConfidence,
		Error:          fmt.Sprintf("Invalid JSON input: %v", err),
		InputSample:    truncate(raw, inputSampleLimit),
		Fallback:       true,
	}
}

// ModelNotFound is returned when the model path does not exist.
func ModelNotFound(path string) Result {
	return Result{
		NutritionGrade: FallbackGrade,
		Confidence:     FallbackConfidence,
		Error:          fmt.Sprintf("Model file not found at %s", path),
		Fallback:       true,
	}
}

// MissingBackend is returned when the model needs the boosted-tree backend.
func MissingBackend(err error) Result {
	return Result{
		NutritionGrade: FallbackGrade,
		Confidence:     MissingBackendConfidence,
		Error:          fmt.Sprintf("Missing backend: %v. Please %s", err, missingBackendInstallMessage),
		Fallback:       true,
	}
}

// loadFailure picks the result for a LoadModel error.
func loadFailure(path string, err error) Result {
	switch {
	case errors.Is(err, ErrModelNotFound):
		return ModelNotFound(path)
	case errors.Is(err, ErrBackendUnavailable):
		return MissingBackend(err)
	default:
		return Failure(err)
	}
}

// errorTrace renders the wrap chain, outermost first, one cause per line.
func errorTrace(err error) string {
	var b strings.Builder
	for e := err; e != nil; e = errors.Unwrap(e) {
		fmt.Fprintf(&b, "%T: %v\n", e, e)
	}
	return b.String()
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
