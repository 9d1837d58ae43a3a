// Package xgb evaluates XGBoost models saved in the native binary format.
// Importing it registers the backend with package grade.
package xgb

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dmitryikh/leaves"

	"github.com/nutricart/nutrigrade/grade"
)

// Booster is a loaded XGBoost ensemble. Outputs go through the model's
// objective transformation, so multi-class models yield probabilities and
// binary:logistic yields a single probability.
type Booster struct {
	ens *leaves.Ensemble
}

// ErrUnsupportedFormat is returned for JSON and UBJSON model files. Only the
// legacy binary layout written by XGBoost 0.x can be evaluated.
var ErrUnsupportedFormat = errors.New("xgb: only the legacy binary model format is supported")

// Open loads a native model file.
func Open(path string) (*Booster, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xgb: load %s: %w", path, err)
	}
	b, err := Read(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}

// Read loads a native model from memory.
func Read(data []byte) (*Booster, error) {
	// JSON and UBJSON documents both open with an object marker.
	if trimmed := bytes.TrimLeft(data, " \t\r\n"); len(trimmed) > 0 && trimmed[0] == '{' {
		return nil, ErrUnsupportedFormat
	}
	ens, err := leaves.XGEnsembleFromReader(bufio.NewReader(bytes.NewReader(data)), true)
	if err != nil {
		return nil, fmt.Errorf("xgb: read model: %w", err)
	}
	return &Booster{ens: ens}, nil
}

// FeatureNames returns nil: the binary format carries no feature names, so
// callers fall back to their configured list.
func (b *Booster) FeatureNames() []string { return nil }

// NOutputGroups is the number of scores per row (classes, or 1 for binary).
func (b *Booster) NOutputGroups() int { return b.ens.NOutputGroups() }

// Predict scores one row. Columns are fed positionally.
func (b *Booster) Predict(frame grade.Frame) (grade.RawOutput, error) {
	if n := b.ens.NFeatures(); len(frame.Values) < n {
		return grade.RawOutput{}, fmt.Errorf("xgb: got %d features, model uses %d", len(frame.Values), n)
	}
	out := make([]float64, b.ens.NOutputGroups())
	if err := b.ens.Predict(frame.Values, 0, out); err != nil {
		return grade.RawOutput{}, fmt.Errorf("xgb: predict: %w", err)
	}
	return grade.RawOutput{Vector: out}, nil
}
