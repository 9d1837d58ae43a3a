package grade

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

type fakeBooster struct {
	out   RawOutput
	err   error
	names []string
	seen  Frame
}

func (f *fakeBooster) Predict(frame Frame) (RawOutput, error) {
	f.seen = frame
	return f.out, f.err
}

func (f *fakeBooster) FeatureNames() []string { return f.names }

// fixedEstimator predicts a constant class and has no probabilities.
type fixedEstimator struct {
	class int
	err   error
}

func (e fixedEstimator) Predict([]float64) (int, error) { return e.class, e.err }

type probaEstimator struct {
	fixedEstimator
	proba []float64
}

func (e probaEstimator) PredictProba([]float64) ([]float64, error) { return e.proba, nil }

func TestInterpret_Shapes(t *testing.T) {
	tests := []struct {
		name     string
		out      RawOutput
		wantIdx  int
		wantConf float64
	}{
		{"multi-class vector", RawOutput{Vector: []float64{0.1, 0.7, 0.2}}, 1, 70},
		{"binary above threshold", RawOutput{Vector: []float64{0.9}}, 1, 80},
		{"binary below threshold", RawOutput{Vector: []float64{0.2}}, 0, 60},
		{"binary on threshold", RawOutput{Vector: []float64{0.5}}, 0, 0},
		{"matrix uses first row", RawOutput{Matrix: mat.NewDense(2, 3, []float64{0.2, 0.3, 0.5, 0.9, 0.05, 0.05})}, 2, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			idx, conf, err := Interpret(tc.out)
			require.NoError(t, err)
			assert.Equal(t, tc.wantIdx, idx)
			assert.InDelta(t, tc.wantConf, conf, 1e-9)
		})
	}
}

func TestInterpret_EmptyOutput(t *testing.T) {
	_, _, err := Interpret(RawOutput{})
	assert.ErrorIs(t, err, ErrEmptyOutput)

	_, _, err = Interpret(RawOutput{Matrix: &mat.Dense{}})
	assert.ErrorIs(t, err, ErrEmptyOutput)
}

func TestInfer_BoostedTreeFeedsNamedFrame(t *testing.T) {
	// GIVEN a five-class booster
	b := &fakeBooster{out: RawOutput{Vector: []float64{0.05, 0.05, 0.1, 0.6, 0.2}}}
	m := newBoostedTree("model.xgb", b, nil)
	frame := ResolveFeatures(m.Features, Input{"sugars_100g": 30.0})

	// WHEN inference runs
	pred, err := Infer(m, frame)

	// THEN the booster saw the named single-row frame and the index maps to d
	require.NoError(t, err)
	assert.Equal(t, DefaultFeatures, b.seen.Columns)
	v, _ := b.seen.Value("sugars_100g")
	assert.Equal(t, 30.0, v)
	assert.Equal(t, "d", pred.Grade)
	assert.Equal(t, 60.0, pred.Confidence)
}

func TestInfer_BoostedTreeError(t *testing.T) {
	m := newBoostedTree("model.xgb", &fakeBooster{err: errors.New("bad matrix")}, nil)

	_, err := Infer(m, Frame{})

	assert.ErrorContains(t, err, "bad matrix")
}

func TestInfer_EstimatorWithoutProbaDefaultsTo90(t *testing.T) {
	m := newBundleModel("model.pkl", fixedEstimator{class: 0}, nil, DefaultFeatures)

	pred, err := Infer(m, ResolveFeatures(m.Features, Input{}))

	require.NoError(t, err)
	assert.Equal(t, "a", pred.Grade)
	assert.Equal(t, 90.0, pred.Confidence)
}

func TestInfer_EstimatorProbaAtPredictedIndex(t *testing.T) {
	est := probaEstimator{fixedEstimator: fixedEstimator{class: 2}, proba: []float64{0.1, 0.2, 0.66666, 0.03334}}
	enc := &ClassEncoder{Classes: []string{"A", "B", "C", "D"}}
	m := newBundleModel("model.pkl", est, enc, DefaultFeatures)

	pred, err := Infer(m, ResolveFeatures(m.Features, Input{}))

	require.NoError(t, err)
	assert.Equal(t, "c", pred.Grade, "encoder labels are lowercased")
	assert.Equal(t, 66.67, pred.Confidence, "confidence is rounded to 2 decimals")
}

func TestInfer_EstimatorIndexOutsideProba(t *testing.T) {
	est := probaEstimator{fixedEstimator: fixedEstimator{class: 3}, proba: []float64{0.5, 0.5}}
	m := newBundleModel("model.pkl", est, nil, DefaultFeatures)

	_, err := Infer(m, ResolveFeatures(m.Features, Input{}))

	assert.Error(t, err)
}

func TestLabelFor(t *testing.T) {
	enc := &ClassEncoder{Classes: []string{"a", "b", "c"}}

	assert.Equal(t, "b", labelFor(nil, 1))
	assert.Equal(t, "e", labelFor(nil, 4))
	assert.Equal(t, FallbackGrade, labelFor(nil, 7), "unmapped index without encoder")
	assert.Equal(t, "c", labelFor(enc, 2))
	assert.Equal(t, "d", labelFor(enc, 3), "encoder failure derives 'a'+idx")
}

func TestNormalizeGrade(t *testing.T) {
	assert.Equal(t, "b", normalizeGrade(" B "))
	assert.Equal(t, "e", normalizeGrade("e"))
	assert.Equal(t, FallbackGrade, normalizeGrade("f"))
	assert.Equal(t, FallbackGrade, normalizeGrade("excellent"))
	assert.Equal(t, FallbackGrade, normalizeGrade(""))
}

func TestRoundConfidence_StaysInRange(t *testing.T) {
	assert.Equal(t, 100.0, roundConfidence(150))
	assert.Equal(t, 0.0, roundConfidence(-3))
	assert.Equal(t, 12.35, roundConfidence(12.3456))
}
