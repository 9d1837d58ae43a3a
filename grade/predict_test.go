package grade

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSoftmaxModel(t *testing.T) string {
	t.Helper()
	withBackend(t, nil, nil)
	path := filepath.Join(t.TempDir(), "model.pkl")
	require.NoError(t, WriteBundle(path, softmaxBundle(DefaultFeatures)))
	return path
}

func assertValidResult(t *testing.T, res Result) {
	t.Helper()
	assert.Contains(t, []string{"a", "b", "c", "d", "e"}, res.NutritionGrade)
	assert.GreaterOrEqual(t, res.Confidence, 0.0)
	assert.LessOrEqual(t, res.Confidence, 100.0)
	_, err := json.Marshal(res)
	assert.NoError(t, err)
}

func TestPredict_EmptyInputStillGrades(t *testing.T) {
	// GIVEN a softmax bundle and an empty request
	p := NewPredictor(writeSoftmaxModel(t), DefaultLoadOptions())

	// WHEN predicting
	res := p.PredictArgument(`{}`)

	// THEN a real (non-fallback) grade comes back
	assertValidResult(t, res)
	assert.False(t, res.Fallback)
	assert.Empty(t, res.Error)
	assert.Equal(t, "b", res.NutritionGrade)
}

func TestPredict_SuccessJSONShape(t *testing.T) {
	p := NewPredictor(writeSoftmaxModel(t), DefaultLoadOptions())

	data, err := json.Marshal(p.PredictArgument(`{"energy_100g": 1200, "additives": "e330,e211"}`))
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))
	assert.Len(t, fields, 2, "success carries only nutrition_grade and confidence: %s", data)
	assert.Contains(t, fields, "nutrition_grade")
	assert.Contains(t, fields, "confidence")
}

func TestPredict_MalformedJSON(t *testing.T) {
	p := NewPredictor(writeSoftmaxModel(t), DefaultLoadOptions())

	res := p.PredictArgument(`not-json`)

	assert.True(t, res.Fallback)
	assert.Equal(t, "c", res.NutritionGrade)
	assert.Equal(t, 50.0, res.Confidence)
	assert.True(t, strings.HasPrefix(res.Error, "Invalid JSON input"), res.Error)
	assert.Equal(t, "not-json", res.InputSample)
}

func TestPredict_InputSampleIsTruncated(t *testing.T) {
	p := NewPredictor(writeSoftmaxModel(t), DefaultLoadOptions())

	res := p.PredictArgument(strings.Repeat("x", 250))

	assert.Len(t, res.InputSample, 100)
}

func TestPredict_MissingModelFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing", "model.pkl")
	p := NewPredictor(path, DefaultLoadOptions())

	res := p.Predict(Input{})

	assert.True(t, res.Fallback)
	assert.Equal(t, 50.0, res.Confidence)
	assert.Contains(t, res.Error, path)
}

func TestPredict_MissingBackend(t *testing.T) {
	withBackend(t, nil, nil)
	path := filepath.Join(t.TempDir(), "model.pkl")
	require.NoError(t, WriteBundle(path, &Bundle{Model: &ModelSpec{Kind: EstimatorBooster, Native: []byte{1}}}))

	res := NewPredictor(path, DefaultLoadOptions()).Predict(Input{})

	assert.True(t, res.Fallback)
	assert.Equal(t, "c", res.NutritionGrade)
	assert.Equal(t, 65.0, res.Confidence)
	assert.Contains(t, res.Error, "Missing backend")
}

func TestPredict_LoadFailureCarriesTraceback(t *testing.T) {
	withBackend(t, nil, nil)
	path := filepath.Join(t.TempDir(), "model.pkl")
	require.NoError(t, os.WriteFile(path, []byte{0xc1}, 0o644))

	res := NewPredictor(path, DefaultLoadOptions()).Predict(Input{})

	assert.True(t, res.Fallback)
	assert.Equal(t, 50.0, res.Confidence)
	assert.Contains(t, res.Error, ErrModelLoad.Error())
	assert.NotEmpty(t, res.Traceback)
}

type panickingEstimator struct{}

func (panickingEstimator) Predict([]float64) (int, error) { panic("index out of range") }

func TestPredictWith_PanicBecomesFallback(t *testing.T) {
	m := newBundleModel("model.pkl", panickingEstimator{}, nil, DefaultFeatures)

	res := PredictWith(m, Input{})

	assert.True(t, res.Fallback)
	assert.Equal(t, "c", res.NutritionGrade)
	assert.Equal(t, 50.0, res.Confidence)
	assert.Equal(t, "index out of range", res.Error)
	assert.Contains(t, res.Traceback, "goroutine")
}

func TestPredictWith_InferenceErrorBecomesFallback(t *testing.T) {
	m := newBoostedTree("model.xgb", &fakeBooster{}, nil)

	res := PredictWith(m, Input{})

	assert.True(t, res.Fallback)
	assert.Contains(t, res.Error, ErrEmptyOutput.Error())
}

func TestNoInput(t *testing.T) {
	data, err := json.Marshal(NoInput())
	require.NoError(t, err)

	assert.JSONEq(t, `{"error":"No input data provided","nutrition_grade":"c","confidence":50,"fallback":true}`, string(data))
}
