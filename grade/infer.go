package grade

import (
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// ErrEmptyOutput is returned when a model produced no scores at all.
var ErrEmptyOutput = errors.New("model returned an empty prediction")

// defaultConfidence is reported by estimators without class probabilities.
const defaultConfidence = 90.0

// Prediction is a normalised model verdict.
type Prediction struct {
	Grade      string
	Confidence float64
	ClassIndex int
}

// Interpret turns a boosted tree's raw output into a class index and a
// confidence percentage:
//   - matrix: arg-max over the first row, confidence p*100;
//   - vector longer than one: class probabilities, arg-max, p*100;
//   - single value: a binary score, class 1 above 0.5, confidence is the
//     distance from 0.5 rescaled to 0..100.
func Interpret(out RawOutput) (int, float64, error) {
	switch {
	case out.Matrix != nil:
		if out.Matrix.IsEmpty() {
			return 0, 0, ErrEmptyOutput
		}
		row := out.Matrix.RawRowView(0)
		idx := floats.MaxIdx(row)
		return idx, row[idx] * 100, nil
	case len(out.Vector) > 1:
		idx := floats.MaxIdx(out.Vector)
		return idx, out.Vector[idx] * 100, nil
	case len(out.Vector) == 1:
		v := out.Vector[0]
		idx := 0
		if v > 0.5 {
			idx = 1
		}
		return idx, math.Abs(v-0.5) * 200, nil
	default:
		return 0, 0, ErrEmptyOutput
	}
}

// Infer runs the model on a resolved frame.
func Infer(m *LoadedModel, frame Frame) (Prediction, error) {
	var (
		idx  int
		conf float64
		err  error
	)
	switch m.Kind {
	case KindBoostedTree:
		idx, conf, err = inferBoosted(m.Booster, frame)
	case KindBundle:
		idx, conf, err = inferEstimator(m.Estimator, frame)
	default:
		err = fmt.Errorf("unknown model kind %q", m.Kind)
	}
	if err != nil {
		return Prediction{}, err
	}
	logrus.Debugf("Predicted class index: %d, Confidence: %v", idx, conf)

	return Prediction{
		Grade:      normalizeGrade(labelFor(m.Encoder, idx)),
		Confidence: roundConfidence(conf),
		ClassIndex: idx,
	}, nil
}

func inferBoosted(b Booster, frame Frame) (int, float64, error) {
	logrus.Debugf("Input data for booster: %v", frame)
	out, err := b.Predict(frame)
	if err != nil {
		return 0, 0, fmt.Errorf("booster predict: %w", err)
	}
	logrus.Debugf("Raw prediction: vector=%v matrix=%v", out.Vector, out.Matrix != nil)
	return Interpret(out)
}

func inferEstimator(est Estimator, frame Frame) (int, float64, error) {
	idx, err := est.Predict(frame.Values)
	if err != nil {
		return 0, 0, fmt.Errorf("estimator predict: %w", err)
	}
	pe, ok := est.(ProbaEstimator)
	if !ok {
		return idx, defaultConfidence, nil
	}
	proba, err := pe.PredictProba(frame.Values)
	if err != nil {
		return 0, 0, fmt.Errorf("estimator predict_proba: %w", err)
	}
	if idx < 0 || idx >= len(proba) {
		return 0, 0, fmt.Errorf("class index %d outside probability vector of length %d", idx, len(proba))
	}
	return idx, proba[idx] * 100, nil
}

// roundConfidence clamps to [0, 100] and rounds to two decimals.
func roundConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c):
		return 0
	case c < 0:
		return 0
	case c > 100:
		return 100
	}
	return math.Round(c*100) / 100
}
