package grade

import (
	"fmt"
	"runtime/debug"

	"github.com/sirupsen/logrus"
)

// Predictor loads the model at ModelPath and grades one input.
type Predictor struct {
	ModelPath string
	Options   LoadOptions
}

// NewPredictor returns a Predictor for the model bundle at path.
func NewPredictor(path string, opts LoadOptions) *Predictor {
	return &Predictor{ModelPath: path, Options: opts}
}

// PredictArgument parses the raw command-line argument and grades it.
func (p *Predictor) PredictArgument(raw string) Result {
	in, err := ParseInput(raw)
	if err != nil {
		logrus.Warnf("invalid input: %v", err)
		return InvalidInput(raw, err)
	}
	return p.Predict(in)
}

// Predict loads the model and grades in. It never fails: every error and
// panic becomes a fallback Result.
func (p *Predictor) Predict(in Input) (res Result) {
	defer recoverInto(&res)

	model, err := LoadModel(p.ModelPath, p.Options)
	if err != nil {
		logrus.Errorf("Error loading model: %v", err)
		return loadFailure(p.ModelPath, err)
	}
	return PredictWith(model, in)
}

// PredictWith grades in with an already loaded model.
func PredictWith(m *LoadedModel, in Input) (res Result) {
	defer recoverInto(&res)

	logrus.Debugf("Model type: %s (%s)", m.Kind, m.Path)
	logrus.Debugf("Features: %v", m.Features)

	frame := ResolveFeatures(m.Features, in)
	pred, err := Infer(m, frame)
	if err != nil {
		logrus.Errorf("Error during prediction: %v", err)
		return Failure(err)
	}
	return Success(pred)
}

func recoverInto(res *Result) {
	r := recover()
	if r == nil {
		return
	}
	stack := string(debug.Stack())
	logrus.Errorf("Error during prediction: %v", r)
	logrus.Debugf("Traceback: %s", stack)
	*res = Result{
		NutritionGrade: FallbackGrade,
		Confidence:     FallbackConfidence,
		Error:          fmt.Sprint(r),
		Traceback:      stack,
		Fallback:       true,
	}
}
