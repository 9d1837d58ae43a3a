package grade

import "gonum.org/v1/gonum/mat"

// Kind tells which inference path a LoadedModel takes.
type Kind string

const (
	// KindBoostedTree is a native boosted-tree model opened from disk.
	KindBoostedTree Kind = "boosted_tree"
	// KindBundle is an estimator decoded from a serialized bundle.
	KindBundle Kind = "bundle"
)

// RawOutput is what a boosted tree returns for one row. Matrix, when set,
// holds one row of class scores per sample and takes precedence over Vector.
type RawOutput struct {
	Vector []float64
	Matrix *mat.Dense
}

// Booster is a boosted-tree model with its own matrix input.
type Booster interface {
	// Predict scores a single-row frame.
	Predict(frame Frame) (RawOutput, error)
	// FeatureNames returns the feature names stored with the model, or nil.
	FeatureNames() []string
}

// Estimator predicts a class index from an ordered feature row.
type Estimator interface {
	Predict(row []float64) (int, error)
}

// ProbaEstimator is an Estimator that can also report class probabilities.
type ProbaEstimator interface {
	Estimator
	PredictProba(row []float64) ([]float64, error)
}

// LabelEncoder maps class indices back to the labels the model was trained on.
type LabelEncoder interface {
	InverseTransform(idx int) (string, error)
}

// OpenBoosterFunc opens a native boosted-tree file. Set by grade/xgb from
// init(); nil when no backend is linked in.
var OpenBoosterFunc func(path string) (Booster, error)

// ReadBoosterFunc decodes native boosted-tree bytes embedded in a bundle.
// Set by grade/xgb from init().
var ReadBoosterFunc func(data []byte) (Booster, error)

// LoadedModel is the model artifact after loading, resolved to exactly one
// of two shapes. For KindBoostedTree only Booster is set; for KindBundle
// Estimator is set and Encoder may be.
type LoadedModel struct {
	Kind      Kind
	Path      string
	Booster   Booster
	Estimator Estimator
	Encoder   LabelEncoder
	Features  []string
}

func newBoostedTree(path string, b Booster, fallback []string) *LoadedModel {
	return &LoadedModel{
		Kind:     KindBoostedTree,
		Path:     path,
		Booster:  b,
		Features: pickFeatures(b.FeatureNames(), fallback),
	}
}

func newBundleModel(path string, est Estimator, enc LabelEncoder, features []string) *LoadedModel {
	return &LoadedModel{
		Kind:      KindBundle,
		Path:      path,
		Estimator: est,
		Encoder:   enc,
		Features:  features,
	}
}

// Description summarises a loaded model for the inspect command.
type Description struct {
	Kind     Kind     `json:"kind"`
	Path     string   `json:"path"`
	Features []string `json:"features"`
	Classes  []string `json:"classes,omitempty"`
	Proba    bool     `json:"proba"`
}

// Describe reports the model's shape, declared features and classes.
func (m *LoadedModel) Describe() Description {
	d := Description{
		Kind:     m.Kind,
		Path:     m.Path,
		Features: m.Features,
		Proba:    m.Kind == KindBoostedTree,
	}
	if _, ok := m.Estimator.(ProbaEstimator); ok {
		d.Proba = true
	}
	if enc, ok := m.Encoder.(*ClassEncoder); ok {
		d.Classes = enc.Classes
	}
	return d
}

func pickFeatures(declared, fallback []string) []string {
	if len(declared) > 0 {
		return declared
	}
	if len(fallback) > 0 {
		return fallback
	}
	return DefaultFeatures
}
