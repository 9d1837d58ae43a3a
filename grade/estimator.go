package grade

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// SoftmaxEstimator is a multinomial logistic regression: one weight row and
// one intercept per class.
type SoftmaxEstimator struct {
	coef      *mat.Dense
	intercept *mat.VecDense
}

// NewSoftmaxEstimator builds the estimator from a classes x features weight
// matrix and a per-class intercept.
func NewSoftmaxEstimator(coef [][]float64, intercept []float64) (*SoftmaxEstimator, error) {
	w, err := denseFromRows("coef", coef)
	if err != nil {
		return nil, err
	}
	classes, _ := w.Dims()
	if len(intercept) != classes {
		return nil, fmt.Errorf("softmax: intercept has %d entries, coef has %d classes", len(intercept), classes)
	}
	return &SoftmaxEstimator{
		coef:      w,
		intercept: mat.NewVecDense(classes, append([]float64(nil), intercept...)),
	}, nil
}

// Predict returns the class with the highest linear score.
func (s *SoftmaxEstimator) Predict(row []float64) (int, error) {
	scores, err := s.scores(row)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(scores), nil
}

// PredictProba returns the softmax of the linear scores.
func (s *SoftmaxEstimator) PredictProba(row []float64) ([]float64, error) {
	scores, err := s.scores(row)
	if err != nil {
		return nil, err
	}
	peak := floats.Max(scores)
	for i, v := range scores {
		scores[i] = math.Exp(v - peak)
	}
	floats.Scale(1/floats.Sum(scores), scores)
	return scores, nil
}

func (s *SoftmaxEstimator) scores(row []float64) ([]float64, error) {
	_, nFeatures := s.coef.Dims()
	if len(row) != nFeatures {
		return nil, fmt.Errorf("softmax: got %d features, model expects %d", len(row), nFeatures)
	}
	var out mat.VecDense
	out.MulVec(s.coef, mat.NewVecDense(len(row), append([]float64(nil), row...)))
	out.AddVec(&out, s.intercept)
	return append([]float64(nil), out.RawVector().Data...), nil
}

// CentroidEstimator assigns the class whose centroid is nearest in
// euclidean distance. It has no probability output.
type CentroidEstimator struct {
	centroids [][]float64
}

// NewCentroidEstimator builds the estimator from one centroid per class.
func NewCentroidEstimator(centroids [][]float64) (*CentroidEstimator, error) {
	if _, err := denseFromRows("centroids", centroids); err != nil {
		return nil, err
	}
	cs := make([][]float64, len(centroids))
	for i, c := range centroids {
		cs[i] = append([]float64(nil), c...)
	}
	return &CentroidEstimator{centroids: cs}, nil
}

// Predict returns the index of the nearest centroid.
func (c *CentroidEstimator) Predict(row []float64) (int, error) {
	if len(row) != len(c.centroids[0]) {
		return 0, fmt.Errorf("centroid: got %d features, model expects %d", len(row), len(c.centroids[0]))
	}
	best, bestDist := 0, math.Inf(1)
	for i, centroid := range c.centroids {
		if d := floats.Distance(row, centroid, 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best, nil
}

// boosterEstimator exposes a bundled boosted tree through the estimator
// interface, the way a classifier wrapper around a booster behaves.
type boosterEstimator struct {
	booster Booster
	columns []string
}

func (b *boosterEstimator) Predict(row []float64) (int, error) {
	proba, err := b.PredictProba(row)
	if err != nil {
		return 0, err
	}
	return floats.MaxIdx(proba), nil
}

func (b *boosterEstimator) PredictProba(row []float64) ([]float64, error) {
	out, err := b.booster.Predict(Frame{Columns: b.columns, Values: row})
	if err != nil {
		return nil, err
	}
	switch {
	case out.Matrix != nil:
		if out.Matrix.IsEmpty() {
			return nil, ErrEmptyOutput
		}
		return append([]float64(nil), out.Matrix.RawRowView(0)...), nil
	case len(out.Vector) == 1:
		p := out.Vector[0]
		return []float64{1 - p, p}, nil
	case len(out.Vector) > 1:
		return out.Vector, nil
	default:
		return nil, ErrEmptyOutput
	}
}

func denseFromRows(name string, rows [][]float64) (*mat.Dense, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%s: empty matrix", name)
	}
	width := len(rows[0])
	data := make([]float64, 0, len(rows)*width)
	for i, r := range rows {
		if len(r) != width {
			return nil, fmt.Errorf("%s: row %d has %d columns, want %d", name, i, len(r), width)
		}
		data = append(data, r...)
	}
	return mat.NewDense(len(rows), width, data), nil
}
