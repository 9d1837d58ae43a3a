package grade

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/vmihailenco/msgpack/v5"
)

// Estimator kinds a bundle can carry.
const (
	EstimatorSoftmax  = "softmax"
	EstimatorCentroid = "centroid"
	EstimatorBooster  = "booster"
)

// Bundle is the generic serialized model artifact: the model, an optional
// label encoder and the feature order it was trained with.
type Bundle struct {
	Model        *ModelSpec    `msgpack:"model"`
	LabelEncoder *ClassEncoder `msgpack:"label_encoder,omitempty"`
	Features     []string      `msgpack:"features,omitempty"`
}

// ModelSpec holds the parameters of one bundled estimator. Which fields are
// used depends on Kind.
type ModelSpec struct {
	Kind      string      `msgpack:"kind"`
	Coef      [][]float64 `msgpack:"coef,omitempty"`
	Intercept []float64   `msgpack:"intercept,omitempty"`
	Centroids [][]float64 `msgpack:"centroids,omitempty"`
	Native    []byte      `msgpack:"native,omitempty"`
}

// ReadBundle decodes a bundle file.
func ReadBundle(path string) (*Bundle, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bundle: %w", err)
	}
	defer f.Close()

	var b Bundle
	if err := msgpack.NewDecoder(f).Decode(&b); err != nil {
		return nil, fmt.Errorf("decode bundle %s: %w", path, err)
	}
	return &b, nil
}

// WriteBundle encodes b to path, replacing any existing file.
func WriteBundle(path string, b *Bundle) error {
	data, err := msgpack.Marshal(b)
	if err != nil {
		return fmt.Errorf("encode bundle: %w", err)
	}
	return writeFileAtomic(path, data)
}

// estimator builds the runtime estimator for s. columns is the
// feature order the estimator will be fed.
func (s *ModelSpec) estimator(columns []string) (Estimator, error) {
	switch s.Kind {
	case EstimatorSoftmax:
		return NewSoftmaxEstimator(s.Coef, s.Intercept)
	case EstimatorCentroid:
		return NewCentroidEstimator(s.Centroids)
	case EstimatorBooster:
		if ReadBoosterFunc == nil {
			return nil, fmt.Errorf("%w: bundle holds a boosted tree", ErrBackendUnavailable)
		}
		if len(s.Native) == 0 {
			return nil, errors.New("booster entry has no native model bytes")
		}
		b, err := ReadBoosterFunc(s.Native)
		if err != nil {
			return nil, fmt.Errorf("read bundled booster: %w", err)
		}
		return &boosterEstimator{booster: b, columns: columns}, nil
	default:
		return nil, fmt.Errorf("unknown estimator kind %q", s.Kind)
	}
}

// FeatureListPath is where the feature order of a native model is kept:
// the binary format stores no feature names.
func FeatureListPath(native string) string {
	return native + ".features"
}

func readFeatureList(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var names []string
	if err := msgpack.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("decode feature list %s: %w", path, err)
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("feature list %s is empty", path)
	}
	return names, nil
}

// persistNative writes a bundled booster in the native format next to the
// bundle so the next run takes the fast path. The feature list goes first;
// without it the native model is not written. Failures are only logged.
func persistNative(path string, data []byte, features []string) {
	names, err := msgpack.Marshal(features)
	if err == nil {
		err = writeFileAtomic(FeatureListPath(path), names)
	}
	if err != nil {
		logrus.Warnf("could not save feature list for %s, skipping native model: %v", path, err)
		return
	}
	if err := writeFileAtomic(path, data); err != nil {
		logrus.Warnf("could not save native model to %s: %v", path, err)
		return
	}
	logrus.Infof("saved native model to %s", path)
}

func writeFileAtomic(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
