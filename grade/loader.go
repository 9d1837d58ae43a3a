package grade

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
)

var (
	// ErrModelNotFound means the bundle path does not exist; nothing is loaded.
	ErrModelNotFound = errors.New("model file not found")
	// ErrModelLoad means both the native and the bundle loaders failed.
	ErrModelLoad = errors.New("could not load the model using any method")
	// ErrBackendUnavailable means the model needs the boosted-tree backend
	// but the binary was built without grade/xgb.
	ErrBackendUnavailable = errors.New("boosted-tree backend is not available")
)

// DefaultNativeExt is the extension of the native boosted-tree sibling file.
const DefaultNativeExt = ".xgb"

// LoadOptions tunes LoadModel.
type LoadOptions struct {
	// NativeExt replaces the bundle's extension to find the native file.
	NativeExt string
	// PersistNative writes a bundled booster to the native path after load.
	PersistNative bool
	// DefaultFeatures is used when the model declares no feature names.
	DefaultFeatures []string
}

// DefaultLoadOptions returns the options used by the CLI.
func DefaultLoadOptions() LoadOptions {
	return LoadOptions{
		NativeExt:       DefaultNativeExt,
		PersistNative:   true,
		DefaultFeatures: DefaultFeatures,
	}
}

// NativePath returns the sibling path of the native boosted-tree file for a
// bundle path: model.pkl -> model.xgb.
func NativePath(path, ext string) string {
	if ext == "" {
		ext = DefaultNativeExt
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ext
}

// LoadModel resolves the model artifact at path.
// Resolution order: native boosted tree at the sibling path > bundle at path.
func LoadModel(path string, opts LoadOptions) (*LoadedModel, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w at %s", ErrModelNotFound, path)
		}
		return nil, fmt.Errorf("stat model: %w", err)
	}

	// 1. Native format
	native := NativePath(path, opts.NativeExt)
	booster, declared, nativeErr := openNative(native)
	if nativeErr == nil {
		logrus.Debugf("loaded native boosted tree from %s", native)
		return newBoostedTree(native, booster, pickFeatures(declared, opts.DefaultFeatures)), nil
	}
	logrus.Debugf("native load from %s failed: %v", native, nativeErr)

	// 2. Serialized bundle
	model, bundleErr := loadBundle(path, native, opts)
	if bundleErr == nil {
		return model, nil
	}
	if errors.Is(bundleErr, ErrBackendUnavailable) {
		return nil, bundleErr
	}
	logrus.Errorf("Native load error: %v", nativeErr)
	logrus.Errorf("Bundle load error: %v", bundleErr)
	return nil, fmt.Errorf("%w: %w", ErrModelLoad, errors.Join(nativeErr, bundleErr))
}

// openNative opens the native model and the feature list saved next to it.
// A missing list leaves declared nil; an unreadable one fails the native
// load so the bundle is used instead.
func openNative(path string) (Booster, []string, error) {
	if OpenBoosterFunc == nil {
		return nil, nil, errors.New("no boosted-tree backend registered")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, nil, err
	}
	declared, err := readFeatureList(FeatureListPath(path))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, nil, err
	}
	b, err := OpenBoosterFunc(path)
	if err != nil {
		return nil, nil, err
	}
	return b, declared, nil
}

func loadBundle(path, native string, opts LoadOptions) (*LoadedModel, error) {
	b, err := ReadBundle(path)
	if err != nil {
		return nil, err
	}
	if b.Model == nil {
		return nil, fmt.Errorf("bundle %s has no model entry", path)
	}

	features := b.Features
	if len(features) == 0 {
		logrus.Warnf("bundle %s declares no features; using the default list", path)
		features = pickFeatures(nil, opts.DefaultFeatures)
	}
	est, err := b.Model.estimator(features)
	if err != nil {
		return nil, err
	}
	if b.Model.Kind == EstimatorBooster && opts.PersistNative {
		persistNative(native, b.Model.Native, features)
	}

	var enc LabelEncoder
	if b.LabelEncoder != nil {
		enc = b.LabelEncoder
	}
	logrus.Debugf("loaded %s bundle from %s", b.Model.Kind, path)
	return newBundleModel(path, est, enc, features), nil
}
