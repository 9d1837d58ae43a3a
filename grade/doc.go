// Package grade predicts a product's Nutri-Score letter from its nutrition facts.
//
// # Reading Guide
//
// A prediction flows through four files, in this order:
//   - loader.go: resolves the model artifact (native boosted tree first, then
//     the serialized bundle) into a LoadedModel.
//   - features.go: turns the open-ended Input record into the model's
//     ordered feature Frame.
//   - infer.go: runs either the boosted-tree or the estimator path and
//     normalises the raw output into a grade and a confidence.
//   - predict.go: ties the steps together and converts every failure into
//     a fallback Result, so callers always get a JSON-ready value.
//
// # Backends
//
// The native boosted-tree format is decoded by grade/xgb, which registers
// itself through OpenBoosterFunc and ReadBoosterFunc from init(). Binaries
// that do not import grade/xgb still serve estimator bundles; bundles that
// need the boosted-tree backend report ErrBackendUnavailable instead.
package grade
