// Package assemble combines a real earthquake catalog with synthetic
// catalogs into the final training dataset: it validates the synthetic
// marking, labels events with time-based cross-validation folds, computes
// dataset metrics, and persists the combined catalog, a metrics artifact,
// and an optional snapshot.
package assemble
