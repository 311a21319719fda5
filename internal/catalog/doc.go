// Package catalog defines the earthquake event vocabulary shared across the
// quakeset pipeline.
//
// It provides the Event record with its synthetic-augmentation fields (sample
// weight, generation method, cross-validation fold), the canonical CSV codec
// used by every pipeline stage, time-based fold windows, and the dataset
// metrics structure persisted alongside assembled catalogs.
package catalog
