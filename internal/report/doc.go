// Package report builds, renders, parses, and validates the synthetic
// earthquake dataset report.
//
// The report is a fixed markdown document: Dataset Summary, Synthetic Data
// Methods, Magnitude Distribution, Time Period, Cross-Validation Folds, and
// Usage for Forecasting. Validation checks that every subtotal the document
// states is consistent with the totals it also states.
package report
