// Package analyze computes catalog statistics: yearly and magnitude-bin
// counts, Gutenberg-Richter b-value maximum-likelihood estimates, and the
// completeness summary written for downstream tooling.
package analyze
