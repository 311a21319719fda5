// Package faults ships the simplified North Anatolian Fault segment table for
// the Marmara region and the command exporting it to CSV for downstream
// analysis tooling.
package faults
