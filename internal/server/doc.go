// Package server exposes assembled dataset snapshots over an HTTP API. It
// serves dataset summaries, metrics, fold counts, and the rendered markdown
// report from the snapshot store.
package server
