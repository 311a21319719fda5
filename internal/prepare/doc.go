// Package prepare normalizes raw earthquake catalog exports into the
// canonical schema consumed by the rest of the pipeline, stamping the
// synthetic-augmentation defaults onto real events.
package prepare
