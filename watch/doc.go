// Package watch resamples files as they appear in a directory and exports
// invocation metrics for Prometheus.
package watch
