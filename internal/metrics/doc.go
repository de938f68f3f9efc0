// Package metrics exposes Prometheus collectors for the mining daemon. The
// Observer sink feeds them from the event stream; the daemon serves them on
// the configured metrics bind address when one is set.
package metrics
