// Package metrics defines the measurement sink the schedulers write to.
//
// The Writer interface decouples the queue and scheduler packages from
// any particular metrics backend. Nop, the default, discards everything;
// Prometheus exports the measurements via prometheus/client_golang with
// one series per queue name.
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	q, err := asyncqueue.New(handler,
//	    asyncqueue.WithMetrics[Job, Result](metrics.NewPrometheus(reg)),
//	)
//
// Expose reg through promhttp the usual way; all series carry the
// pacer_ prefix.
package metrics
