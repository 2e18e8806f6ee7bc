// Package metrics defines the sink interfaces used to export dispatch
// activity. Sinks like the Prometheus and InfluxDB ones in infra/metrics
// record task and tracker events and can be combined with NewMultiSink. The
// factory helpers return a MultiSink automatically when multiple sinks are
// configured.
package metrics
