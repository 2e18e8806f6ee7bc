// Package infra holds the adapters behind the core interfaces: charge point
// transports (SOAP, MQTT), persistence, logging, metrics sinks, tracing and
// error monitoring.
package infra
