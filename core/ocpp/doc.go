// Package ocpp defines the OCPP 1.5 central-system-to-charge-point message
// types used by the dispatcher.
//
// Requests are plain values. A request built for a task is shared read-only
// by every recipient of that task and must not be mutated after construction.
// Struct tags carry both the SOAP element names and the JSON field names, which
// coincide in OCPP.
package ocpp
