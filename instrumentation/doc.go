// Package instrumentation exposes OpenTelemetry metrics for the simulated
// servers: one counter per endpoint, labelled by outcome, and observable gauges
// that report the ledger's current size.
//
// When no MeterProvider is supplied a no-op provider is used.
package instrumentation
