// Package otel publishes goChmod Manager metrics through OpenTelemetry
// observable instruments: one Int64ObservableCounter per counter and one
// Int64ObservableGauge per latency bucket.
//
// # What this package must NOT do
//
//   - Own the MeterProvider. Callers supply the Meter.
//   - Mutate Manager state.
package otel
