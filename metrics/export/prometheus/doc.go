// Package prometheus renders goChmod Manager metrics in Prometheus text
// exposition format.
//
// Counter names are chmod_*_total; the latency histogram is
// chmod_authorize_latency_seconds and is only written when latency
// histograms are enabled.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry. Callers mount the Handler.
//   - Mutate Manager state.
package prometheus
