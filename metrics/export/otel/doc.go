// Package otel bridges engine metrics into an OpenTelemetry meter.
//
// Counters become Int64ObservableCounter instruments. The authorize latency
// histogram is exposed as one cumulative gauge per bucket plus a count gauge.
package otel
