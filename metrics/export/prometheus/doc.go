// Package prometheus serves engine metrics in the Prometheus text exposition
// format.
//
// [NewPrometheusExporter] wraps an [adminAuth.Engine]; mount
// [PrometheusExporter.Handler] on the scrape path. Output is empty while
// metrics are disabled.
package prometheus
