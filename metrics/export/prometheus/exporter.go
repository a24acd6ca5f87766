package prometheus

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"strings"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/MrEthical07/adminAuth/metrics/export/internaldefs"
)

const contentType = "text/plain; version=0.0.4; charset=utf-8"

const (
	auditDroppedName = "adminauth_audit_dropped_total"
	auditDroppedHelp = "Audit events dropped because the dispatcher buffer was full."
)

type metricsSource interface {
	MetricsSnapshot() adminAuth.MetricsSnapshot
	AuditDropped() uint64
}

// PrometheusExporter renders engine counters in the Prometheus text format.
type PrometheusExporter struct {
	source metricsSource
}

// NewPrometheusExporter reads from engine on every scrape.
func NewPrometheusExporter(engine *adminAuth.Engine) *PrometheusExporter {
	return &PrometheusExporter{source: engine}
}

func NewPrometheusExporterFromSource(source metricsSource) *PrometheusExporter {
	return &PrometheusExporter{source: source}
}

// Handler serves the current snapshot. It answers 200 with an empty body
// while metrics are disabled.
func (p *PrometheusExporter) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		var buf bytes.Buffer
		p.Encode(&buf)
		w.Header().Set("Content-Type", contentType)
		_, _ = buf.WriteTo(w)
	})
}

// Render returns the exposition text, or "" when there is nothing to report.
func (p *PrometheusExporter) Render() string {
	var sb strings.Builder
	p.Encode(&sb)
	return sb.String()
}

// Encode writes every counter and histogram in definition order, so two
// renders of the same snapshot are byte-identical.
func (p *PrometheusExporter) Encode(w io.Writer) {
	if p == nil || p.source == nil {
		return
	}

	snapshot := p.source.MetricsSnapshot()
	dropped := p.source.AuditDropped()
	if len(snapshot.Counters) == 0 && len(snapshot.Histograms) == 0 && dropped == 0 {
		return
	}

	for _, def := range internaldefs.CounterDefs {
		counter(w, def.Name, def.Help, snapshot.Counters[def.ID])
	}
	for _, def := range internaldefs.HistogramDefs {
		buckets := internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(snapshot.Histograms[def.ID]))
		histogram(w, def.Name, def.Help, buckets)
	}
	counter(w, auditDroppedName, auditDroppedHelp, dropped)
}

func header(w io.Writer, name, help, kind string) {
	fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s %s\n", name, helpEscaper.Replace(help), name, kind)
}

func counter(w io.Writer, name, help string, v uint64) {
	header(w, name, help, "counter")
	fmt.Fprintf(w, "%s %d\n", name, v)
}

func histogram(w io.Writer, name, help string, cumulative [8]uint64) {
	header(w, name, help, "histogram")
	for i, le := range internaldefs.HistogramBounds {
		fmt.Fprintf(w, "%s_bucket{le=%q} %d\n", name, le, cumulative[i])
	}
	fmt.Fprintf(w, "%s_count %d\n", name, cumulative[len(cumulative)-1])
	// Snapshots carry bucket counts only.
	fmt.Fprintf(w, "%s_sum 0\n", name)
}

var helpEscaper = strings.NewReplacer(`\`, `\\`, "\n", `\n`)
