package otel

import (
	"context"
	"errors"
	"fmt"

	adminAuth "github.com/MrEthical07/adminAuth"
	"github.com/MrEthical07/adminAuth/metrics/export/internaldefs"
	"go.opentelemetry.io/otel/metric"
)

var (
	ErrNilMeter  = errors.New("nil meter")
	ErrNilSource = errors.New("nil metrics source")
)

type metricsSource interface {
	MetricsSnapshot() adminAuth.MetricsSnapshot
	AuditDropped() uint64
}

// reading is what one collection cycle sees: a snapshot plus the audit drop
// count, with histogram buckets already made cumulative.
type reading struct {
	snapshot   adminAuth.MetricsSnapshot
	dropped    uint64
	cumulative map[adminAuth.MetricID][8]uint64
}

// observation binds an instrument to the value it reports from a reading.
type observation struct {
	instrument metric.Int64Observable
	value      func(reading) uint64
}

// OTelExporter publishes engine counters as observable instruments.
type OTelExporter struct {
	source       metricsSource
	registration metric.Registration
	observations []observation
}

func NewOTelExporter(meter metric.Meter, engine *adminAuth.Engine) (*OTelExporter, error) {
	return NewOTelExporterFromSource(meter, engine)
}

// NewOTelExporterFromSource creates one instrument per counter, one gauge per
// histogram bucket plus a count gauge, and a single callback that reads the
// source once per collection.
func NewOTelExporterFromSource(meter metric.Meter, source metricsSource) (*OTelExporter, error) {
	if meter == nil {
		return nil, ErrNilMeter
	}
	if source == nil {
		return nil, ErrNilSource
	}

	e := &OTelExporter{source: source}

	for _, def := range internaldefs.CounterDefs {
		id := def.ID
		if err := e.counter(meter, def.Name, def.Help, func(r reading) uint64 {
			return r.snapshot.Counters[id]
		}); err != nil {
			return nil, err
		}
	}

	for _, def := range internaldefs.HistogramDefs {
		id := def.ID
		for i, suffix := range internaldefs.HistogramBoundSuffix {
			bucket := i
			if err := e.gauge(meter, def.Name+"_bucket_le_"+suffix, "Cumulative histogram bucket count.", func(r reading) uint64 {
				return r.cumulative[id][bucket]
			}); err != nil {
				return nil, err
			}
		}
		if err := e.gauge(meter, def.Name+"_count", "Histogram total sample count.", func(r reading) uint64 {
			c := r.cumulative[id]
			return c[len(c)-1]
		}); err != nil {
			return nil, err
		}
	}

	if err := e.counter(meter, "adminauth_audit_dropped_total",
		"Audit events dropped because the dispatcher buffer was full.",
		func(r reading) uint64 { return r.dropped },
	); err != nil {
		return nil, err
	}

	instruments := make([]metric.Observable, len(e.observations))
	for i, o := range e.observations {
		instruments[i] = o.instrument
	}
	registration, err := meter.RegisterCallback(e.observe, instruments...)
	if err != nil {
		return nil, fmt.Errorf("register callback: %w", err)
	}
	e.registration = registration
	return e, nil
}

func (e *OTelExporter) counter(meter metric.Meter, name, help string, value func(reading) uint64) error {
	ins, err := meter.Int64ObservableCounter(name, metric.WithDescription(help))
	if err != nil {
		return fmt.Errorf("create observable counter %s: %w", name, err)
	}
	e.observations = append(e.observations, observation{instrument: ins, value: value})
	return nil
}

func (e *OTelExporter) gauge(meter metric.Meter, name, help string, value func(reading) uint64) error {
	ins, err := meter.Int64ObservableGauge(name, metric.WithDescription(help))
	if err != nil {
		return fmt.Errorf("create observable gauge %s: %w", name, err)
	}
	e.observations = append(e.observations, observation{instrument: ins, value: value})
	return nil
}

func (e *OTelExporter) observe(_ context.Context, observer metric.Observer) error {
	r := reading{
		snapshot:   e.source.MetricsSnapshot(),
		dropped:    e.source.AuditDropped(),
		cumulative: make(map[adminAuth.MetricID][8]uint64, len(internaldefs.HistogramDefs)),
	}
	for _, def := range internaldefs.HistogramDefs {
		r.cumulative[def.ID] = internaldefs.CumulativeBuckets(internaldefs.NormalizeBuckets(r.snapshot.Histograms[def.ID]))
	}
	for _, o := range e.observations {
		observer.ObserveInt64(o.instrument, int64(o.value(r)))
	}
	return nil
}

// Close unregisters the collection callback.
func (e *OTelExporter) Close() error {
	if e == nil || e.registration == nil {
		return nil
	}
	return e.registration.Unregister()
}
