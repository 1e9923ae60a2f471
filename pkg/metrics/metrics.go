// Package metrics exports settings activity as Prometheus counters. A Metrics
// value is a store notifier, a section notifier and a settings.Logger at once,
// so one instance can observe commits, loads, resets and collection events.
package metrics

import (
	"context"
	"errors"
	"fmt"

	settings "github.com/goliatone/go-settings"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultNamespace = "settings"

// Config selects the metric names.
type Config struct {
	Namespace string
	Subsystem string
}

// Metrics holds the registered collectors.
type Metrics struct {
	applied  *prometheus.CounterVec
	sections *prometheus.CounterVec
	events   *prometheus.CounterVec
}

// New builds and registers the counters with reg. A nil reg uses
// prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer, cfg Config) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	if cfg.Namespace == "" {
		cfg.Namespace = DefaultNamespace
	}

	m := &Metrics{
		applied: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "changes_applied_total",
			Help:      "Settings committed through a store, by section and kind.",
		}, []string{"section", "kind"}),
		sections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "section_events_total",
			Help:      "Section loads and resets.",
		}, []string{"section", "op"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "collection_events_total",
			Help:      "Collection and store log events, by op and result.",
		}, []string{"collection", "op", "result"}),
	}

	var errs []error
	for _, c := range []prometheus.Collector{m.applied, m.sections, m.events} {
		if err := reg.Register(c); err != nil {
			errs = append(errs, err)
		}
	}
	if err := errors.Join(errs...); err != nil {
		return nil, fmt.Errorf("metrics: register: %w", err)
	}
	return m, nil
}

// Notify counts one committed setting.
func (m *Metrics) Notify(_ context.Context, section, _ string, item *settings.Item) error {
	m.count(section, item)
	return nil
}

// NotifySection counts one section-wide event.
func (m *Metrics) NotifySection(_ context.Context, section string, op settings.Op, _ string) error {
	m.sections.WithLabelValues(section, string(op)).Inc()
	return nil
}

// Sink counts items committed directly through Collection.ApplyChanges.
func (m *Metrics) Sink(section string) settings.Sink {
	return settings.SinkFunc(func(_ string, item *settings.Item) {
		m.count(section, item)
	})
}

func (m *Metrics) count(section string, item *settings.Item) {
	m.applied.WithLabelValues(section, item.Kind().String()).Inc()
}

// LogChange implements settings.Logger.
func (m *Metrics) LogChange(event settings.LogEvent) {
	result := "ok"
	if event.Err != nil {
		result = "error"
	}
	m.events.WithLabelValues(event.Collection, string(event.Op), result).Inc()
}
