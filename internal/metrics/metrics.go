// Package metrics exposes Prometheus counters for the AJAX surface.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "alnp"

// Outcome labels for AjaxRequests.
const (
	OutcomeOK       = "ok"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
	OutcomeUnknown  = "unknown_action"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	AjaxRequests    *prometheus.CounterVec
	SettingsWritten prometheus.Counter
	TemplateScans   *prometheus.CounterVec
	NoticesRendered prometheus.Counter
}

// New registers the collectors on a private registry, together with the Go
// and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		AjaxRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ajax_requests_total",
			Help:      "AJAX requests by action, caller context and outcome",
		}, []string{"action", "context", "outcome"}),
		SettingsWritten: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "settings_written_total",
			Help:      "Options written through set_setting",
		}),
		TemplateScans: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "template_scans_total",
			Help:      "Theme scans by whether a template was found",
		}, []string{"found"}),
		NoticesRendered: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notices_rendered_total",
			Help:      "Requirement notices rendered",
		}),
	}
}

// Handler serves the private registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordAjax(action, callerContext, outcome string) {
	if m == nil {
		return
	}
	m.AjaxRequests.WithLabelValues(action, callerContext, outcome).Inc()
}

func (m *Metrics) RecordSettingWritten() {
	if m == nil {
		return
	}
	m.SettingsWritten.Inc()
}

func (m *Metrics) RecordTemplateScan(found bool) {
	if m == nil {
		return
	}
	label := "false"
	if found {
		label = "true"
	}
	m.TemplateScans.WithLabelValues(label).Inc()
}

func (m *Metrics) RecordNotice() {
	if m == nil {
		return
	}
	m.NoticesRendered.Inc()
}
