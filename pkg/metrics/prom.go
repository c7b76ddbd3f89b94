package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"status-page/pkg/types"
)

var (
	pageRenders = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_page_renders_total",
			Help: "Number of status page renders",
		},
		[]string{"outcome"},
	)

	renderDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "status_page_render_duration_seconds",
			Help:    "Time taken to build and render the status page",
			Buckets: prometheus.DefBuckets,
		},
	)

	issueSourceFetches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "status_page_issue_source_fetches_total",
			Help: "Requests made to the issue source API",
		},
		[]string{"table", "outcome"},
	)

	overallStatus = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "status_page_overall_status",
			Help: "Severity of the last rendered page status (0 noissue, 1 incident, 2 outage)",
		},
	)

	environmentStatus = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "status_page_environment_status",
			Help: "Severity of each environment on the last rendered page (0 noissue, 1 incident, 2 outage)",
		},
		[]string{"environment"},
	)

	// environmentsMu guards environments, the label values currently exported by environmentStatus.
	environmentsMu sync.Mutex
	environments   = map[string]struct{}{}
)

// Register registers all metrics with the provided registerer.
func Register(r prometheus.Registerer) {
	r.MustRegister(pageRenders, renderDuration, issueSourceFetches, overallStatus, environmentStatus)
}

func outcome(success bool) string {
	if success {
		return "success"
	}
	return "error"
}

// RecordRender counts a page render and observes how long it took.
func RecordRender(success bool, d time.Duration) {
	pageRenders.WithLabelValues(outcome(success)).Inc()
	renderDuration.Observe(d.Seconds())
}

// RecordIssueSourceFetch counts a request against an issue source table.
func RecordIssueSourceFetch(table string, success bool) {
	issueSourceFetches.WithLabelValues(table, outcome(success)).Inc()
}

// SetCurrentStatus records the severity of the page and of every environment.
// Environments missing from config are removed from the exported series.
func SetCurrentStatus(config types.PageConfig) {
	environmentsMu.Lock()
	defer environmentsMu.Unlock()

	overallStatus.Set(float64(config.CurrentStatus.Severity()))

	current := make(map[string]struct{}, len(config.Environments))
	for _, env := range config.Environments {
		environmentStatus.WithLabelValues(env.Name).Set(float64(env.Status.Severity()))
		current[env.Name] = struct{}{}
	}
	for name := range environments {
		if _, ok := current[name]; !ok {
			environmentStatus.DeleteLabelValues(name)
		}
	}
	environments = current
}
