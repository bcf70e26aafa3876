package observability

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the CRM.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	httpDuration     *prometheus.HistogramVec
	requestDuration  *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	authEvents       *prometheus.CounterVec
	leadsCreated     prometheus.Counter
	stageTransitions *prometheus.CounterVec
	activitiesLogged *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_http_request_duration_seconds",
				Help:    "Duration of HTTP requests by route.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crm_operation_duration_seconds",
				Help:    "Duration of service operations.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_store_errors_total",
				Help: "Total errors returned by the document store.",
			},
			[]string{"collection"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		authEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_auth_events_total",
				Help: "Registrations and logins by outcome.",
			},
			[]string{"event", "result"},
		),
		leadsCreated: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "crm_leads_created_total",
				Help: "Total leads created.",
			},
		),
		stageTransitions: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_lead_stage_transitions_total",
				Help: "Stage changes by target stage.",
			},
			[]string{"stage"},
		),
		activitiesLogged: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crm_activities_logged_total",
				Help: "Activities logged by type.",
			},
			[]string{"type"},
		),
	}
}

// RecordHTTPRequest records one served HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route string, status int, d time.Duration) {
	m.httpDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the store error counter.
func (m *Metrics) IncrStoreError(collection string) {
	m.storeErrors.WithLabelValues(collection).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// IncrAuthEvent counts a register or login attempt.
func (m *Metrics) IncrAuthEvent(event string, ok bool) {
	result := "failure"
	if ok {
		result = "success"
	}
	m.authEvents.WithLabelValues(event, result).Inc()
}

// IncrLeadCreated counts a new lead.
func (m *Metrics) IncrLeadCreated() {
	m.leadsCreated.Inc()
}

// IncrStageTransition counts a stage change.
func (m *Metrics) IncrStageTransition(stage string) {
	m.stageTransitions.WithLabelValues(stage).Inc()
}

// IncrActivityLogged counts a logged activity.
func (m *Metrics) IncrActivityLogged(activityType string) {
	m.activitiesLogged.WithLabelValues(activityType).Inc()
}
