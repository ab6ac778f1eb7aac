package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsRegistry holds all Prometheus metrics for the ClubConnect backend.
type MetricsRegistry struct {
	// HTTP metrics
	HTTPRequestsTotal    prometheus.CounterVec
	HTTPRequestDuration  prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.GaugeVec

	// Store metrics
	StoreOpsTotal   prometheus.CounterVec
	StoreOpDuration prometheus.HistogramVec

	// Business metrics
	XPAwardsTotal          prometheus.CounterVec
	BadgeAwardsTotal       prometheus.CounterVec
	AttendanceMarkedTotal  prometheus.Counter
	MembershipOpsTotal     prometheus.CounterVec
	CounterUnderflowTotal  prometheus.CounterVec
	CounterReconciledTotal prometheus.CounterVec
	DailyLoginClaims       prometheus.CounterVec
}

var (
	registry *MetricsRegistry
	once     sync.Once
)

// NewMetricsRegistry initializes the registry once and returns the shared
// instance; promauto registration must not run twice.
func NewMetricsRegistry() *MetricsRegistry {
	once.Do(func() {
		registry = &MetricsRegistry{
			HTTPRequestsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_http_requests_total",
					Help: "Total HTTP requests processed by endpoint, method, and status code",
				},
				[]string{"endpoint", "method", "status_code"},
			),
			HTTPRequestDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "clubconnect_http_request_duration_seconds",
					Help:    "HTTP request latency distribution in seconds",
					Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
				},
				[]string{"endpoint", "method"},
			),
			HTTPRequestsInFlight: *promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "clubconnect_http_requests_in_flight",
					Help: "Number of HTTP requests currently being processed",
				},
				[]string{"endpoint"},
			),
			StoreOpsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_store_ops_total",
					Help: "Total directory store operations by type and outcome",
				},
				[]string{"op", "outcome"},
			),
			StoreOpDuration: *promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "clubconnect_store_op_duration_seconds",
					Help:    "Directory store operation time in seconds",
					Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
				},
				[]string{"op"},
			),
			XPAwardsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_xp_awards_total",
					Help: "Total XP awards written, by action",
				},
				[]string{"action"},
			),
			BadgeAwardsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_badge_awards_total",
					Help: "Badges awarded by tier",
				},
				[]string{"tier"},
			),
			AttendanceMarkedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "clubconnect_attendance_marked_total",
					Help: "Event attendance records created",
				},
			),
			MembershipOpsTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_membership_ops_total",
					Help: "Membership joins and leaves",
				},
				[]string{"op"},
			),
			CounterUnderflowTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_counter_underflow_total",
					Help: "Detected counter underflows by collection, repaired by reconciliation",
				},
				[]string{"collection"},
			),
			CounterReconciledTotal: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_counter_reconciled_total",
					Help: "Counters repaired by the reconciliation job, by collection",
				},
				[]string{"collection"},
			),
			DailyLoginClaims: *promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "clubconnect_daily_login_claims_total",
					Help: "Daily login bonus claims by outcome",
				},
				[]string{"outcome"},
			),
		}
	})
	return registry
}
