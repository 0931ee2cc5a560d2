package monitoring

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
)

var (
	APICallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hospital_api_calls_total",
			Help: "Calls made to the hospital API by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	LoginAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_login_attempts_total",
			Help: "Login attempts by outcome",
		},
		[]string{"outcome"},
	)

	BookingsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_bookings_total",
			Help: "Appointment bookings by outcome",
		},
		[]string{"outcome"},
	)

	AppointmentChanges = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portal_appointment_changes_total",
			Help: "Appointment edits and deletions by action and outcome",
		},
		[]string{"action", "outcome"},
	)

	LiveSockets = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "portal_websocket_connections",
			Help: "Open notification websocket connections",
		},
	)
)

func Init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(APICallsTotal)
	prometheus.MustRegister(LoginAttempts)
	prometheus.MustRegister(BookingsTotal)
	prometheus.MustRegister(AppointmentChanges)
	prometheus.MustRegister(LiveSockets)
}

func Handler() http.Handler {
	return promhttp.Handler()
}

// Outcome turns a success flag into a metric label.
func Outcome(ok bool) string {
	if ok {
		return "success"
	}
	return "failure"
}
