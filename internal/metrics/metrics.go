package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metrics for the ticketing service
var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route", "method"},
	)

	OrdersCreatedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ticketing_orders_created_total",
			Help: "Total number of pending orders created",
		},
	)

	OrderTransitionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_order_transitions_total",
			Help: "Order state transitions applied, by target state",
		},
		[]string{"status"},
	)

	WebhookEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_webhook_events_total",
			Help: "Razorpay webhook deliveries by event type and outcome",
		},
		[]string{"event", "outcome"},
	)

	EmailsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_emails_total",
			Help: "Notification emails attempted, by kind and result",
		},
		[]string{"kind", "result"},
	)

	DoorScansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ticketing_door_scans_total",
			Help: "Door validations and admissions by result",
		},
		[]string{"action", "result"},
	)
)

var registerOnce sync.Once

// Register registers all Prometheus metrics with the default registry
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(HTTPRequestsTotal)
		prometheus.MustRegister(HTTPRequestDuration)
		prometheus.MustRegister(OrdersCreatedTotal)
		prometheus.MustRegister(OrderTransitionsTotal)
		prometheus.MustRegister(WebhookEventsTotal)
		prometheus.MustRegister(EmailsTotal)
		prometheus.MustRegister(DoorScansTotal)
	})
}
