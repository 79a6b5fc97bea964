package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Order metrics
	OrdersPlaced    *prometheus.CounterVec
	OrdersRejected  *prometheus.CounterVec
	OrdersCancelled prometheus.Counter
	OrdersExpired   prometheus.Counter
	OrderDuration   *prometheus.HistogramVec

	// Fill metrics
	FillsApplied    prometheus.Counter
	FillsDuplicated prometheus.Counter
	FillNotional    prometheus.Histogram

	// Reservation metrics
	ReservationOps      *prometheus.CounterVec
	InvariantViolations *prometheus.CounterVec

	// API metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec
	HTTPInFlight prometheus.Gauge

	// Database metrics
	DBRetries *prometheus.CounterVec

	// Redis metrics
	RedisOperations *prometheus.CounterVec
	RedisErrors     *prometheus.CounterVec

	// Messaging metrics
	OutboxPublished prometheus.Counter
	OutboxFailures  prometheus.Counter
	KafkaConsumed   *prometheus.CounterVec

	// Authentication metrics
	AuthFailures *prometheus.CounterVec

	// Rate limiting metrics
	RateLimitHits *prometheus.CounterVec

	// Audit metrics
	AuditEntries *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer registers the metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		// Order metrics
		OrdersPlaced: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_orders_placed_total",
				Help: "Total number of orders accepted",
			},
			[]string{"side", "type"},
		),
		OrdersRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_orders_rejected_total",
				Help: "Orders refused at placement or rejected by the venue, by reason",
			},
			[]string{"reason"},
		),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderledger_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		OrdersExpired: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderledger_orders_expired_total",
			Help: "Total number of DAY orders expired",
		}),
		OrderDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orderledger_order_operation_duration_seconds",
				Help:    "Duration of order lifecycle operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		// Fill metrics
		FillsApplied: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderledger_fills_applied_total",
			Help: "Total number of executions applied",
		}),
		FillsDuplicated: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderledger_fills_duplicated_total",
			Help: "Execution reports ignored as redeliveries",
		}),
		FillNotional: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "orderledger_fill_notional",
			Help:    "Executed notional per fill",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),

		// Reservation metrics
		ReservationOps: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_reservation_operations_total",
				Help: "Wallet and holding reservation operations by kind",
			},
			[]string{"resource", "operation"},
		),
		InvariantViolations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_invariant_violations_total",
				Help: "Ledger invariant violations detected, by operation",
			},
			[]string{"operation"},
		),

		// API metrics
		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "orderledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "orderledger_http_requests_in_flight",
				Help: "HTTP requests currently being served",
			},
		),

		// Database metrics
		DBRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_db_retries_total",
				Help: "Transactions retried after a serialization failure or deadlock",
			},
			[]string{"reason"},
		),

		// Redis metrics
		RedisOperations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_redis_operations_total",
				Help: "Total Redis operations",
			},
			[]string{"operation"},
		),
		RedisErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_redis_errors_total",
				Help: "Total Redis errors",
			},
			[]string{"operation"},
		),

		// Messaging metrics
		OutboxPublished: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderledger_outbox_published_total",
			Help: "Outbox events delivered to the broker",
		}),
		OutboxFailures: factory.NewCounter(prometheus.CounterOpts{
			Name: "orderledger_outbox_failures_total",
			Help: "Outbox events that failed to publish",
		}),
		KafkaConsumed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_kafka_messages_consumed_total",
				Help: "Execution reports consumed, by outcome",
			},
			[]string{"kind", "result"},
		),

		// Authentication metrics
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_auth_failures_total",
				Help: "Total authentication failures",
			},
			[]string{"reason"},
		),

		// Rate limiting metrics
		RateLimitHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_rate_limit_hits_total",
				Help: "Total rate limit hits",
			},
			[]string{"scope"},
		),

		// Audit metrics
		AuditEntries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "orderledger_audit_entries_total",
				Help: "Audit entries appended, by event type",
			},
			[]string{"event_type"},
		),
	}
}
