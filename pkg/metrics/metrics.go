package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all SLA engine metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Kafka metrics
	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec

	// MongoDB metrics
	MongoDBOperations        *prometheus.CounterVec
	MongoDBOperationDuration *prometheus.HistogramVec

	// Business metrics
	OrdersIngested      *prometheus.CounterVec
	NormalizationErrors prometheus.Counter
	DuplicateOrders     prometheus.Counter
	RecordsCleaned      prometheus.Counter
	OrdersConfirmed     prometheus.Counter
	RefreshTicks        prometheus.Counter
	SLABreaches         *prometheus.CounterVec
	OrdersBySLALevel    *prometheus.GaugeVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
	Subsystem   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "wms",
		Subsystem:   "sla",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	// Register standard Go metrics
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_in_flight",
			Help:      "Number of HTTP requests currently being served",
		},
	)

	m.KafkaEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "kafka_events_published_total",
			Help:      "Total number of events published to Kafka",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.KafkaPublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "topic"},
	)

	m.MongoDBOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operations_total",
			Help:      "Total number of MongoDB operations",
		},
		[]string{"service", "collection", "operation", "status"},
	)

	m.MongoDBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "mongodb_operation_duration_seconds",
			Help:      "MongoDB operation duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "collection", "operation"},
	)

	m.OrdersIngested = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "orders_ingested_total",
			Help:      "Total number of orders ingested through the pipeline",
		},
		[]string{"service", "platform"},
	)

	m.NormalizationErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "normalization_errors_total",
			Help:      "Total number of raw records that failed normalization",
		},
	)

	m.DuplicateOrders = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "duplicate_orders_total",
			Help:      "Total number of duplicate order ids rejected during ingestion",
		},
	)

	m.RecordsCleaned = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "records_cleaned_total",
			Help:      "Total number of records that needed field cleanup during normalization",
		},
	)

	m.OrdersConfirmed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "orders_confirmed_total",
			Help:      "Total number of orders confirmed via bulk action",
		},
	)

	m.RefreshTicks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "refresh_ticks_total",
			Help:      "Total number of refresher recomputation passes",
		},
	)

	m.SLABreaches = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "breaches_total",
			Help:      "Total number of orders that crossed their confirm deadline",
		},
		[]string{"service", "platform"},
	)

	m.OrdersBySLALevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: config.Namespace,
			Subsystem: config.Subsystem,
			Name:      "orders_by_level",
			Help:      "Current number of orders per SLA level",
		},
		[]string{"service", "level"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.MongoDBOperations,
		m.MongoDBOperationDuration,
		m.OrdersIngested,
		m.NormalizationErrors,
		m.DuplicateOrders,
		m.RecordsCleaned,
		m.OrdersConfirmed,
		m.RefreshTicks,
		m.SLABreaches,
		m.OrdersBySLALevel,
	)

	return m
}

// Handler returns an HTTP handler for the metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// IncrementHTTPRequestsInFlight increments the in-flight gauge
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements the in-flight gauge
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}

// RecordKafkaPublish records a Kafka publish attempt
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, status).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// RecordMongoOperation records a MongoDB operation
func (m *Metrics) RecordMongoOperation(collection, operation string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.MongoDBOperations.WithLabelValues(m.serviceName, collection, operation, status).Inc()
	m.MongoDBOperationDuration.WithLabelValues(m.serviceName, collection, operation).Observe(duration.Seconds())
}

// RecordOrderIngested records an order accepted by the pipeline
func (m *Metrics) RecordOrderIngested(platform string) {
	m.OrdersIngested.WithLabelValues(m.serviceName, platform).Inc()
}

// RecordNormalizationError records a record rejected during normalization
func (m *Metrics) RecordNormalizationError() {
	m.NormalizationErrors.Inc()
}

// RecordDuplicate records a duplicate order id rejected during ingestion
func (m *Metrics) RecordDuplicate() {
	m.DuplicateOrders.Inc()
}

// RecordCleaned records a record that needed field cleanup
func (m *Metrics) RecordCleaned() {
	m.RecordsCleaned.Inc()
}

// RecordOrdersConfirmed records confirmed orders
func (m *Metrics) RecordOrdersConfirmed(count int) {
	m.OrdersConfirmed.Add(float64(count))
}

// RecordRefreshTick records a refresher recomputation pass
func (m *Metrics) RecordRefreshTick() {
	m.RefreshTicks.Inc()
}

// RecordSLABreach records an order crossing its confirm deadline
func (m *Metrics) RecordSLABreach(platform string) {
	m.SLABreaches.WithLabelValues(m.serviceName, platform).Inc()
}

// SetOrdersByLevel updates the per-level order gauges
func (m *Metrics) SetOrdersByLevel(counts map[string]int) {
	for level, count := range counts {
		m.OrdersBySLALevel.WithLabelValues(m.serviceName, level).Set(float64(count))
	}
}
