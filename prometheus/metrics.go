package prometheus

import (
	"time"

	"fleet-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP request metrics
	HttpRequestsTotal   prometheus.CounterVec
	HttpRequestDuration prometheus.HistogramVec

	// Database operation metrics
	DbOperationDuration prometheus.HistogramVec

	// Domain operation metrics
	VehicleOperationsCounter  prometheus.CounterVec
	LocationOperationsCounter prometheus.CounterVec
	TenantOperationsCounter   prometheus.CounterVec

	// Consistency engine metrics
	LocationValidationFailures prometheus.Counter
	AssociationSyncFailures    prometheus.Counter
	HeadquartersProvisioned    prometheus.Counter
)

// InitMetrics initializes Prometheus metrics with configuration
func InitMetrics(cfg *config.Config) {
	prefix := cfg.Metrics.Prefix

	HttpRequestsTotal = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	DbOperationDuration = *promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    prefix + "_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	VehicleOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_vehicle_operations_total",
			Help: "Total number of vehicle operations",
		},
		[]string{"operation"},
	)

	LocationOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_location_operations_total",
			Help: "Total number of location operations",
		},
		[]string{"operation"},
	)

	TenantOperationsCounter = *promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: prefix + "_tenant_operations_total",
			Help: "Total number of tenant operations",
		},
		[]string{"operation"},
	)

	LocationValidationFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_location_validation_failures_total",
			Help: "Total number of rejected location reference batches",
		},
	)

	AssociationSyncFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_association_sync_failures_total",
			Help: "Total number of post-write association verification mismatches",
		},
	)

	HeadquartersProvisioned = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: prefix + "_headquarters_provisioned_total",
			Help: "Total number of headquarters locations auto-created",
		},
	)
}

// RecordVehicleOperation increments the vehicle operation counter
func RecordVehicleOperation(operation string) {
	VehicleOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordLocationOperation increments the location operation counter
func RecordLocationOperation(operation string) {
	LocationOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordTenantOperation increments the tenant operation counter
func RecordTenantOperation(operation string) {
	TenantOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordValidationFailure increments the rejected-batch counter
func RecordValidationFailure() {
	if LocationValidationFailures != nil {
		LocationValidationFailures.Inc()
	}
}

// RecordSyncFailure increments the verification mismatch counter
func RecordSyncFailure() {
	if AssociationSyncFailures != nil {
		AssociationSyncFailures.Inc()
	}
}

// RecordHeadquartersProvisioned increments the auto-created HQ counter
func RecordHeadquartersProvisioned() {
	if HeadquartersProvisioned != nil {
		HeadquartersProvisioned.Inc()
	}
}

// TrackDBOperation returns a function that records the duration of a
// database operation when called, e.g.
// defer prometheus.TrackDBOperation("query")(time.Now())
func TrackDBOperation(operationType string) func(time.Time) {
	return func(start time.Time) {
		DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(start).Seconds())
	}
}
