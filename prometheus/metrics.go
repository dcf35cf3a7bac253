package prometheus

import (
	"strings"
	"sync"
	"time"

	"school-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTP request metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// Authentication metrics
	AuthSuccessCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_success_total",
			Help: "Total number of successful authentications",
		},
	)

	AuthErrorsCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "auth_errors_total",
			Help: "Total number of authentication errors",
		},
	)

	// Database operation metrics
	DbOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation_type"},
	)

	// School metrics
	SchoolOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "school_operations_total",
			Help: "Total number of school operations",
		},
		[]string{"operation"},
	)

	// Student metrics
	StudentOperationsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "student_operations_total",
			Help: "Total number of student operations",
		},
		[]string{"operation"},
	)

	// Registration rule rejections, labelled by rule (age, capacity)
	RuleRejectionsCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rule_rejections_total",
			Help: "Total number of student mutations rejected by a registration rule",
		},
		[]string{"rule"},
	)

	// Students unlinked when their school was deactivated
	CascadeClearedCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "cascade_cleared_students_total",
			Help: "Total number of students whose school was cleared by a school deactivation",
		},
	)
)

var registerOnce sync.Once

// Collectors lists every metric exported by the service
func Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		HttpRequestsTotal,
		HttpRequestDuration,
		AuthSuccessCounter,
		AuthErrorsCounter,
		DbOperationDuration,
		SchoolOperationsCounter,
		StudentOperationsCounter,
		RuleRejectionsCounter,
		CascadeClearedCounter,
	}
}

// Register registers all collectors on reg, prefixing their names with prefix
func Register(reg prometheus.Registerer, prefix string) error {
	if prefix != "" {
		reg = prometheus.WrapRegistererWithPrefix(strings.TrimSuffix(prefix, "_")+"_", reg)
	}
	for _, c := range Collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// InitMetrics registers the service metrics on the default registry using the
// configured prefix. Calling it more than once is a no-op.
func InitMetrics(cfg *config.Config) error {
	var err error
	registerOnce.Do(func() {
		err = Register(prometheus.DefaultRegisterer, cfg.Metrics.Prefix)
	})
	return err
}

// TrackDBOperation returns a function that records the duration of a database operation
func TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DbOperationDuration.WithLabelValues(operationType).Observe(duration)
	}
}

// RecordSchoolOperation increments the counter for school operations
func RecordSchoolOperation(operation string) {
	SchoolOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordStudentOperation increments the counter for student operations
func RecordStudentOperation(operation string) {
	StudentOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordRuleRejection increments the rejection counter for rule
func RecordRuleRejection(rule string) {
	RuleRejectionsCounter.WithLabelValues(rule).Inc()
}

// RecordCascade adds the number of students unlinked by a school deactivation
func RecordCascade(cleared int64) {
	if cleared > 0 {
		CascadeClearedCounter.Add(float64(cleared))
	}
}
