package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus-коллекторов сервиса
type Metrics struct {
	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// База данных
	DBQueryDuration     *prometheus.HistogramVec
	DBQueryErrors       *prometheus.CounterVec
	DBOpenConnections   prometheus.Gauge
	DBInUseConnections  prometheus.Gauge
	DBIdleConnections   prometheus.Gauge
	DBWaitCount         prometheus.Gauge
	DBWaitDurationTotal prometheus.Gauge

	// Движок доступности
	SlotsGenerated      *prometheus.CounterVec
	EntitiesDropped     prometheus.Counter
	BuildingFanOutSize  prometheus.Histogram
	RateLimitedRequests prometheus.Counter
}

// New регистрирует метрики в глобальном реестре prometheus
func New(serviceName string) *Metrics {
	return NewWithRegistry(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegistry регистрирует метрики в переданном реестре
func NewWithRegistry(serviceName string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"service": serviceName}

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),

		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: constLabels,
		}, []string{"method", "route"}),

		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_query_errors_total",
			Help:        "Total number of failed database queries",
			ConstLabels: constLabels,
		}, []string{"operation"}),

		DBOpenConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}),
		DBInUseConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}),
		DBIdleConnections: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_idle_connections",
			Help:        "Number of idle connections",
			ConstLabels: constLabels,
		}),
		DBWaitCount: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}),
		DBWaitDurationTotal: factory.NewGauge(prometheus.GaugeOpts{
			Name:        "db_wait_duration_seconds",
			Help:        "Total time blocked waiting for a new connection",
			ConstLabels: constLabels,
		}),

		SlotsGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Name:        "freetime_slots_generated_total",
			Help:        "Number of classified time slots by overlap value",
			ConstLabels: constLabels,
		}, []string{"overlap"}),

		EntitiesDropped: factory.NewCounter(prometheus.CounterOpts{
			Name:        "freetime_malformed_entities_total",
			Help:        "Scheduled entities dropped because from_ >= to_",
			ConstLabels: constLabels,
		}),

		BuildingFanOutSize: factory.NewHistogram(prometheus.HistogramOpts{
			Name:        "freetime_building_resources",
			Help:        "Number of resources processed per building query",
			Buckets:     []float64{1, 2, 5, 10, 20, 50, 100},
			ConstLabels: constLabels,
		}),

		RateLimitedRequests: factory.NewCounter(prometheus.CounterOpts{
			Name:        "http_rate_limited_total",
			Help:        "Requests rejected by the rate limiter",
			ConstLabels: constLabels,
		}),
	}
}

// ObserveHTTP фиксирует завершённый HTTP запрос
func (m *Metrics) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveDBQuery фиксирует выполненный запрос к БД
func (m *Metrics) ObserveDBQuery(operation string, elapsed time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(operation).Inc()
	}
}

// ObserveSlot учитывает классифицированный слот
func (m *Metrics) ObserveSlot(overlap string) {
	m.SlotsGenerated.WithLabelValues(overlap).Inc()
}

// ObserveDroppedEntity учитывает отброшенную некорректную сущность расписания
func (m *Metrics) ObserveDroppedEntity() {
	m.EntitiesDropped.Inc()
}

// ObserveBuildingFanOut фиксирует число ресурсов, обработанных в запросе по зданию
func (m *Metrics) ObserveBuildingFanOut(resources int) {
	m.BuildingFanOutSize.Observe(float64(resources))
}

// ObserveRateLimited учитывает запрос, отклонённый лимитером
func (m *Metrics) ObserveRateLimited() {
	m.RateLimitedRequests.Inc()
}
