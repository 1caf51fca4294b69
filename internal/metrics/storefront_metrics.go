package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// StorefrontMetrics содержит метрики витрины.
type StorefrontMetrics struct {
	// Счётчики заказов
	ordersPlaced prometheus.Counter
	ordersFailed prometheus.Counter

	// Гистограммы
	orderValue    prometheus.Histogram
	queryDuration *prometheus.HistogramVec

	// Outbox
	outboxPublished     prometheus.Counter
	outboxPublishFailed prometheus.Counter
	outboxPending       prometheus.Gauge
}

// NewStorefrontMetrics создаёт новый экземпляр метрик витрины.
func NewStorefrontMetrics() *StorefrontMetrics {
	return newStorefrontMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

func newStorefrontMetricsWithRegisterer(registerer prometheus.Registerer) *StorefrontMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}

	return &StorefrontMetrics{
		ordersPlaced: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Total number of orders placed successfully",
		}),
		ordersFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_orders_failed_total",
			Help: "Total number of order placements that failed",
		}),
		orderValue: registerHistogram(registerer, prometheus.HistogramOpts{
			Name:    "storefront_order_value",
			Help:    "Distribution of placed order totals",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		queryDuration: registerHistogramVec(registerer, prometheus.HistogramOpts{
			Name:    "storefront_query_duration_seconds",
			Help:    "Duration of repository operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0},
		}, []string{"operation"}),
		outboxPublished: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_published_total",
			Help: "Total number of outbox events published",
		}),
		outboxPublishFailed: registerCounter(registerer, prometheus.CounterOpts{
			Name: "storefront_outbox_publish_failed_total",
			Help: "Total number of outbox publish attempts that failed",
		}),
		outboxPending: registerGauge(registerer, prometheus.GaugeOpts{
			Name: "storefront_outbox_pending",
			Help: "Number of outbox events waiting to be published",
		}),
	}
}

func registerCounter(registerer prometheus.Registerer, opts prometheus.CounterOpts) prometheus.Counter {
	collector := prometheus.NewCounter(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Counter)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register counter %q: %v", opts.Name, err))
	}
	return collector
}

func registerGauge(registerer prometheus.Registerer, opts prometheus.GaugeOpts) prometheus.Gauge {
	collector := prometheus.NewGauge(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Gauge)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register gauge %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogram(registerer prometheus.Registerer, opts prometheus.HistogramOpts) prometheus.Histogram {
	collector := prometheus.NewHistogram(opts)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(prometheus.Histogram)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram %q: %v", opts.Name, err))
	}
	return collector
}

func registerHistogramVec(registerer prometheus.Registerer, opts prometheus.HistogramOpts, labels []string) *prometheus.HistogramVec {
	collector := prometheus.NewHistogramVec(opts, labels)
	if err := registerer.Register(collector); err != nil {
		if alreadyRegistered, ok := err.(prometheus.AlreadyRegisteredError); ok {
			existing, ok := alreadyRegistered.ExistingCollector.(*prometheus.HistogramVec)
			if !ok {
				panic(fmt.Sprintf("collector %q already registered with unexpected type", opts.Name))
			}
			return existing
		}
		panic(fmt.Sprintf("register histogram vec %q: %v", opts.Name, err))
	}
	return collector
}

// RecordOrderPlaced увеличивает счётчик оформленных заказов.
func (m *StorefrontMetrics) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

// RecordOrderFailed увеличивает счётчик неудачных оформлений.
func (m *StorefrontMetrics) RecordOrderFailed() {
	m.ordersFailed.Inc()
}

// RecordOrderValue записывает сумму оформленного заказа.
func (m *StorefrontMetrics) RecordOrderValue(total float64) {
	m.orderValue.Observe(total)
}

// RecordQueryDuration записывает время выполнения операции репозитория.
func (m *StorefrontMetrics) RecordQueryDuration(operation string, duration time.Duration) {
	m.queryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordOutboxPublished увеличивает счётчик опубликованных outbox-событий.
func (m *StorefrontMetrics) RecordOutboxPublished() {
	m.outboxPublished.Inc()
}

// RecordOutboxPublishFailed увеличивает счётчик неудачных публикаций.
func (m *StorefrontMetrics) RecordOutboxPublishFailed() {
	m.outboxPublishFailed.Inc()
}

// SetOutboxPending выставляет число ожидающих публикации событий.
func (m *StorefrontMetrics) SetOutboxPending(n int) {
	m.outboxPending.Set(float64(n))
}
