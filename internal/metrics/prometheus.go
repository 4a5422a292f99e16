// Package metrics реализует экспорт метрик в Prometheus
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"forecast-gateway/internal/models"
)

// Prometheus метрики
var (
	// RequestsTotal общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_gateway_requests_total",
			Help: "Total number of requests processed",
		},
		[]string{"endpoint", "method", "status"},
	)

	// RequestDuration длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "forecast_gateway_request_duration_seconds",
			Help:    "Request duration in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 15, 30},
		},
		[]string{"endpoint", "method"},
	)

	// UpstreamRequests вызовы workflow по результату
	UpstreamRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_gateway_upstream_requests_total",
			Help: "Forecast workflow calls by outcome",
		},
		[]string{"outcome"},
	)

	// UpstreamLatency длительность вызова workflow
	UpstreamLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forecast_gateway_upstream_latency_seconds",
			Help:    "Forecast workflow call latency in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 20, 30},
		},
	)

	// PredictionsCached есть ли результат в кэше (0/1)
	PredictionsCached = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecast_gateway_predictions_cached",
			Help: "Whether a prediction bundle is cached",
		},
	)

	// ProductsTracked количество товаров в последнем результате
	ProductsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecast_gateway_products",
			Help: "Number of products in the latest prediction bundle",
		},
	)

	// StockTier товары по уровню запаса
	StockTier = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "forecast_gateway_stock_tier_products",
			Help: "Products per stock tier in the latest prediction bundle",
		},
		[]string{"tier"},
	)

	// RestockNeeded товары, которым рекомендовано пополнение
	RestockNeeded = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "forecast_gateway_restock_needed_products",
			Help: "Products with a positive recommended restock",
		},
	)

	// EventsPublished публикации событий в Redis
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forecast_gateway_events_published_total",
			Help: "Prediction update events published to Redis",
		},
		[]string{"status"},
	)
)

// UpdateAnalyticsMetrics обновляет метрики по новой сводке
func UpdateAnalyticsMetrics(s models.AnalyticsSummary) {
	PredictionsCached.Set(1)
	ProductsTracked.Set(float64(s.TotalProducts))
	StockTier.WithLabelValues("critical").Set(float64(s.CriticalStock))
	StockTier.WithLabelValues("low").Set(float64(s.LowStock))
	StockTier.WithLabelValues("adequate").Set(float64(s.AdequateStock))
	RestockNeeded.Set(float64(s.NeedsRestock))
}

// ResetAnalyticsMetrics сбрасывает метрики после очистки кэша
func ResetAnalyticsMetrics() {
	PredictionsCached.Set(0)
	ProductsTracked.Set(0)
	StockTier.Reset()
	RestockNeeded.Set(0)
}
