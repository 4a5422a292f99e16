// Package analytics вычисляет сводную статистику по прогнозам спроса
// Включает разбиение по уровням запаса и рейтинг товаров по спросу
package analytics

import (
	"math"
	"sort"

	"forecast-gateway/internal/models"
)

const (
	// CriticalStockThreshold запас ниже этого значения считается критическим
	CriticalStockThreshold = 30
	// LowStockThreshold запас ниже этого значения (и не критический) считается низким
	LowStockThreshold = 50
	// TopDemandSize размер рейтинга по спросу
	TopDemandSize = 5
)

// Tier уровень запаса товара
type Tier string

const (
	TierCritical Tier = "critical"
	TierLow      Tier = "low"
	TierAdequate Tier = "adequate"
)

// Classify определяет уровень запаса: 30 уже low, 50 уже adequate
func Classify(stock float64) Tier {
	switch {
	case stock < CriticalStockThreshold:
		return TierCritical
	case stock < LowStockThreshold:
		return TierLow
	default:
		return TierAdequate
	}
}

// Summarize считает сводку по списку прогнозов. Входной срез не изменяется.
// Для пустого списка возвращается нулевая сводка.
func Summarize(records []models.PredictionRecord) models.AnalyticsSummary {
	summary := models.AnalyticsSummary{
		TotalProducts: len(records),
		TopDemand:     TopDemand(records, TopDemandSize),
	}

	var totalStock float64
	for _, r := range records {
		switch Classify(r.CurrentStock) {
		case TierCritical:
			summary.CriticalStock++
		case TierLow:
			summary.LowStock++
		default:
			summary.AdequateStock++
		}

		summary.TotalPredictedDemand += r.PredictedDemand
		summary.TotalSales += r.TotalSales
		totalStock += r.CurrentStock

		if r.RecommendedRestock > 0 {
			summary.NeedsRestock++
		}
	}

	summary.AvgPredictedDemand = average(summary.TotalPredictedDemand, len(records))
	summary.AvgStock = average(totalStock, len(records))

	return summary
}

// TopDemand возвращает до n товаров с наибольшим спросом.
// При равном спросе сохраняется исходный порядок.
func TopDemand(records []models.PredictionRecord, n int) []models.DemandItem {
	items := make([]models.DemandItem, len(records))
	for i, r := range records {
		items[i] = models.DemandItem{
			ProductID:       r.ProductID,
			PredictedDemand: r.PredictedDemand,
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PredictedDemand > items[j].PredictedDemand
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

// average округляет до ближайшего целого
func average(total float64, count int) float64 {
	if count == 0 {
		return 0
	}
	return math.Round(total / float64(count))
}
