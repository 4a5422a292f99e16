// Package models содержит структуры данных для прогнозов, аналитики и ответов API
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// PredictionRecord представляет прогноз по одному товару от внешнего workflow.
// При сериализации возвращается исходный JSON-объект без изменений.
type PredictionRecord struct {
	ProductID          string  `json:"product_id"`
	CurrentStock       float64 `json:"current_stock"`
	PredictedDemand    float64 `json:"predicted_demand"`
	TotalSales         float64 `json:"total_sales"`
	RecommendedRestock float64 `json:"recommended_restock"`

	raw json.RawMessage
}

type rawPredictionRecord struct {
	ProductID          json.RawMessage `json:"product_id"`
	CurrentStock       json.RawMessage `json:"current_stock"`
	PredictedDemand    json.RawMessage `json:"predicted_demand"`
	TotalSales         json.RawMessage `json:"total_sales"`
	RecommendedRestock json.RawMessage `json:"recommended_restock"`
}

// UnmarshalJSON разбирает запись, допуская числа в виде строк и числовой product_id
func (p *PredictionRecord) UnmarshalJSON(data []byte) error {
	var aux rawPredictionRecord
	if err := json.Unmarshal(data, &aux); err != nil {
		return fmt.Errorf("invalid prediction record: %w", err)
	}

	id, err := flexString(aux.ProductID)
	if err != nil {
		return fmt.Errorf("product_id: %w", err)
	}

	fields := []struct {
		name string
		src  json.RawMessage
		dst  *float64
	}{
		{"current_stock", aux.CurrentStock, &p.CurrentStock},
		{"predicted_demand", aux.PredictedDemand, &p.PredictedDemand},
		{"total_sales", aux.TotalSales, &p.TotalSales},
		{"recommended_restock", aux.RecommendedRestock, &p.RecommendedRestock},
	}
	for _, f := range fields {
		v, err := flexFloat(f.src)
		if err != nil {
			return fmt.Errorf("%s: %w", f.name, err)
		}
		*f.dst = v
	}

	p.ProductID = id
	p.raw = append(json.RawMessage(nil), data...)
	return nil
}

// MarshalJSON возвращает исходный объект, если запись пришла от upstream
func (p PredictionRecord) MarshalJSON() ([]byte, error) {
	if len(p.raw) > 0 {
		return p.raw, nil
	}
	type plain PredictionRecord
	return json.Marshal(plain(p))
}

func isNull(b json.RawMessage) bool {
	t := bytes.TrimSpace(b)
	return len(t) == 0 || bytes.Equal(t, []byte("null"))
}

func flexString(b json.RawMessage) (string, error) {
	if isNull(b) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return "", fmt.Errorf("expected string or number, got %s", string(b))
	}
	return n.String(), nil
}

func flexFloat(b json.RawMessage) (float64, error) {
	if isNull(b) {
		return 0, nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err == nil {
		return f, nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return 0, fmt.Errorf("expected number, got %s", string(b))
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("expected numeric string, got %q", s)
	}
	return f, nil
}

// DemandItem элемент рейтинга товаров по прогнозируемому спросу
type DemandItem struct {
	ProductID       string  `json:"product_id"`
	PredictedDemand float64 `json:"predicted_demand"`
}

// AnalyticsSummary содержит сводную статистику по списку прогнозов
type AnalyticsSummary struct {
	TotalProducts        int          `json:"totalProducts"`
	CriticalStock        int          `json:"criticalStock"`
	LowStock             int          `json:"lowStock"`
	AdequateStock        int          `json:"adequateStock"`
	TotalPredictedDemand float64      `json:"totalPredictedDemand"`
	AvgPredictedDemand   float64      `json:"avgPredictedDemand"`
	TotalSales           float64      `json:"totalSales"`
	NeedsRestock         int          `json:"needsRestock"`
	AvgStock             float64      `json:"avgStock"`
	TopDemand            []DemandItem `json:"topDemand"`
}

// PredictionMetadata метаданные успешного вызова /predict
type PredictionMetadata struct {
	Timestamp      time.Time `json:"timestamp"`
	ProcessingTime int64     `json:"processingTime"`
	RequestNumber  int64     `json:"requestNumber"`
	RequestID      string    `json:"requestId"`
	Strategy       string    `json:"source"`
}

// PredictionBundle результат успешного прогноза, который попадает в кэш
type PredictionBundle struct {
	Predictions []PredictionRecord `json:"predictions"`
	Analytics   AnalyticsSummary   `json:"analytics"`
	Metadata    PredictionMetadata `json:"metadata"`
}

// PredictionResponse ответ POST /predict и GET /predictions/cache
type PredictionResponse struct {
	Success     bool                `json:"success"`
	Count       int                 `json:"count"`
	Predictions []PredictionRecord  `json:"predictions"`
	Analytics   *AnalyticsSummary   `json:"analytics,omitempty"`
	Metadata    *PredictionMetadata `json:"metadata,omitempty"`
	CacheAge    *int64              `json:"cacheAge,omitempty"`
}

// AnalyticsResponse ответ GET /analytics
type AnalyticsResponse struct {
	Success   bool             `json:"success"`
	Analytics AnalyticsSummary `json:"analytics"`
	Timestamp time.Time        `json:"timestamp"`
}

// ErrorDetails дополнительные сведения об ошибке upstream
type ErrorDetails struct {
	Timeout bool   `json:"timeout"`
	Kind    string `json:"kind,omitempty"`
}

// ErrorResponse единый формат ошибки API
type ErrorResponse struct {
	Success            bool          `json:"success"`
	Error              string        `json:"error"`
	Message            string        `json:"message,omitempty"`
	Details            *ErrorDetails `json:"details,omitempty"`
	RawResponse        interface{}   `json:"rawResponse,omitempty"`
	HTTPStatus         int           `json:"httpStatus,omitempty"`
	HTTPData           interface{}   `json:"httpData,omitempty"`
	Path               string        `json:"path,omitempty"`
	AvailableEndpoints []string      `json:"availableEndpoints,omitempty"`
}

// MessageResponse простой ответ с подтверждением
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// MemoryUsage потребление памяти процессом (байты)
type MemoryUsage struct {
	RSS        uint64 `json:"rss"`
	VMS        uint64 `json:"vms"`
	HeapAlloc  uint64 `json:"heapAlloc"`
	HeapSys    uint64 `json:"heapSys"`
	Goroutines int    `json:"goroutines"`
}

// CacheStatus краткое состояние кэша прогнозов
type CacheStatus struct {
	HasPredictions bool       `json:"hasPredictions"`
	LastUpdate     *time.Time `json:"lastUpdate"`
	TotalRequests  int64      `json:"totalRequests"`
}

// HealthStatus представляет статус здоровья сервиса
type HealthStatus struct {
	Status    string      `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
	Uptime    float64     `json:"uptime"`
	Memory    MemoryUsage `json:"memory"`
	Cache     CacheStatus `json:"cache"`
	Redis     string      `json:"redis"`
}
