// Package cache хранит последний успешный результат прогноза в памяти процесса
package cache

import (
	"sync"
	"time"

	"forecast-gateway/internal/models"
)

// Entry снимок содержимого кэша
type Entry struct {
	Bundle    *models.PredictionBundle
	UpdatedAt time.Time
}

// Age возраст записи относительно now
func (e Entry) Age(now time.Time) time.Duration {
	return now.Sub(e.UpdatedAt)
}

// PredictionCache единственный слот с последним результатом и счетчик запросов.
// Все операции выполняются под одной блокировкой. Конкурентные Store
// не упорядочиваются: побеждает последняя завершившаяся запись.
type PredictionCache struct {
	mu        sync.Mutex
	bundle    *models.PredictionBundle
	updatedAt time.Time
	requests  int64
}

// NewPredictionCache создает пустой кэш
func NewPredictionCache() *PredictionCache {
	return &PredictionCache{}
}

// RecordRequest увеличивает счетчик и возвращает номер запроса.
// Вызывается до обращения к upstream, поэтому неудачные запросы тоже учитываются.
func (c *PredictionCache) RecordRequest() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.requests++
	return c.requests
}

// Store перезаписывает результат и время обновления одновременно
func (c *PredictionCache) Store(bundle *models.PredictionBundle, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bundle = bundle
	c.updatedAt = at
}

// Read возвращает текущую запись или false, если кэш пуст
func (c *PredictionCache) Read() (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.bundle == nil {
		return Entry{}, false
	}
	return Entry{Bundle: c.bundle, UpdatedAt: c.updatedAt}, true
}

// Clear удаляет результат и время обновления, счетчик сохраняется
func (c *PredictionCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.bundle = nil
	c.updatedAt = time.Time{}
}

// Requests возвращает количество запросов /predict с момента старта
func (c *PredictionCache) Requests() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.requests
}

// Status краткое состояние для /health
func (c *PredictionCache) Status() models.CacheStatus {
	c.mu.Lock()
	defer c.mu.Unlock()

	status := models.CacheStatus{
		HasPredictions: c.bundle != nil,
		TotalRequests:  c.requests,
	}
	if c.bundle != nil {
		ts := c.updatedAt
		status.LastUpdate = &ts
	}
	return status
}
