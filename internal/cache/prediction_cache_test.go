package cache

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forecast-gateway/internal/models"
)

func testBundle(n int64) *models.PredictionBundle {
	return &models.PredictionBundle{
		Predictions: []models.PredictionRecord{{ProductID: "A", CurrentStock: 10}},
		Analytics:   models.AnalyticsSummary{TotalProducts: 1, CriticalStock: 1},
		Metadata:    models.PredictionMetadata{RequestNumber: n},
	}
}

func TestPredictionCache_EmptyOnStart(t *testing.T) {
	c := NewPredictionCache()

	_, ok := c.Read()
	assert.False(t, ok)

	status := c.Status()
	assert.False(t, status.HasPredictions)
	assert.Nil(t, status.LastUpdate)
	assert.Zero(t, status.TotalRequests)
}

func TestPredictionCache_StoreAndRead(t *testing.T) {
	c := NewPredictionCache()
	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	c.Store(testBundle(1), at)

	entry, ok := c.Read()
	require.True(t, ok)
	assert.Equal(t, int64(1), entry.Bundle.Metadata.RequestNumber)
	assert.Equal(t, at, entry.UpdatedAt)
	assert.Equal(t, 1500*time.Millisecond, entry.Age(at.Add(1500*time.Millisecond)))

	status := c.Status()
	assert.True(t, status.HasPredictions)
	require.NotNil(t, status.LastUpdate)
	assert.Equal(t, at, *status.LastUpdate)
}

func TestPredictionCache_StoreOverwrites(t *testing.T) {
	c := NewPredictionCache()
	first := time.Now()

	c.Store(testBundle(1), first)
	c.Store(testBundle(2), first.Add(time.Second))

	entry, ok := c.Read()
	require.True(t, ok)
	assert.Equal(t, int64(2), entry.Bundle.Metadata.RequestNumber)
	assert.Equal(t, first.Add(time.Second), entry.UpdatedAt)
}

func TestPredictionCache_ClearKeepsCounter(t *testing.T) {
	c := NewPredictionCache()

	assert.Equal(t, int64(1), c.RecordRequest())
	assert.Equal(t, int64(2), c.RecordRequest())
	c.Store(testBundle(2), time.Now())

	c.Clear()

	_, ok := c.Read()
	assert.False(t, ok)
	assert.Equal(t, int64(2), c.Requests())

	status := c.Status()
	assert.False(t, status.HasPredictions)
	assert.Nil(t, status.LastUpdate)
	assert.Equal(t, int64(2), status.TotalRequests)

	assert.Equal(t, int64(3), c.RecordRequest())
}

func TestPredictionCache_Concurrency(t *testing.T) {
	c := NewPredictionCache()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				n := c.RecordRequest()
				c.Store(testBundle(n), time.Now())
				if entry, ok := c.Read(); ok {
					// bundle and timestamp always travel together
					assert.False(t, entry.UpdatedAt.IsZero())
				}
				if j%25 == 0 {
					c.Clear()
				}
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(800), c.Requests())
}
