// Package events публикует уведомления об обновлении прогнозов в Redis Pub/Sub.
// Сообщения не сохраняются: подписчики, которых нет в момент публикации, их не получат.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"forecast-gateway/internal/models"
)

const (
	// DefaultChannel канал для уведомлений по умолчанию
	DefaultChannel = "predictions:updated"
	// PublishTimeout ограничение на одну публикацию
	PublishTimeout = 2 * time.Second
)

// PredictionsUpdated событие о новом результате в кэше
type PredictionsUpdated struct {
	RequestNumber int64     `json:"requestNumber"`
	RequestID     string    `json:"requestId"`
	Timestamp     time.Time `json:"timestamp"`
	Count         int       `json:"count"`
	CriticalStock int       `json:"criticalStock"`
	NeedsRestock  int       `json:"needsRestock"`
}

// NewPredictionsUpdated собирает событие из результата прогноза
func NewPredictionsUpdated(bundle *models.PredictionBundle) PredictionsUpdated {
	return PredictionsUpdated{
		RequestNumber: bundle.Metadata.RequestNumber,
		RequestID:     bundle.Metadata.RequestID,
		Timestamp:     bundle.Metadata.Timestamp,
		Count:         len(bundle.Predictions),
		CriticalStock: bundle.Analytics.CriticalStock,
		NeedsRestock:  bundle.Analytics.NeedsRestock,
	}
}

// RedisPublisher публикует события в Redis
type RedisPublisher struct {
	client  *redis.Client
	channel string
}

// NewRedisPublisher создает подключение к Redis и проверяет его
func NewRedisPublisher(ctx context.Context, addr, password string, db int, channel string) (*RedisPublisher, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		PoolSize:     10,
		MinIdleConns: 1,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if channel == "" {
		channel = DefaultChannel
	}

	return &RedisPublisher{
		client:  client,
		channel: channel,
	}, nil
}

// Channel возвращает имя канала
func (p *RedisPublisher) Channel() string {
	return p.channel
}

// PublishPredictionsUpdated отправляет событие и возвращает число получателей
func (p *RedisPublisher) PublishPredictionsUpdated(ctx context.Context, bundle *models.PredictionBundle) (int64, error) {
	data, err := json.Marshal(NewPredictionsUpdated(bundle))
	if err != nil {
		return 0, fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, PublishTimeout)
	defer cancel()

	receivers, err := p.client.Publish(ctx, p.channel, data).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to publish event: %w", err)
	}
	return receivers, nil
}

// Ping проверяет соединение с Redis
func (p *RedisPublisher) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}

// Close закрывает соединение
func (p *RedisPublisher) Close() error {
	return p.client.Close()
}
