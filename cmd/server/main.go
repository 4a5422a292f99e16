// Package main запускает шлюз прогнозирования спроса
// Сервис реализует:
// - HTTP API для запуска внешнего workflow прогнозирования
// - Нормализацию ответа и сводную аналитику по запасам
// - Кэширование последнего результата в памяти
// - Уведомления об обновлении через Redis Pub/Sub (опционально)
// - Экспорт метрик в Prometheus
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"forecast-gateway/internal/cache"
	"forecast-gateway/internal/config"
	"forecast-gateway/internal/events"
	"forecast-gateway/internal/handlers"
	"forecast-gateway/internal/logging"
	"forecast-gateway/internal/upstream"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	logger.WithFields(logrus.Fields{
		"go_version": runtime.Version(),
		"num_cpu":    runtime.NumCPU(),
	}).Info("Starting forecast gateway...")

	predictions := cache.NewPredictionCache()
	client := upstream.NewClient(cfg.UpstreamURL, cfg.UpstreamTimeout)

	publisher := connectPublisher(cfg, logger)

	// nil *RedisPublisher нельзя передавать как интерфейс
	var eventPublisher handlers.EventPublisher
	if publisher != nil {
		eventPublisher = publisher
	}

	handler := handlers.NewHandler(predictions, client, eventPublisher, logger)

	server := &http.Server{
		Addr:         cfg.ServerAddr,
		Handler:      handlers.NewRouter(handler, logger),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.WithFields(logrus.Fields{
			"addr":      cfg.ServerAddr,
			"upstream":  client.URL(),
			"timeout":   cfg.UpstreamTimeout.String(),
			"endpoints": handlers.Endpoints,
		}).Info("Server listening")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server error")
		}
	}()

	sig := <-stop
	logger.WithField("signal", sig.String()).Info("Shutting down server...")

	// Запросы в обработке не дожидаемся
	if err := server.Close(); err != nil {
		logger.WithError(err).Warn("Server close error")
	}

	handler.Wait()
	if publisher != nil {
		publisher.Close()
	}

	logger.Info("Server stopped")
}

// connectPublisher подключается к Redis с повторами; без Redis сервис работает дальше
func connectPublisher(cfg config.Config, logger logrus.FieldLogger) *events.RedisPublisher {
	if !cfg.RedisEnabled() {
		logger.Info("REDIS_ADDR not set, update events disabled")
		return nil
	}

	var lastErr error
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		publisher, err := events.NewRedisPublisher(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.RedisChannel)
		cancel()
		if err == nil {
			logger.WithFields(logrus.Fields{
				"addr":    cfg.RedisAddr,
				"channel": publisher.Channel(),
			}).Info("Connected to Redis")
			return publisher
		}

		lastErr = err
		logger.WithError(err).WithField("attempt", i+1).Warn("Redis connection attempt failed")
		if i < 4 {
			time.Sleep(time.Duration(i+1) * time.Second)
		}
	}

	logger.WithError(lastErr).Warn("Failed to connect to Redis, running without update events")
	return nil
}
