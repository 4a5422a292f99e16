// Package handlers содержит HTTP обработчики для API
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/sirupsen/logrus"

	"forecast-gateway/internal/analytics"
	"forecast-gateway/internal/cache"
	"forecast-gateway/internal/metrics"
	"forecast-gateway/internal/models"
	"forecast-gateway/internal/normalizer"
	"forecast-gateway/internal/upstream"
)

// Predictor запускает внешний workflow и возвращает тело ответа
type Predictor interface {
	Trigger(ctx context.Context) ([]byte, error)
}

// EventPublisher рассылает уведомления об обновлении кэша
type EventPublisher interface {
	PublishPredictionsUpdated(ctx context.Context, bundle *models.PredictionBundle) (int64, error)
	Ping(ctx context.Context) error
}

// Handler содержит зависимости для HTTP обработчиков
type Handler struct {
	cache     *cache.PredictionCache
	predictor Predictor
	publisher EventPublisher
	logger    logrus.FieldLogger
	proc      *process.Process
	startTime time.Time
	now       func() time.Time
	pending   sync.WaitGroup
}

// NewHandler создает новый обработчик. publisher может быть nil.
func NewHandler(c *cache.PredictionCache, predictor Predictor, publisher EventPublisher, logger logrus.FieldLogger) *Handler {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.WithError(err).Warn("process stats unavailable")
		proc = nil
	}

	return &Handler{
		cache:     c,
		predictor: predictor,
		publisher: publisher,
		logger:    logger,
		proc:      proc,
		startTime: time.Now(),
		now:       time.Now,
	}
}

// Wait ждет завершения фоновых публикаций
func (h *Handler) Wait() {
	h.pending.Wait()
}

// PredictHandler обрабатывает POST /predict - запуск прогноза
func (h *Handler) PredictHandler(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	requestNumber := h.cache.RecordRequest()
	requestID := RequestID(r.Context())

	log := h.logger.WithFields(logrus.Fields{
		"request_id":     requestID,
		"request_number": requestNumber,
	})

	timer := prometheus.NewTimer(metrics.UpstreamLatency)
	body, err := h.predictor.Trigger(r.Context())
	timer.ObserveDuration()
	if err != nil {
		h.respondUpstreamError(w, log, err)
		return
	}

	result, err := normalizer.Extract(body)
	if err != nil {
		h.respondUpstreamError(w, log, upstream.NewShapeError("workflow returned malformed predictions", body, err))
		return
	}
	if len(result.Records) == 0 {
		h.respondUpstreamError(w, log, upstream.NewShapeError(
			"no predictions found in workflow response (checked "+normalizer.Describe()+")", body, nil))
		return
	}

	summary := analytics.Summarize(result.Records)
	finished := h.now()

	bundle := &models.PredictionBundle{
		Predictions: result.Records,
		Analytics:   summary,
		Metadata: models.PredictionMetadata{
			Timestamp:      finished,
			ProcessingTime: finished.Sub(start).Milliseconds(),
			RequestNumber:  requestNumber,
			RequestID:      requestID,
			Strategy:       result.Strategy,
		},
	}
	h.cache.Store(bundle, finished)

	metrics.UpstreamRequests.WithLabelValues("success").Inc()
	metrics.UpdateAnalyticsMetrics(summary)

	log.WithFields(logrus.Fields{
		"products": summary.TotalProducts,
		"critical": summary.CriticalStock,
		"source":   result.Strategy,
	}).Info("predictions updated")

	h.publish(bundle, log)

	respondJSON(w, models.PredictionResponse{
		Success:     true,
		Count:       len(bundle.Predictions),
		Predictions: bundle.Predictions,
		Analytics:   &bundle.Analytics,
		Metadata:    &bundle.Metadata,
	}, http.StatusOK)
}

// publish отправляет событие в фоне, ошибки только логируются
func (h *Handler) publish(bundle *models.PredictionBundle, log logrus.FieldLogger) {
	if h.publisher == nil {
		return
	}

	h.pending.Add(1)
	go func() {
		defer h.pending.Done()

		receivers, err := h.publisher.PublishPredictionsUpdated(context.Background(), bundle)
		if err != nil {
			metrics.EventsPublished.WithLabelValues("error").Inc()
			log.WithError(err).Warn("failed to publish predictions update")
			return
		}
		metrics.EventsPublished.WithLabelValues("ok").Inc()
		log.WithField("receivers", receivers).Debug("predictions update published")
	}()
}

// respondUpstreamError переводит ошибку workflow в ответ 500
func (h *Handler) respondUpstreamError(w http.ResponseWriter, log logrus.FieldLogger, err error) {
	var upErr *upstream.Error
	if !errors.As(err, &upErr) {
		upErr = &upstream.Error{Kind: upstream.KindTransport, Message: "workflow request failed", Err: err}
	}

	metrics.UpstreamRequests.WithLabelValues(string(upErr.Kind)).Inc()

	resp := models.ErrorResponse{
		Success: false,
		Message: upErr.Error(),
		Details: &models.ErrorDetails{
			Timeout: upErr.Timeout(),
			Kind:    string(upErr.Kind),
		},
	}

	switch upErr.Kind {
	case upstream.KindTimeout:
		resp.Error = "Workflow request timed out"
	case upstream.KindHTTP:
		resp.Error = "Workflow returned an error"
		resp.HTTPStatus = upErr.Status
		resp.HTTPData = upErr.BodyValue()
	case upstream.KindShape:
		resp.Error = "Invalid response from workflow"
		resp.RawResponse = upErr.BodyValue()
	default:
		resp.Error = "Failed to get predictions"
	}

	log.WithFields(logrus.Fields{
		"kind":        upErr.Kind,
		"http_status": upErr.Status,
	}).WithError(err).Error("prediction request failed")

	respondJSON(w, resp, http.StatusInternalServerError)
}

// CachedPredictionsHandler обрабатывает GET /predictions/cache
func (h *Handler) CachedPredictionsHandler(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.cache.Read()
	if !ok {
		respondError(w, "No cached predictions available", "Call POST /predict first", http.StatusNotFound)
		return
	}

	age := entry.Age(h.now()).Milliseconds()
	bundle := entry.Bundle

	respondJSON(w, models.PredictionResponse{
		Success:     true,
		Count:       len(bundle.Predictions),
		Predictions: bundle.Predictions,
		Analytics:   &bundle.Analytics,
		Metadata:    &bundle.Metadata,
		CacheAge:    &age,
	}, http.StatusOK)
}

// AnalyticsHandler обрабатывает GET /analytics - сводка из кэша
func (h *Handler) AnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	entry, ok := h.cache.Read()
	if !ok {
		respondError(w, "No analytics available", "Call POST /predict first", http.StatusNotFound)
		return
	}

	respondJSON(w, models.AnalyticsResponse{
		Success:   true,
		Analytics: entry.Bundle.Analytics,
		Timestamp: entry.UpdatedAt,
	}, http.StatusOK)
}

// ClearCacheHandler обрабатывает DELETE /cache
func (h *Handler) ClearCacheHandler(w http.ResponseWriter, r *http.Request) {
	h.cache.Clear()
	metrics.ResetAnalyticsMetrics()

	h.logger.WithField("request_id", RequestID(r.Context())).Info("prediction cache cleared")

	respondJSON(w, models.MessageResponse{
		Success: true,
		Message: "Cache cleared successfully",
	}, http.StatusOK)
}

// HealthHandler обрабатывает GET /health - проверка здоровья
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	now := h.now()

	status := models.HealthStatus{
		Status:    "healthy",
		Timestamp: now,
		Uptime:    now.Sub(h.startTime).Seconds(),
		Memory:    h.memoryUsage(),
		Cache:     h.cache.Status(),
		Redis:     h.redisStatus(r.Context()),
	}

	respondJSON(w, status, http.StatusOK)
}

func (h *Handler) redisStatus(ctx context.Context) string {
	if h.publisher == nil {
		return "disabled"
	}

	ctx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()

	if err := h.publisher.Ping(ctx); err != nil {
		return "disconnected"
	}
	return "connected"
}

func (h *Handler) memoryUsage() models.MemoryUsage {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	usage := models.MemoryUsage{
		HeapAlloc:  ms.HeapAlloc,
		HeapSys:    ms.HeapSys,
		Goroutines: runtime.NumGoroutine(),
	}

	if h.proc != nil {
		if info, err := h.proc.MemoryInfo(); err == nil {
			usage.RSS = info.RSS
			usage.VMS = info.VMS
		}
	}
	return usage
}

// NotFoundHandler отвечает на неизвестные маршруты списком доступных
func (h *Handler) NotFoundHandler(w http.ResponseWriter, r *http.Request) {
	metrics.RequestsTotal.WithLabelValues("unmatched", r.Method, "404").Inc()

	respondJSON(w, models.ErrorResponse{
		Success:            false,
		Error:              "Endpoint not found",
		Path:               r.Method + " " + r.URL.Path,
		AvailableEndpoints: Endpoints,
	}, http.StatusNotFound)
}

// respondJSON отправляет JSON ответ
func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// respondError отправляет ошибку в JSON формате
func respondError(w http.ResponseWriter, message, detail string, status int) {
	respondJSON(w, models.ErrorResponse{
		Success: false,
		Error:   message,
		Message: detail,
	}, status)
}
