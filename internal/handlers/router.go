package handlers

import (
	"net/http"
	_ "net/http/pprof"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
)

// Endpoints список маршрутов для ответа 404
var Endpoints = []string{
	"GET /health",
	"POST /predict",
	"GET /predictions/cache",
	"GET /analytics",
	"DELETE /cache",
	"GET /prometheus",
}

// NewRouter настраивает маршруты и middleware
func NewRouter(h *Handler, logger logrus.FieldLogger) http.Handler {
	router := mux.NewRouter()

	// API эндпоинты
	router.HandleFunc("/health", h.HealthHandler).Methods(http.MethodGet)
	router.HandleFunc("/predict", h.PredictHandler).Methods(http.MethodPost)
	router.HandleFunc("/predictions/cache", h.CachedPredictionsHandler).Methods(http.MethodGet)
	router.HandleFunc("/analytics", h.AnalyticsHandler).Methods(http.MethodGet)
	router.HandleFunc("/cache", h.ClearCacheHandler).Methods(http.MethodDelete)

	// Prometheus метрики
	router.Handle("/prometheus", promhttp.Handler()).Methods(http.MethodGet)

	// pprof для профилирования
	router.PathPrefix("/debug/pprof/").Handler(http.DefaultServeMux)

	router.NotFoundHandler = http.HandlerFunc(h.NotFoundHandler)
	router.MethodNotAllowedHandler = http.HandlerFunc(h.NotFoundHandler)

	router.Use(metricsMiddleware)

	return requestIDMiddleware(loggingMiddleware(logger, recoveryMiddleware(logger, router)))
}
