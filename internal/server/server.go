package server

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/xaenox/haven-bot/internal/engine"
	"github.com/xaenox/haven-bot/internal/responder"
)

// NewHTTPServer wires the chat API around the engine and responder.
func NewHTTPServer(port string, eng *engine.Engine, gen responder.Generator, logger *zap.Logger) *http.Server {
	handler := NewHandler(eng, gen, logger)

	router := mux.NewRouter()

	router.HandleFunc("/chat", handler.Chat).Methods("POST")
	router.HandleFunc("/conversation/{user_id}/history", handler.History).Methods("GET")
	router.HandleFunc("/user/{user_id}/analysis", handler.Analysis).Methods("GET")
	router.HandleFunc("/user/{user_id}/summary", handler.Summary).Methods("GET")
	router.HandleFunc("/health", handler.Health).Methods("GET")

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	router.Use(loggingMiddleware(logger))

	return &http.Server{
		Addr:         ":" + port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}

func loggingMiddleware(logger *zap.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			logger.Debug("HTTP request processed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Duration("duration", time.Since(start)),
				zap.String("remote", r.RemoteAddr))
		})
	}
}
