package app

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/Black-And-White-Club/quiz-league/config"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httplog/v2"
)

// newHTTPRouter builds the root router shared by the module routes. Access logs
// go through httplog; /metrics and /healthz are mounted here.
func newHTTPRouter(cfg *config.Config, obs *observability.Observability) *chi.Mux {
	router := chi.NewRouter()

	accessLogger := httplog.NewLogger("quiz-league", httplog.Options{
		JSON:             !strings.EqualFold(cfg.Observability.LogFormat, "text"),
		LogLevel:         accessLogLevel(cfg.Observability.LogLevel),
		Concise:          true,
		MessageFieldName: "message",
		QuietDownRoutes:  []string{"/healthz", "/metrics"},
		QuietDownPeriod:  time.Minute,
		Tags: map[string]string{
			"env": cfg.Observability.Environment,
		},
	})

	router.Use(middleware.RequestID)
	router.Use(httplog.RequestLogger(accessLogger))
	router.Use(middleware.Recoverer)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", obs.MetricsHandler())

	return router
}

func newHTTPServer(address string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              address,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}

func accessLogLevel(level string) slog.Level {
	if strings.EqualFold(level, "debug") {
		return slog.LevelDebug
	}
	return slog.LevelInfo
}
