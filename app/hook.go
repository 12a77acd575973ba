package app

import (
	"context"
	"time"

	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
)

const shutdownTimeout = 15 * time.Second

// Close stops everything NewApp started, in reverse order. It is safe to call
// on a partially initialized App.
func (app *App) Close() {
	logger := app.Observability.Logger

	if app.HTTPServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		if err := app.HTTPServer.Shutdown(ctx); err != nil {
			logger.Error("Error shutting down HTTP server", attr.Error(err))
		}
		cancel()
	}

	if app.CompetitionModule != nil {
		if err := app.CompetitionModule.Close(); err != nil {
			logger.Error("Error closing competition module", attr.Error(err))
		}
	}
	if app.ScoreModule != nil {
		_ = app.ScoreModule.Close()
	}
	if app.UserModule != nil {
		_ = app.UserModule.Close()
	}

	if app.Router != nil {
		if err := app.Router.Close(); err != nil {
			logger.Error("Error closing watermill router", attr.Error(err))
		}
	}
	if app.EventBus != nil {
		if err := app.EventBus.Close(); err != nil {
			logger.Error("Error closing event bus", attr.Error(err))
		}
	}
	if app.DB != nil {
		if err := app.DB.Close(); err != nil {
			logger.Error("Error closing database", attr.Error(err))
		}
	}

	logger.Info("Application shut down")
}
