package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/Black-And-White-Club/quiz-league/pkg/observability/attr"
)

// Run starts the modules, the watermill router and the HTTP server, and blocks
// until ctx is cancelled or the router stops on its own.
func (app *App) Run(ctx context.Context) error {
	logger := app.Observability.Logger

	var wg sync.WaitGroup
	wg.Add(3)
	go app.UserModule.Run(ctx, &wg)
	go app.ScoreModule.Run(ctx, &wg)
	go app.CompetitionModule.Run(ctx, &wg)

	routerErr := make(chan error, 1)
	go func() {
		routerErr <- app.Router.Run(ctx)
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "HTTP server listening", attr.String("address", app.HTTPServer.Addr))
		if err := app.HTTPServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("Shutdown requested")
	case err := <-routerErr:
		if err != nil {
			runErr = fmt.Errorf("watermill router stopped: %w", err)
		}
	case err := <-serverErr:
		runErr = fmt.Errorf("http server failed: %w", err)
	}

	app.Close()
	wg.Wait()
	return runErr
}
