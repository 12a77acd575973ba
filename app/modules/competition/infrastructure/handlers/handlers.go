package competitionhandlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	"github.com/Black-And-White-Club/quiz-league/pkg/jwt"
	"github.com/go-chi/chi/v5"
)

// CycleScheduler hands cycle runs to the job queue instead of running them inline.
type CycleScheduler interface {
	EnqueueCloseCycle(ctx context.Context, asOf time.Time) error
	EnqueueOpenCycle(ctx context.Context, asOf time.Time) error
}

// CompetitionHandlers serves the read API and the admin API over HTTP.
type CompetitionHandlers struct {
	service   competitionservice.Service
	economy   economyservice.Service
	scheduler CycleScheduler
	logger    *slog.Logger
	location  *time.Location
	now       func() time.Time
}

// NewCompetitionHandlers creates the HTTP handlers. scheduler may be nil, in
// which case async cycle requests are rejected. Dates without a zone are read
// in location.
func NewCompetitionHandlers(
	service competitionservice.Service,
	economy economyservice.Service,
	scheduler CycleScheduler,
	logger *slog.Logger,
	location *time.Location,
) *CompetitionHandlers {
	if location == nil {
		location = time.UTC
	}
	return &CompetitionHandlers{
		service:   service,
		economy:   economy,
		scheduler: scheduler,
		logger:    logger,
		location:  location,
		now:       time.Now,
	}
}

// Register mounts the routes on r. Admin routes require a token with the admin role.
func (h *CompetitionHandlers) Register(r chi.Router, tokens jwt.Service) {
	r.Get("/leagues", h.HandleListLeagues)
	r.Get("/leagues/{id}", h.HandleGetLeague)
	r.Get("/leagues/{id}/leaderboard", h.HandleLeagueLeaderboard)
	r.Get("/weeks", h.HandleListWeeks)
	r.Get("/divisions", h.HandleListUserDivisions)
	r.Get("/divisions/{id}", h.HandleGetDivision)
	r.Get("/divisions/{id}/leaderboard", h.HandleDivisionLeaderboard)
	r.Get("/divisions/{id}/chart.png", h.HandleDivisionChart)
	r.Get("/divisions/{id}/export.xlsx", h.HandleExportDivision)

	r.Group(func(r chi.Router) {
		r.Use(AdminMiddleware(tokens))
		r.Post("/leagues", h.HandleCreateLeague)
		r.Put("/leagues/{id}", h.HandleUpdateLeague)
		r.Delete("/leagues/{id}", h.HandleDeleteLeague)
		r.Post("/cycle/close", h.HandleCloseCycle)
		r.Post("/cycle/open", h.HandleOpenCycle)
		r.Get("/users/{id}/transactions", h.HandleListTransactions)
		r.Post("/users/{id}/transactions", h.HandleRecordTransaction)
	})
}

// fail writes err as a JSON error. Unmapped errors are logged and hidden.
func (h *CompetitionHandlers) fail(w http.ResponseWriter, r *http.Request, err error) {
	status, code := errorStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.ErrorContext(r.Context(), "Request failed",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeError(w, status, code, http.StatusText(status))
		return
	}
	writeError(w, status, code, err.Error())
}

func (h *CompetitionHandlers) badRequest(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, "invalid_request", message)
}
