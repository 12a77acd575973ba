package competitionhandlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	economydomain "github.com/Black-And-White-Club/quiz-league/app/modules/economy/domain"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 16

type leagueRequest struct {
	Name                  string          `json:"name"`
	Order                 int             `json:"order"`
	PromoteRate           decimal.Decimal `json:"promote_rate"`
	DemoteRate            decimal.Decimal `json:"demote_rate"`
	PromotionMinimumScore int             `json:"promotion_minimum_score"`
	DemotionPenalty       int             `json:"demotion_penalty"`
	TargetDivisionSize    int             `json:"target_division_size"`
	MinDivisionSize       int             `json:"min_division_size"`
	MaxDivisionSize       int             `json:"max_division_size"`
}

func (req leagueRequest) toModel(id int64) *competitiondb.League {
	return &competitiondb.League{
		ID:                    id,
		Name:                  req.Name,
		Order:                 req.Order,
		PromoteRate:           req.PromoteRate,
		DemoteRate:            req.DemoteRate,
		PromotionMinimumScore: req.PromotionMinimumScore,
		DemotionPenalty:       req.DemotionPenalty,
		TargetDivisionSize:    req.TargetDivisionSize,
		MinDivisionSize:       req.MinDivisionSize,
		MaxDivisionSize:       req.MaxDivisionSize,
	}
}

type transactionRequest struct {
	Amount       int                           `json:"amount"`
	Type         economydomain.TransactionType `json:"transaction_type"`
	Reason       economydomain.Reason          `json:"reason"`
	Description  string                        `json:"description"`
	AllowPartial bool                          `json:"allow_partial"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// actor names the admin behind a request for audit logs.
func actor(r *http.Request) string {
	if claims, ok := ClaimsFromContext(r.Context()); ok {
		return claims.Subject
	}
	return ""
}

func (h *CompetitionHandlers) HandleCreateLeague(w http.ResponseWriter, r *http.Request) {
	var req leagueRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.badRequest(w, "invalid league body")
		return
	}
	league, err := h.service.CreateLeague(r.Context(), req.toModel(0))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "League created",
		slog.Int64("league_id", league.ID),
		slog.String("actor", actor(r)),
	)
	writeJSON(w, http.StatusCreated, league)
}

func (h *CompetitionHandlers) HandleUpdateLeague(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	var req leagueRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.badRequest(w, "invalid league body")
		return
	}
	league, err := h.service.UpdateLeague(r.Context(), req.toModel(id))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "League updated",
		slog.Int64("league_id", league.ID),
		slog.String("actor", actor(r)),
	)
	writeJSON(w, http.StatusOK, league)
}

func (h *CompetitionHandlers) HandleDeleteLeague(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if err := h.service.DeleteLeague(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "League deleted",
		slog.Int64("league_id", id),
		slog.String("actor", actor(r)),
	)
	w.WriteHeader(http.StatusNoContent)
}

func (h *CompetitionHandlers) HandleCloseCycle(w http.ResponseWriter, r *http.Request) {
	h.runCycle(w, r, competitionservice.CycleClose)
}

func (h *CompetitionHandlers) HandleOpenCycle(w http.ResponseWriter, r *http.Request) {
	h.runCycle(w, r, competitionservice.CycleOpen)
}

// runCycle runs a cycle inline, or enqueues it when async=true.
func (h *CompetitionHandlers) runCycle(w http.ResponseWriter, r *http.Request, cycle string) {
	ctx := r.Context()
	asOf, err := asOfParam(r, h.location, h.now())
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}

	h.logger.InfoContext(ctx, "Cycle requested",
		slog.String("cycle", cycle),
		slog.String("as_of", asOf.Format(dateLayout)),
		slog.String("actor", actor(r)),
	)

	if r.URL.Query().Get("async") == "true" {
		if h.scheduler == nil {
			writeError(w, http.StatusServiceUnavailable, "queue_unavailable", "job queue is not configured")
			return
		}
		enqueue := h.scheduler.EnqueueCloseCycle
		if cycle == competitionservice.CycleOpen {
			enqueue = h.scheduler.EnqueueOpenCycle
		}
		if err := enqueue(ctx, asOf); err != nil {
			h.fail(w, r, err)
			return
		}
		writeJSON(w, http.StatusAccepted, map[string]string{"cycle": cycle, "as_of": asOf.Format(dateLayout)})
		return
	}

	run := h.service.CloseCycle
	if cycle == competitionservice.CycleOpen {
		run = h.service.OpenCycle
	}
	report, err := run(ctx, asOf)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *CompetitionHandlers) HandleListTransactions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "user id must be a uuid")
		return
	}
	page, err := pageParams(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	res, err := h.economy.ListTransactions(r.Context(), userID, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// HandleRecordTransaction applies a manual balance change for a user.
func (h *CompetitionHandlers) HandleRecordTransaction(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.badRequest(w, "user id must be a uuid")
		return
	}
	var req transactionRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.badRequest(w, "invalid transaction body")
		return
	}
	if req.Reason == "" {
		req.Reason = economydomain.ReasonAdmin
	}

	tx, err := h.economy.RecordTransaction(r.Context(), economyservice.RecordTransactionRequest{
		UserID:       userID,
		Amount:       req.Amount,
		Type:         req.Type,
		Reason:       req.Reason,
		Description:  req.Description,
		AllowPartial: req.AllowPartial,
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.logger.InfoContext(r.Context(), "Transaction recorded",
		slog.String("user_id", userID.String()),
		slog.Int64("transaction_id", tx.ID),
		slog.String("actor", actor(r)),
	)
	writeJSON(w, http.StatusCreated, tx)
}
