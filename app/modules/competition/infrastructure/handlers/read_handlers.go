package competitionhandlers

import (
	"fmt"
	"net/http"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/google/uuid"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *CompetitionHandlers) HandleListLeagues(w http.ResponseWriter, r *http.Request) {
	leagues, err := h.service.ListLeagues(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if leagues == nil {
		leagues = []competitiondb.League{}
	}
	writeJSON(w, http.StatusOK, leagues)
}

func (h *CompetitionHandlers) HandleGetLeague(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	league, err := h.service.GetLeague(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, league)
}

// HandleLeagueLeaderboard pages the league's profiles by total score.
func (h *CompetitionHandlers) HandleLeagueLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	page, err := pageParams(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	res, err := h.service.LeagueLeaderboard(r.Context(), id, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CompetitionHandlers) HandleListWeeks(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.service.ListWeeks(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if weeks == nil {
		weeks = []competitiondb.Week{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

// HandleListUserDivisions lists the divisions user_id belongs to, optionally
// narrowed to one week.
func (h *CompetitionHandlers) HandleListUserDivisions(w http.ResponseWriter, r *http.Request) {
	userID, err := uuid.Parse(r.URL.Query().Get("user_id"))
	if err != nil {
		h.badRequest(w, "user_id must be a uuid")
		return
	}
	var filter competitiondb.DivisionFilter
	if filter.WeekNumber, err = optionalInt(r, "week_number"); err != nil {
		h.badRequest(w, err.Error())
		return
	}
	if filter.Year, err = optionalInt(r, "year"); err != nil {
		h.badRequest(w, err.Error())
		return
	}

	divisions, err := h.service.ListUserDivisions(r.Context(), userID, filter)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if divisions == nil {
		divisions = []competitiondb.Division{}
	}
	writeJSON(w, http.StatusOK, divisions)
}

func (h *CompetitionHandlers) HandleGetDivision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	division, err := h.service.GetDivision(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, division)
}

// HandleDivisionLeaderboard pages memberships by weekly score.
func (h *CompetitionHandlers) HandleDivisionLeaderboard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	page, err := pageParams(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	res, err := h.service.DivisionLeaderboard(r.Context(), id, page)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (h *CompetitionHandlers) HandleDivisionChart(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	png, err := h.service.DivisionChart(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeBinary(w, "image/png", "", png)
}

func (h *CompetitionHandlers) HandleExportDivision(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		h.badRequest(w, err.Error())
		return
	}
	xlsx, err := h.service.ExportDivision(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeBinary(w, xlsxContentType, fmt.Sprintf("division-%d.xlsx", id), xlsx)
}
