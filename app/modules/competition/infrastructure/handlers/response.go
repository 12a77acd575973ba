package competitionhandlers

import (
	"encoding/json"
	"errors"
	"net/http"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	economydomain "github.com/Black-And-White-Club/quiz-league/app/modules/economy/domain"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeBinary(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	if filename != "" {
		w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

// errorStatus maps service errors onto HTTP status codes and stable error codes.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, competitionservice.ErrLeagueNotFound),
		errors.Is(err, competitionservice.ErrWeekNotFound),
		errors.Is(err, competitionservice.ErrDivisionNotFound),
		errors.Is(err, economyservice.ErrProfileNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, competitionservice.ErrDivisionsAlreadyExist),
		errors.Is(err, competitionservice.ErrDivisionAlreadyFinalized),
		errors.Is(err, competitionservice.ErrLeagueInUse),
		errors.Is(err, competitiondomain.ErrInvalidWeekTransition),
		errors.Is(err, competitiondomain.ErrDuplicateLeagueOrder):
		return http.StatusConflict, "conflict"
	case errors.Is(err, competitiondomain.ErrInfeasibleSplit),
		errors.Is(err, economydomain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity, "unprocessable"
	case errors.Is(err, competitiondomain.ErrInvalidLeague),
		errors.Is(err, competitionservice.ErrInvalidWeekStatus),
		errors.Is(err, economydomain.ErrInvalidTransaction):
		return http.StatusBadRequest, "invalid_request"
	}
	return http.StatusInternalServerError, "internal_error"
}
