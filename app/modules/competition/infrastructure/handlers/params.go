package competitionhandlers

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Black-And-White-Club/quiz-league/pkg/pagination"
	"github.com/go-chi/chi/v5"
)

const dateLayout = "2006-01-02"

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", chi.URLParam(r, "id"))
	}
	return id, nil
}

// optionalInt parses an optional positive integer query parameter.
func optionalInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return nil, fmt.Errorf("invalid %s %q", name, raw)
	}
	return &v, nil
}

func pageParams(r *http.Request) (pagination.Page, error) {
	number, err := optionalInt(r, "page")
	if err != nil {
		return pagination.Page{}, err
	}
	size, err := optionalInt(r, "page_size")
	if err != nil {
		return pagination.Page{}, err
	}
	var n, s int
	if number != nil {
		n = *number
	}
	if size != nil {
		s = *size
	}
	return pagination.New(n, s), nil
}

// asOfParam reads the as_of date (YYYY-MM-DD) in loc, defaulting to now.
func asOfParam(r *http.Request, loc *time.Location, now time.Time) (time.Time, error) {
	raw := r.URL.Query().Get("as_of")
	if raw == "" {
		return now.In(loc), nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid as_of %q, want YYYY-MM-DD", raw)
	}
	return t, nil
}
