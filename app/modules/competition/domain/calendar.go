package competitiondomain

import (
	"fmt"
	"strings"
	"time"

	ptime "github.com/yaa110/go-persian-calendar"
)

// Calendar decides which year a date belongs to for week numbering.
type Calendar interface {
	Year(t time.Time) int
	Name() string
}

type GregorianCalendar struct{}

func (GregorianCalendar) Year(t time.Time) int { return t.Year() }

func (GregorianCalendar) Name() string { return "gregorian" }

// JalaliCalendar is the Solar Hijri calendar; its year turns over at Nowruz.
type JalaliCalendar struct{}

func (JalaliCalendar) Year(t time.Time) int { return ptime.New(t).Year() }

func (JalaliCalendar) Name() string { return "jalali" }

// CalendarByName resolves the configured calendar.
func CalendarByName(name string) (Calendar, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "jalali", "persian", "solar_hijri":
		return JalaliCalendar{}, nil
	case "gregorian":
		return GregorianCalendar{}, nil
	default:
		return nil, fmt.Errorf("unknown calendar %q", name)
	}
}
