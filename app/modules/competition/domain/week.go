package competitiondomain

import (
	"fmt"
	"time"
)

// WeekStatus is the lifecycle state of a week.
type WeekStatus string

const (
	WeekStatusUpcoming WeekStatus = "upcoming"
	WeekStatusActive   WeekStatus = "active"
	WeekStatusPassed   WeekStatus = "passed"
)

func (s WeekStatus) Valid() bool {
	switch s {
	case WeekStatusUpcoming, WeekStatusActive, WeekStatusPassed:
		return true
	}
	return false
}

// WeekLength is the distance between a week's start and end date.
const WeekLength = 7 * 24 * time.Hour

// Week is one scoring period. Dates are calendar dates at UTC midnight.
type Week struct {
	ID         int64
	Year       int
	WeekNumber int
	StartDate  time.Time
	EndDate    time.Time
	Status     WeekStatus
}

func (w Week) String() string {
	return fmt.Sprintf("%d/W%d", w.Year, w.WeekNumber)
}

// Covers reports whether the calendar date of t falls within [start, end].
func (w Week) Covers(t time.Time) bool {
	d := DateOf(t)
	return !d.Before(w.StartDate) && !d.After(w.EndDate)
}

// MarkPassed closes an active week. Any other status is left untouched and
// false is returned.
func (w *Week) MarkPassed() bool {
	if w.Status != WeekStatusActive {
		return false
	}
	w.Status = WeekStatusPassed
	return true
}

// NextWeek computes the week following prev. A nil prev bootstraps week 1
// starting today. Numbering follows cal's year, not the Gregorian one.
func NextWeek(prev *Week, today time.Time, cal Calendar) (Week, error) {
	today = DateOf(today)
	calendarYear := cal.Year(today)

	if prev == nil {
		return Week{
			Year:       calendarYear,
			WeekNumber: 1,
			StartDate:  today,
			EndDate:    today.Add(WeekLength),
			Status:     WeekStatusUpcoming,
		}, nil
	}

	if prev.Status == WeekStatusActive || prev.Status == WeekStatusUpcoming {
		return Week{}, fmt.Errorf("%w: week %s is %s", ErrInvalidWeekTransition, prev, prev.Status)
	}

	next := Week{Status: WeekStatusUpcoming}
	if calendarYear == prev.Year {
		next.Year, next.WeekNumber = prev.Year, prev.WeekNumber+1
	} else {
		next.Year, next.WeekNumber = calendarYear, 1
	}
	next.StartDate = DateOf(prev.EndDate).AddDate(0, 0, 1)
	next.EndDate = next.StartDate.Add(WeekLength)
	return next, nil
}

// DateOf truncates t to its calendar date, expressed at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
