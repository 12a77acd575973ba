// Package competitionevents holds the topics published by the competition cycle.
package competitionevents

import (
	"time"

	"github.com/google/uuid"
)

const (
	// WeekClosedV1 follows a committed close-cycle.
	WeekClosedV1 = "competition.week.closed.v1"
	// WeekOpenedV1 follows a committed open-cycle.
	WeekOpenedV1 = "competition.week.opened.v1"
	// MemberMovedV1 is published once per promoted or demoted member.
	MemberMovedV1 = "competition.member.moved.v1"
	// ScoreAppliedV1 follows a committed score delta.
	ScoreAppliedV1 = "competition.score.applied.v1"
)

type WeekClosedPayloadV1 struct {
	WeekID     int64 `json:"week_id"`
	Year       int   `json:"year"`
	WeekNumber int   `json:"week_number"`
	Divisions  int   `json:"divisions"`
	Promoted   int   `json:"promoted"`
	Demoted    int   `json:"demoted"`
	Stayed     int   `json:"stayed"`
}

type WeekOpenedPayloadV1 struct {
	WeekID     int64     `json:"week_id"`
	Year       int       `json:"year"`
	WeekNumber int       `json:"week_number"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
	Divisions  int       `json:"divisions"`
	Members    int       `json:"members"`
}

type MemberMovedPayloadV1 struct {
	UserID       uuid.UUID `json:"user_id"`
	WeekID       int64     `json:"week_id"`
	DivisionID   int64     `json:"division_id"`
	FromLeagueID int64     `json:"from_league_id"`
	ToLeagueID   int64     `json:"to_league_id"`
	Status       string    `json:"status"`
	Rank         int       `json:"rank"`
	Penalty      int       `json:"penalty,omitempty"`
}

type ScoreAppliedPayloadV1 struct {
	UserID        uuid.UUID `json:"user_id"`
	Delta         int       `json:"delta"`
	TotalScore    int       `json:"total_score"`
	WeeklyApplied bool      `json:"weekly_applied"`
	LevelID       *int64    `json:"level_id,omitempty"`
}
