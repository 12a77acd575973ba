// Package quizevents holds the topics the quiz subsystem publishes.
package quizevents

import (
	"time"

	"github.com/google/uuid"
)

// ParticipationCompletedV1 is published when a user finishes a quiz attempt.
const ParticipationCompletedV1 = "quiz.participation.completed.v1"

// ParticipationCompletedPayloadV1 carries the attempt result. Only improvements
// over PreviousBest count toward scores.
type ParticipationCompletedPayloadV1 struct {
	ParticipationID string    `json:"participation_id"`
	UserID          uuid.UUID `json:"user_id"`
	PreviousBest    int       `json:"previous_best"`
	NewScore        int       `json:"new_score"`
	CompletedAt     time.Time `json:"completed_at"`
}
