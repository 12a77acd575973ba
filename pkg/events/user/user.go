// Package userevents holds account lifecycle topics.
package userevents

import "github.com/google/uuid"

// UserRegisteredV1 is published by the account service after sign-up.
const UserRegisteredV1 = "account.user.registered.v1"

// ProfileCreatedV1 is published once a competition profile exists for a user.
const ProfileCreatedV1 = "user.profile.created.v1"

type UserRegisteredPayloadV1 struct {
	UserID      uuid.UUID `json:"user_id"`
	DisplayName string    `json:"display_name"`
}

type ProfileCreatedPayloadV1 struct {
	UserID          uuid.UUID `json:"user_id"`
	CurrentLeagueID *int64    `json:"current_league_id,omitempty"`
}
