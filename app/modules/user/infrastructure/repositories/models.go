package userdb

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Profile is a user's competition state. League and level are logical links to
// other modules' tables; no foreign key is declared so module migrations stay
// order-independent.
type Profile struct {
	bun.BaseModel   `bun:"table:profiles,alias:p"`
	UserID          uuid.UUID `bun:"user_id,pk,type:uuid" json:"user_id"`
	DisplayName     string    `bun:"display_name,notnull,default:''" json:"display_name"`
	IsActive        bool      `bun:"is_active,notnull,default:true" json:"is_active"`
	TotalScore      int       `bun:"total_score,notnull,default:0" json:"total_score"`
	Diamonds        int       `bun:"diamonds,notnull,default:0" json:"diamonds"`
	LevelID         *int64    `bun:"level_id" json:"level_id"`
	CurrentLeagueID *int64    `bun:"current_league_id" json:"current_league_id"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Level is a title unlocked by total score.
type Level struct {
	bun.BaseModel `bun:"table:levels,alias:lv"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Title         string    `bun:"title,notnull" json:"title"`
	Order         int       `bun:"order_index,notnull,unique" json:"order"`
	MinScore      int       `bun:"min_score,notnull" json:"min_score"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
}
