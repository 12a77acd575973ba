package competitiondb

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/uptrace/bun"
)

// League is one tier of the ladder.
type League struct {
	bun.BaseModel         `bun:"table:leagues,alias:lg"`
	ID                    int64           `bun:"id,pk,autoincrement" json:"id"`
	Name                  string          `bun:"name,notnull,unique" json:"name"`
	Order                 int             `bun:"order_index,notnull,unique" json:"order"`
	PromoteRate           decimal.Decimal `bun:"promote_rate,type:numeric(3,2),notnull" json:"promote_rate"`
	DemoteRate            decimal.Decimal `bun:"demote_rate,type:numeric(3,2),notnull" json:"demote_rate"`
	PromotionMinimumScore int             `bun:"promotion_minimum_score,notnull,default:0" json:"promotion_minimum_score"`
	DemotionPenalty       int             `bun:"demotion_penalty,notnull,default:0" json:"demotion_penalty"`
	TargetDivisionSize    int             `bun:"target_division_size,notnull" json:"target_division_size"`
	MinDivisionSize       int             `bun:"min_division_size,notnull" json:"min_division_size"`
	MaxDivisionSize       int             `bun:"max_division_size,notnull" json:"max_division_size"`
	CreatedAt             time.Time       `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt             time.Time       `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Week is a scoring period.
type Week struct {
	bun.BaseModel `bun:"table:weeks,alias:w"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Year          int       `bun:"year,notnull" json:"year"`
	WeekNumber    int       `bun:"week_number,notnull" json:"week_number"`
	StartDate     time.Time `bun:"start_date,type:date,notnull" json:"start_date"`
	EndDate       time.Time `bun:"end_date,type:date,notnull" json:"end_date"`
	Status        string    `bun:"status,notnull,default:'upcoming'" json:"status"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Division is a bucket of users under one league for one week.
type Division struct {
	bun.BaseModel `bun:"table:divisions,alias:d"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	LeagueID      int64     `bun:"league_id,notnull" json:"league_id"`
	WeekID        int64     `bun:"week_id,notnull" json:"week_id"`
	Size          int       `bun:"size,notnull" json:"size"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`

	League *League `bun:"rel:belongs-to,join:league_id=id" json:"league,omitempty"`
	Week   *Week   `bun:"rel:belongs-to,join:week_id=id" json:"week,omitempty"`
}

// DivisionMembership links a user to a division and carries the weekly score.
// Rank and status stay NULL until the division is finalized.
type DivisionMembership struct {
	bun.BaseModel   `bun:"table:division_memberships,alias:dm"`
	ID              int64     `bun:"id,pk,autoincrement" json:"id"`
	DivisionID      int64     `bun:"division_id,notnull" json:"division_id"`
	UserID          uuid.UUID `bun:"user_id,type:uuid,notnull" json:"user_id"`
	WeeklyScore     int       `bun:"weekly_score,notnull,default:0" json:"weekly_score"`
	RankInDivision  *int      `bun:"rank_in_division" json:"rank_in_division"`
	PromotionStatus *string   `bun:"promotion_status" json:"promotion_status"`
	CreatedAt       time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt       time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// DivisionFilter narrows the divisions a user belongs to.
type DivisionFilter struct {
	WeekNumber *int
	Year       *int
}
