package competitionservice

import (
	"log/slog"
	"sync"
	"testing"

	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/observability/metrics"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func testLeagueRow(id int64, name string, order int) competitiondb.League {
	return competitiondb.League{
		ID:                    id,
		Name:                  name,
		Order:                 order,
		PromoteRate:           decimal.RequireFromString("0.20"),
		DemoteRate:            decimal.RequireFromString("0.30"),
		PromotionMinimumScore: 10,
		DemotionPenalty:       50,
		TargetDivisionSize:    10,
		MinDivisionSize:       8,
		MaxDivisionSize:       12,
	}
}

// testLeagueRows is Bronze(1) < Silver(2) < Gold(3).
func testLeagueRows() []competitiondb.League {
	return []competitiondb.League{
		testLeagueRow(1, "Bronze", 1),
		testLeagueRow(2, "Silver", 2),
		testLeagueRow(3, "Gold", 3),
	}
}

func testLadder(t *testing.T) competitiondomain.Ladder {
	t.Helper()
	rows := testLeagueRows()
	leagues := make([]competitiondomain.League, len(rows))
	for i, r := range rows {
		leagues[i] = toDomainLeague(r)
	}
	ladder, err := competitiondomain.NewLadder(leagues)
	require.NoError(t, err)
	return ladder
}

// testMemberships returns size unranked memberships with descending scores
// 10*size, 10*(size-1), ... 10.
func testMemberships(divisionID int64, size int) []competitiondb.DivisionMembership {
	out := make([]competitiondb.DivisionMembership, size)
	for i := range out {
		out[i] = competitiondb.DivisionMembership{
			ID:          int64(i + 1),
			DivisionID:  divisionID,
			UserID:      uuid.New(),
			WeeklyScore: 10 * (size - i),
		}
	}
	return out
}

func testProfiles(n int, leagueID int64) []userdb.Profile {
	out := make([]userdb.Profile, n)
	for i := range out {
		league := leagueID
		out[i] = userdb.Profile{UserID: uuid.New(), IsActive: true, TotalScore: i, CurrentLeagueID: &league}
	}
	return out
}

type fakes struct {
	repo   *competitiondb.FakeRepository
	users  *userdb.FakeRepository
	ledger *economydb.FakeRepository
	pub    *recordingPublisher
}

func newTestService(t *testing.T) (*CompetitionService, *fakes) {
	t.Helper()
	f := &fakes{
		repo:   competitiondb.NewFakeRepository(),
		users:  userdb.NewFakeRepository(),
		ledger: economydb.NewFakeRepository(),
		pub:    &recordingPublisher{},
	}
	svc := NewCompetitionService(
		f.repo, f.users, f.ledger, f.pub,
		competitiondomain.GregorianCalendar{},
		slog.New(slog.DiscardHandler),
		metrics.NewNoop(),
		nil,
		nil,
	)
	return svc, f
}

type recordingPublisher struct {
	mu       sync.Mutex
	topics   []string
	messages []*message.Message
	err      error
}

func (p *recordingPublisher) Publish(topic string, msgs ...*message.Message) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	for _, m := range msgs {
		p.topics = append(p.topics, topic)
		p.messages = append(p.messages, m)
	}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) count(topic string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, t := range p.topics {
		if t == topic {
			n++
		}
	}
	return n
}

func ptrInt(v int) *int { return &v }

func ptrString(v string) *string { return &v }
