package testutils

import (
	"time"

	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
)

// TestDataGenerator provides methods to create test data for integration tests
type TestDataGenerator struct {
	faker *gofakeit.Faker
	seed  int64
}

// NewTestDataGenerator creates a new test data generator with optional seed
func NewTestDataGenerator(seed ...int64) *TestDataGenerator {
	var s int64
	if len(seed) > 0 {
		s = seed[0]
	} else {
		s = time.Now().UnixNano()
	}

	return &TestDataGenerator{
		faker: gofakeit.New(uint64(s)),
		seed:  s,
	}
}

// Seed returns the seed, for reproducing a failing run.
func (g *TestDataGenerator) Seed() int64 {
	return g.seed
}

// GenerateProfiles creates count active profiles sitting in leagueID.
func (g *TestDataGenerator) GenerateProfiles(count int, leagueID int64) []userdb.Profile {
	profiles := make([]userdb.Profile, count)
	for i := range profiles {
		id := leagueID
		profiles[i] = userdb.Profile{
			UserID:          uuid.New(),
			DisplayName:     g.faker.Username(),
			IsActive:        true,
			Diamonds:        g.faker.IntRange(0, 50),
			CurrentLeagueID: &id,
		}
	}
	return profiles
}

// GenerateScores returns count distinct positive scores in descending order.
func (g *TestDataGenerator) GenerateScores(count int) []int {
	scores := make([]int, count)
	next := g.faker.IntRange(count*10, count*20)
	for i := range scores {
		scores[i] = next
		next -= g.faker.IntRange(1, 5)
	}
	return scores
}
