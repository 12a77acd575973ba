package competitionhandlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economyservice "github.com/Black-And-White-Club/quiz-league/app/modules/economy/application"
	economydomain "github.com/Black-And-White-Club/quiz-league/app/modules/economy/domain"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/jwt"
	"github.com/Black-And-White-Club/quiz-league/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var tehran = time.FixedZone("IRST", 3*3600+1800)

type testEnv struct {
	service   *FakeService
	economy   *FakeEconomy
	scheduler *fakeScheduler
	tokens    jwt.Service
	router    chi.Router
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		service:   &FakeService{},
		economy:   &FakeEconomy{},
		scheduler: &fakeScheduler{},
		tokens:    jwt.NewService("test-secret", "quiz-league", time.Hour),
	}
	h := NewCompetitionHandlers(env.service, env.economy, env.scheduler, slog.New(slog.DiscardHandler), tehran)
	h.now = func() time.Time { return time.Date(2026, 10, 17, 21, 0, 0, 0, time.UTC) }
	r := chi.NewRouter()
	h.Register(r, env.tokens)
	env.router = r
	return env
}

func (e *testEnv) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func (e *testEnv) token(t *testing.T, role jwt.Role) string {
	t.Helper()
	tok, err := e.tokens.GenerateToken("admin-1", role, time.Hour)
	require.NoError(t, err)
	return tok
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	return body
}

func TestReadRoutes(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		target     string
		setup      func(*FakeService)
		wantStatus int
		verify     func(t *testing.T, rr *httptest.ResponseRecorder)
	}{
		{
			name:   "list leagues",
			target: "/leagues",
			setup: func(s *FakeService) {
				s.ListLeaguesFunc = func(ctx context.Context) ([]competitiondb.League, error) {
					return []competitiondb.League{{ID: 1, Name: "Bronze", Order: 1}, {ID: 2, Name: "Silver", Order: 2}}, nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var leagues []competitiondb.League
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&leagues))
				require.Len(t, leagues, 2)
				assert.Equal(t, "Silver", leagues[1].Name)
			},
		},
		{
			name:       "empty league list renders as array",
			target:     "/leagues",
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.JSONEq(t, `[]`, rr.Body.String())
			},
		},
		{
			name:       "unknown league",
			target:     "/leagues/9",
			wantStatus: http.StatusNotFound,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.Equal(t, "not_found", decodeError(t, rr).Code)
			},
		},
		{
			name:       "non numeric league id",
			target:     "/leagues/abc",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "league leaderboard pagination",
			target: "/leagues/2/leaderboard?page=3&page_size=500",
			setup: func(s *FakeService) {
				s.LeagueLeaderboardFunc = func(ctx context.Context, leagueID int64, page pagination.Page) (pagination.Result[userdb.Profile], error) {
					if leagueID != 2 || page.Number != 3 || page.Size != pagination.MaxPageSize {
						return pagination.Result[userdb.Profile]{}, fmt.Errorf("unexpected args %d %+v", leagueID, page)
					}
					return pagination.NewResult[userdb.Profile](page, 0, nil), nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.JSONEq(t, `{"count":0,"page":3,"page_size":100,"results":[]}`, rr.Body.String())
			},
		},
		{
			name:       "invalid page",
			target:     "/leagues/2/leaderboard?page=zero",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "weeks by status",
			target: "/weeks?status=bogus",
			setup: func(s *FakeService) {
				s.ListWeeksFunc = func(ctx context.Context, status string) ([]competitiondb.Week, error) {
					return nil, fmt.Errorf("%w: %s", competitionservice.ErrInvalidWeekStatus, status)
				}
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "user divisions with week filter",
			target: "/divisions?user_id=" + userID.String() + "&week_number=12&year=1405",
			setup: func(s *FakeService) {
				s.ListUserDivisionsFunc = func(ctx context.Context, id uuid.UUID, filter competitiondb.DivisionFilter) ([]competitiondb.Division, error) {
					if id != userID || filter.WeekNumber == nil || *filter.WeekNumber != 12 || filter.Year == nil || *filter.Year != 1405 {
						return nil, errors.New("unexpected filter")
					}
					return []competitiondb.Division{{ID: 7, LeagueID: 1, WeekID: 3, Size: 10}}, nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var divisions []competitiondb.Division
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&divisions))
				require.Len(t, divisions, 1)
				assert.Equal(t, int64(7), divisions[0].ID)
			},
		},
		{
			name:       "user divisions require a uuid",
			target:     "/divisions?user_id=nope",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:   "division leaderboard",
			target: "/divisions/7/leaderboard",
			setup: func(s *FakeService) {
				s.DivisionLeaderboardFunc = func(ctx context.Context, divisionID int64, page pagination.Page) (pagination.Result[competitiondb.DivisionMembership], error) {
					items := []competitiondb.DivisionMembership{{DivisionID: divisionID, UserID: userID, WeeklyScore: 40}}
					return pagination.NewResult(page, 1, items), nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				var res pagination.Result[competitiondb.DivisionMembership]
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
				assert.Equal(t, 1, res.Count)
				assert.Equal(t, pagination.DefaultPageSize, res.PageSize)
				assert.Equal(t, 40, res.Results[0].WeeklyScore)
			},
		},
		{
			name:   "division chart",
			target: "/divisions/7/chart.png",
			setup: func(s *FakeService) {
				s.DivisionChartFunc = func(ctx context.Context, divisionID int64) ([]byte, error) {
					return []byte("\x89PNG"), nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
				assert.Equal(t, "\x89PNG", rr.Body.String())
			},
		},
		{
			name:   "division export",
			target: "/divisions/7/export.xlsx",
			setup: func(s *FakeService) {
				s.ExportDivisionFunc = func(ctx context.Context, divisionID int64) ([]byte, error) {
					return []byte("PK"), nil
				}
			},
			wantStatus: http.StatusOK,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				assert.Equal(t, xlsxContentType, rr.Header().Get("Content-Type"))
				assert.Contains(t, rr.Header().Get("Content-Disposition"), "division-7.xlsx")
			},
		},
		{
			name:   "infra errors are hidden",
			target: "/divisions/7",
			setup: func(s *FakeService) {
				s.GetDivisionFunc = func(ctx context.Context, id int64) (*competitiondb.Division, error) {
					return nil, errors.New("connection reset by peer")
				}
			},
			wantStatus: http.StatusInternalServerError,
			verify: func(t *testing.T, rr *httptest.ResponseRecorder) {
				body := decodeError(t, rr)
				assert.Equal(t, "internal_error", body.Code)
				assert.NotContains(t, body.Message, "connection reset")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if tt.setup != nil {
				tt.setup(env.service)
			}
			rr := env.do(t, http.MethodGet, tt.target, "", "")
			assert.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			if tt.verify != nil {
				tt.verify(t, rr)
			}
		})
	}
}

func TestAdminRoutesRequireAdminToken(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(t, http.MethodPost, "/cycle/close", "", "")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/cycle/close", "", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/cycle/close", "", env.token(t, jwt.RolePlayer))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	other := jwt.NewService("other-secret", "quiz-league", time.Hour)
	forged, err := other.GenerateToken("admin-1", jwt.RoleAdmin, time.Hour)
	require.NoError(t, err)
	rr = env.do(t, http.MethodPost, "/cycle/close", "", forged)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr = env.do(t, http.MethodPost, "/cycle/close", "", env.token(t, jwt.RoleAdmin))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestCycleRoutes(t *testing.T) {
	tests := []struct {
		name        string
		target      string
		setup       func(*testEnv)
		wantStatus  int
		wantDay     string
		wantCloses  int
		wantOpens   int
		wantCycle   string
		wantEnqueue bool
	}{
		{
			name:       "close defaults to today in the league timezone",
			target:     "/cycle/close",
			wantStatus: http.StatusOK,
			wantDay:    "2026-10-18",
			wantCycle:  competitionservice.CycleClose,
		},
		{
			name:       "open with explicit date",
			target:     "/cycle/open?as_of=2026-03-21",
			wantStatus: http.StatusOK,
			wantDay:    "2026-03-21",
			wantCycle:  competitionservice.CycleOpen,
		},
		{
			name:       "bad date",
			target:     "/cycle/close?as_of=21/03/2026",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:        "async close is enqueued",
			target:      "/cycle/close?async=true&as_of=2026-10-18",
			wantStatus:  http.StatusAccepted,
			wantCloses:  1,
			wantEnqueue: true,
		},
		{
			name:        "async open is enqueued",
			target:      "/cycle/open?async=true",
			wantStatus:  http.StatusAccepted,
			wantOpens:   1,
			wantEnqueue: true,
		},
		{
			name:   "open conflict",
			target: "/cycle/open",
			setup: func(e *testEnv) {
				e.service.OpenCycleFunc = func(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error) {
					return nil, competitiondomain.ErrInvalidWeekTransition
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "close failure on a finalized division",
			target: "/cycle/close",
			setup: func(e *testEnv) {
				e.service.CloseCycleFunc = func(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error) {
					return nil, fmt.Errorf("division %d: %w", 4, competitionservice.ErrDivisionAlreadyFinalized)
				}
			},
			wantStatus: http.StatusConflict,
		},
		{
			name:   "infeasible split",
			target: "/cycle/open",
			setup: func(e *testEnv) {
				e.service.OpenCycleFunc = func(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error) {
					return nil, fmt.Errorf("league %d: %w", 2, competitiondomain.ErrInfeasibleSplit)
				}
			},
			wantStatus: http.StatusUnprocessableEntity,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			var gotDay string
			env.service.CloseCycleFunc = func(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error) {
				gotDay = today.Format(dateLayout)
				return &competitionservice.CycleReport{Cycle: competitionservice.CycleClose, Skipped: true}, nil
			}
			env.service.OpenCycleFunc = func(ctx context.Context, today time.Time) (*competitionservice.CycleReport, error) {
				gotDay = today.Format(dateLayout)
				return &competitionservice.CycleReport{Cycle: competitionservice.CycleOpen}, nil
			}
			if tt.setup != nil {
				tt.setup(env)
			}

			rr := env.do(t, http.MethodPost, tt.target, "", env.token(t, jwt.RoleAdmin))
			require.Equal(t, tt.wantStatus, rr.Code, rr.Body.String())
			assert.Len(t, env.scheduler.closes, tt.wantCloses)
			assert.Len(t, env.scheduler.opens, tt.wantOpens)

			if tt.wantCycle != "" {
				var report competitionservice.CycleReport
				require.NoError(t, json.NewDecoder(rr.Body).Decode(&report))
				assert.Equal(t, tt.wantCycle, report.Cycle)
				assert.Equal(t, tt.wantDay, gotDay)
			}
			if tt.wantEnqueue {
				assert.Empty(t, gotDay, "async requests must not run the cycle inline")
			}
		})
	}
}

func TestAsyncCycleWithoutQueue(t *testing.T) {
	env := newTestEnv(t)
	h := NewCompetitionHandlers(env.service, env.economy, nil, slog.New(slog.DiscardHandler), nil)
	r := chi.NewRouter()
	h.Register(r, env.tokens)
	env.router = r

	rr := env.do(t, http.MethodPost, "/cycle/close?async=true", "", env.token(t, jwt.RoleAdmin))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
}

func TestLeagueAdminRoutes(t *testing.T) {
	body := `{"name":"Gold","order":3,"promote_rate":"0.2","demote_rate":0.3,"promotion_minimum_score":10,` +
		`"demotion_penalty":50,"target_division_size":12,"min_division_size":8,"max_division_size":16}`

	t.Run("create", func(t *testing.T) {
		env := newTestEnv(t)
		var got *competitiondb.League
		env.service.CreateLeagueFunc = func(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error) {
			got = league
			league.ID = 3
			return league, nil
		}
		rr := env.do(t, http.MethodPost, "/leagues", body, env.token(t, jwt.RoleAdmin))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		require.NotNil(t, got)
		assert.Equal(t, "Gold", got.Name)
		assert.True(t, got.PromoteRate.Equal(decimal.RequireFromString("0.2")))
		assert.True(t, got.DemoteRate.Equal(decimal.RequireFromString("0.3")))
		assert.Equal(t, 16, got.MaxDivisionSize)
	})

	t.Run("create rejects unknown fields", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodPost, "/leagues", `{"name":"Gold","id":4}`, env.token(t, jwt.RoleAdmin))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("create invalid league", func(t *testing.T) {
		env := newTestEnv(t)
		env.service.CreateLeagueFunc = func(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error) {
			return nil, fmt.Errorf("%w: min above target", competitiondomain.ErrInvalidLeague)
		}
		rr := env.do(t, http.MethodPost, "/leagues", body, env.token(t, jwt.RoleAdmin))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, decodeError(t, rr).Message, "min above target")
	})

	t.Run("update uses the path id", func(t *testing.T) {
		env := newTestEnv(t)
		var gotID int64
		env.service.UpdateLeagueFunc = func(ctx context.Context, league *competitiondb.League) (*competitiondb.League, error) {
			gotID = league.ID
			return league, nil
		}
		rr := env.do(t, http.MethodPut, "/leagues/5", body, env.token(t, jwt.RoleAdmin))
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, int64(5), gotID)
	})

	t.Run("delete in use", func(t *testing.T) {
		env := newTestEnv(t)
		env.service.DeleteLeagueFunc = func(ctx context.Context, id int64) error {
			return fmt.Errorf("%w: 3 profiles", competitionservice.ErrLeagueInUse)
		}
		rr := env.do(t, http.MethodDelete, "/leagues/1", "", env.token(t, jwt.RoleAdmin))
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(t, http.MethodDelete, "/leagues/1", "", env.token(t, jwt.RoleAdmin))
		assert.Equal(t, http.StatusNoContent, rr.Code)
	})
}

func TestTransactionRoutes(t *testing.T) {
	userID := uuid.New()

	t.Run("record defaults the reason to admin", func(t *testing.T) {
		env := newTestEnv(t)
		var got economyservice.RecordTransactionRequest
		env.economy.RecordTransactionFunc = func(ctx context.Context, req economyservice.RecordTransactionRequest) (*economydb.DiamondTransaction, error) {
			got = req
			return &economydb.DiamondTransaction{ID: 11, UserID: req.UserID, Amount: req.Amount, BalanceAfter: 130}, nil
		}
		rr := env.do(t, http.MethodPost, "/users/"+userID.String()+"/transactions",
			`{"amount":30,"transaction_type":"Increment","description":"event prize"}`, env.token(t, jwt.RoleAdmin))
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		assert.Equal(t, userID, got.UserID)
		assert.Equal(t, economydomain.Increment, got.Type)
		assert.Equal(t, economydomain.ReasonAdmin, got.Reason)
		assert.Equal(t, 30, got.Amount)
	})

	t.Run("insufficient balance", func(t *testing.T) {
		env := newTestEnv(t)
		env.economy.RecordTransactionFunc = func(ctx context.Context, req economyservice.RecordTransactionRequest) (*economydb.DiamondTransaction, error) {
			return nil, economydomain.ErrInsufficientBalance
		}
		rr := env.do(t, http.MethodPost, "/users/"+userID.String()+"/transactions",
			`{"amount":500,"transaction_type":"Deduction","reason":"Purchase"}`, env.token(t, jwt.RoleAdmin))
		assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		env := newTestEnv(t)
		env.economy.RecordTransactionFunc = func(ctx context.Context, req economyservice.RecordTransactionRequest) (*economydb.DiamondTransaction, error) {
			return nil, economyservice.ErrProfileNotFound
		}
		rr := env.do(t, http.MethodPost, "/users/"+userID.String()+"/transactions",
			`{"amount":5,"transaction_type":"Increment"}`, env.token(t, jwt.RoleAdmin))
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("list", func(t *testing.T) {
		env := newTestEnv(t)
		env.economy.ListTransactionsFunc = func(ctx context.Context, id uuid.UUID, page pagination.Page) (pagination.Result[economydb.DiamondTransaction], error) {
			return pagination.NewResult(page, 1, []economydb.DiamondTransaction{{ID: 1, UserID: id}}), nil
		}
		rr := env.do(t, http.MethodGet, "/users/"+userID.String()+"/transactions?page_size=5", "", env.token(t, jwt.RoleAdmin))
		require.Equal(t, http.StatusOK, rr.Code)
		var res pagination.Result[economydb.DiamondTransaction]
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&res))
		assert.Equal(t, 5, res.PageSize)
		assert.Equal(t, userID, res.Results[0].UserID)
	})
}
