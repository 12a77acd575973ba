package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	competitiondomain "github.com/Black-And-White-Club/quiz-league/app/modules/competition/domain"
	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	economydb "github.com/Black-And-White-Club/quiz-league/app/modules/economy/infrastructure/repositories"
	userdb "github.com/Black-And-White-Club/quiz-league/app/modules/user/infrastructure/repositories"
	"github.com/fatih/color"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// seedFile is the YAML layout accepted by "league seed".
type seedFile struct {
	Leagues []seedLeague `yaml:"leagues"`
}

type seedLeague struct {
	Name                  string          `yaml:"name"`
	Order                 int             `yaml:"order"`
	PromoteRate           decimal.Decimal `yaml:"promote_rate"`
	DemoteRate            decimal.Decimal `yaml:"demote_rate"`
	PromotionMinimumScore int             `yaml:"promotion_minimum_score"`
	DemotionPenalty       int             `yaml:"demotion_penalty"`
	TargetDivisionSize    int             `yaml:"target_division_size"`
	MinDivisionSize       int             `yaml:"min_division_size"`
	MaxDivisionSize       int             `yaml:"max_division_size"`
}

func (s seedLeague) toModel() competitiondb.League {
	return competitiondb.League{
		Name:                  s.Name,
		Order:                 s.Order,
		PromoteRate:           s.PromoteRate,
		DemoteRate:            s.DemoteRate,
		PromotionMinimumScore: s.PromotionMinimumScore,
		DemotionPenalty:       s.DemotionPenalty,
		TargetDivisionSize:    s.TargetDivisionSize,
		MinDivisionSize:       s.MinDivisionSize,
		MaxDivisionSize:       s.MaxDivisionSize,
	}
}

func readSeedFile(r io.Reader) ([]competitiondb.League, error) {
	var f seedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if len(f.Leagues) == 0 {
		return nil, fmt.Errorf("seed file has no leagues")
	}
	out := make([]competitiondb.League, 0, len(f.Leagues))
	for _, l := range f.Leagues {
		out = append(out, l.toModel())
	}
	return out, nil
}

// planSeed splits desired leagues into creates and updates, matching existing
// rows by name.
func planSeed(existing, desired []competitiondb.League) (creates, updates []competitiondb.League) {
	byName := make(map[string]int64, len(existing))
	for _, l := range existing {
		byName[l.Name] = l.ID
	}
	for _, l := range desired {
		if id, ok := byName[l.Name]; ok {
			l.ID = id
			updates = append(updates, l)
			continue
		}
		creates = append(creates, l)
	}
	return creates, updates
}

func newLeagueCommand() *cli.Command {
	return &cli.Command{
		Name:  "league",
		Usage: "inspect and seed the league ladder",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "print the ladder, lowest league first",
				Action: withEnv(listLeagues),
			},
			{
				Name:  "seed",
				Usage: "create or update leagues from a YAML file",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Required: true, Usage: "seed file path"},
					&cli.BoolFlag{Name: "dry-run", Usage: "print the plan without writing"},
				},
				Action: withEnv(seedLeagues),
			},
		},
	}
}

func newLeagueService(e *env) (*competitionservice.CompetitionService, error) {
	calendar, err := competitiondomain.CalendarByName(e.cfg.Competition.Calendar)
	if err != nil {
		return nil, err
	}
	// League CRUD publishes nothing, so no event bus is needed.
	return competitionservice.NewCompetitionService(
		competitiondb.NewRepository(e.db),
		userdb.NewRepository(e.db),
		economydb.NewRepository(e.db),
		nil,
		calendar,
		e.obs.Logger,
		e.obs.Metrics,
		e.obs.Tracer,
		e.db,
	), nil
}

func listLeagues(c *cli.Context, e *env) error {
	service, err := newLeagueService(e)
	if err != nil {
		return err
	}
	leagues, err := service.ListLeagues(c.Context)
	if err != nil {
		return err
	}
	printLeagues(os.Stdout, leagues)
	return nil
}

func printLeagues(out io.Writer, leagues []competitiondb.League) {
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ORDER\tNAME\tPROMOTE\tDEMOTE\tMIN SCORE\tPENALTY\tSIZE (MIN/TARGET/MAX)")
	for _, l := range leagues {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%d\t%d\t%d/%d/%d\n",
			l.Order, l.Name, l.PromoteRate.StringFixed(2), l.DemoteRate.StringFixed(2),
			l.PromotionMinimumScore, l.DemotionPenalty,
			l.MinDivisionSize, l.TargetDivisionSize, l.MaxDivisionSize)
	}
	_ = tw.Flush()
}

func seedLeagues(c *cli.Context, e *env) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	desired, err := readSeedFile(f)
	if err != nil {
		return err
	}

	service, err := newLeagueService(e)
	if err != nil {
		return err
	}
	existing, err := service.ListLeagues(c.Context)
	if err != nil {
		return err
	}

	creates, updates := planSeed(existing, desired)
	if c.Bool("dry-run") {
		for _, l := range creates {
			color.Green("+ %s (order %d)", l.Name, l.Order)
		}
		for _, l := range updates {
			color.Yellow("~ %s (order %d)", l.Name, l.Order)
		}
		return nil
	}

	for i := range updates {
		if _, err := service.UpdateLeague(c.Context, &updates[i]); err != nil {
			return fmt.Errorf("failed to update league %q: %w", updates[i].Name, err)
		}
		color.Yellow("updated %s", updates[i].Name)
	}
	for i := range creates {
		if _, err := service.CreateLeague(c.Context, &creates[i]); err != nil {
			return fmt.Errorf("failed to create league %q: %w", creates[i].Name, err)
		}
		color.Green("created %s", creates[i].Name)
	}
	return nil
}
