package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/Black-And-White-Club/quiz-league/app"
	"github.com/Black-And-White-Club/quiz-league/app/modules/competition"
	competitionservice "github.com/Black-And-White-Club/quiz-league/app/modules/competition/application"
	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
)

func newCycleCommand() *cli.Command {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:  "as-of",
			Usage: `run as if today were this date ("2026-10-18", "yesterday", "last friday")`,
		},
		&cli.BoolFlag{
			Name:  "enqueue",
			Usage: "hand the run to the job queue instead of running it here",
		},
	}

	return &cli.Command{
		Name:  "cycle",
		Usage: "run the weekly competition cycle by hand",
		Subcommands: []*cli.Command{
			{
				Name:   competitionservice.CycleClose,
				Usage:  "finalize the active week that has ended",
				Flags:  flags,
				Action: withEnv(runCycle(competitionservice.CycleClose)),
			},
			{
				Name:   competitionservice.CycleOpen,
				Usage:  "open the next week and build its divisions",
				Flags:  flags,
				Action: withEnv(runCycle(competitionservice.CycleOpen)),
			},
		},
	}
}

func runCycle(cycle string) func(c *cli.Context, e *env) error {
	return func(c *cli.Context, e *env) error {
		ctx := c.Context

		location, err := e.cfg.Competition.Location()
		if err != nil {
			return err
		}
		asOf, err := parseAsOf(c.String("as-of"), time.Now(), location)
		if err != nil {
			return err
		}

		bus, err := app.NewEventBus(e.cfg, e.obs)
		if err != nil {
			return err
		}
		defer bus.Close()

		module, err := competition.NewCompetitionModule(ctx, e.cfg, e.obs, bus, e.db, nil, nil)
		if err != nil {
			return err
		}

		if c.Bool("enqueue") {
			if module.Queue == nil {
				return fmt.Errorf("no job queue configured")
			}
			if cycle == competitionservice.CycleClose {
				err = module.Queue.EnqueueCloseCycle(ctx, asOf)
			} else {
				err = module.Queue.EnqueueOpenCycle(ctx, asOf)
			}
			if err != nil {
				return err
			}
			color.Green("Enqueued %s cycle as of %s", cycle, asOf.Format(dateLayout))
			return nil
		}

		var report *competitionservice.CycleReport
		if cycle == competitionservice.CycleClose {
			report, err = module.Service.CloseCycle(ctx, asOf)
		} else {
			report, err = module.Service.OpenCycle(ctx, asOf)
		}
		if err != nil {
			return err
		}
		printReport(os.Stdout, report, asOf)
		return nil
	}
}

func printReport(out io.Writer, report *competitionservice.CycleReport, asOf time.Time) {
	if report.Skipped {
		color.New(color.FgYellow).Fprintf(out, "%s cycle skipped as of %s\n", report.Cycle, asOf.Format(dateLayout))
		if report.OpenPending {
			color.New(color.FgRed).Fprintln(out, "latest week is passed with no successor, run `league cycle open`")
		}
		return
	}

	color.New(color.FgGreen, color.Bold).Fprintf(out, "%s cycle done as of %s\n", report.Cycle, asOf.Format(dateLayout))
	if report.Week != nil {
		fmt.Fprintf(out, "week %d/%d  %s .. %s\n",
			report.Week.WeekNumber, report.Week.Year,
			report.Week.StartDate.Format(dateLayout), report.Week.EndDate.Format(dateLayout))
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "LEAGUE\tDIVISIONS\tMEMBERS\tPROMOTED\tDEMOTED\tSTAYED")
	for _, l := range report.Leagues {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\n", l.Name, l.Divisions, l.Members, l.Promoted, l.Demoted, l.Stayed)
	}
	fmt.Fprintf(tw, "total\t%d\t%d\t%d\t%d\t%d\n",
		report.Divisions, report.Members, report.Promoted, report.Demoted, report.Stayed)
	_ = tw.Flush()
}
