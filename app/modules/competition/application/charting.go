package competitionservice

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("fafafa")
	chartText       = drawing.ColorFromHex("212121")
	statusColors    = map[string]drawing.Color{
		"promoted": drawing.ColorFromHex("2e7d32"),
		"demoted":  drawing.ColorFromHex("c62828"),
		"stayed":   drawing.ColorFromHex("607d8b"),
	}
	pendingColor = drawing.ColorFromHex("1565c0")
)

// DivisionChart renders the division's weekly scores as a PNG bar chart,
// one bar per member colored by outcome.
func (s *CompetitionService) DivisionChart(ctx context.Context, divisionID int64) ([]byte, error) {
	result, err := withTelemetry(s, ctx, "DivisionChart", strconv.FormatInt(divisionID, 10), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		view, err := s.divisionStandings(ctx, divisionID)
		if err != nil || view.IsFailure() {
			return results.OperationResult[[]byte, error]{Failure: view.Failure}, err
		}
		png, err := GenerateStandingsChart((*view.Success).title(), (*view.Success).Memberships)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, fmt.Errorf("failed to render chart: %w", err)
		}
		return results.SuccessResult[[]byte, error](png), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// GenerateStandingsChart produces a PNG bar chart of memberships already
// ordered by weekly score.
func GenerateStandingsChart(title string, memberships []competitiondb.DivisionMembership) ([]byte, error) {
	top := 0
	for _, m := range memberships {
		top = max(top, m.WeeklyScore)
	}
	if top == 0 {
		return renderNoDataPlaceholder("No scores yet")
	}

	bars := make([]chart.Value, len(memberships))
	for i, m := range memberships {
		color := pendingColor
		label := strconv.Itoa(i + 1)
		if m.PromotionStatus != nil {
			color = statusColors[*m.PromotionStatus]
		}
		if m.RankInDivision != nil {
			label = strconv.Itoa(*m.RankInDivision)
		}
		bars[i] = chart.Value{
			Value: float64(m.WeeklyScore),
			Label: "#" + label,
			Style: chart.Style{FillColor: color, StrokeColor: color},
		}
	}

	graph := chart.BarChart{
		Title:      title,
		TitleStyle: chart.Style{FontColor: chartText},
		Width:      max(400, 60*len(bars)),
		Height:     400,
		BarWidth:   40,
		Background: chart.Style{
			FillColor: chartBackground,
			Padding:   chart.Box{Top: 40},
		},
		Canvas: chart.Style{FillColor: chartBackground},
		XAxis:  chart.Style{FontColor: chartText},
		YAxis: chart.YAxis{
			Style: chart.Style{FontColor: chartText},
			Range: &chart.ContinuousRange{Min: 0, Max: float64(top)},
		},
		Bars: bars,
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}

func renderNoDataPlaceholder(msg string) ([]byte, error) {
	graph := chart.Chart{
		Width:      400,
		Height:     200,
		Background: chart.Style{FillColor: chartBackground},
		Canvas:     chart.Style{FillColor: chartBackground},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, _ chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
