package competitionservice

import (
	"context"
	"fmt"
	"strconv"

	competitiondb "github.com/Black-And-White-Club/quiz-league/app/modules/competition/infrastructure/repositories"
	"github.com/Black-And-White-Club/quiz-league/pkg/results"
	"github.com/xuri/excelize/v2"
)

const standingsSheet = "Standings"

var standingsHeader = []any{"Rank", "User ID", "Weekly Score", "Status"}

// ExportDivision writes the division's standings to an XLSX workbook.
func (s *CompetitionService) ExportDivision(ctx context.Context, divisionID int64) ([]byte, error) {
	result, err := withTelemetry(s, ctx, "ExportDivision", strconv.FormatInt(divisionID, 10), func(ctx context.Context) (results.OperationResult[[]byte, error], error) {
		view, err := s.divisionStandings(ctx, divisionID)
		if err != nil || view.IsFailure() {
			return results.OperationResult[[]byte, error]{Failure: view.Failure}, err
		}
		data, err := BuildStandingsWorkbook((*view.Success).title(), (*view.Success).Memberships)
		if err != nil {
			return results.OperationResult[[]byte, error]{}, err
		}
		return results.SuccessResult[[]byte, error](data), nil
	})
	if err != nil {
		return nil, err
	}
	if result.IsFailure() {
		return nil, *result.Failure
	}
	return *result.Success, nil
}

// BuildStandingsWorkbook lays out one row per membership under a title row and
// a header row. Unranked memberships have empty rank and status cells.
func BuildStandingsWorkbook(title string, memberships []competitiondb.DivisionMembership) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", standingsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetCellValue(standingsSheet, "A1", title); err != nil {
		return nil, fmt.Errorf("failed to write title: %w", err)
	}
	if err := f.SetSheetRow(standingsSheet, "A2", &standingsHeader); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, m := range memberships {
		row := []any{"", m.UserID.String(), m.WeeklyScore, ""}
		if m.RankInDivision != nil {
			row[0] = *m.RankInDivision
		}
		if m.PromotionStatus != nil {
			row[3] = *m.PromotionStatus
		}
		cell, err := excelize.CoordinatesToCellName(1, i+3)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(standingsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
