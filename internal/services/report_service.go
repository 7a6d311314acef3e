package services

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/access"
	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/fra-atlas/atlas-backend/internal/store"
	"github.com/xuri/excelize/v2"
)

const (
	ReportTypeRegionalSummary = "regional_summary"
	summarySheet              = "Regional Summary"
	unspecifiedState          = "Unspecified"
)

type ReportService struct {
	claims store.ClaimStore
	now    func() time.Time
}

func NewReportService(claims store.ClaimStore) *ReportService {
	return &ReportService{
		claims: claims,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Summary groups every claim by state.
func (s *ReportService) Summary(ctx context.Context, actor *models.User) (*dto.SummaryReport, error) {
	if err := access.Authorize(actor, access.ActionViewReports, nil); err != nil {
		return nil, err
	}
	rows, err := s.claims.SummarizeByState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to summarize claims: %w", err)
	}
	if rows == nil {
		rows = []models.RegionSummary{}
	}
	return &dto.SummaryReport{
		ReportType:  ReportTypeRegionalSummary,
		GeneratedAt: s.now(),
		Data:        rows,
	}, nil
}

// ExportSummary renders the regional summary as an XLSX workbook.
func (s *ReportService) ExportSummary(ctx context.Context, actor *models.User) ([]byte, error) {
	report, err := s.Summary(ctx, actor)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	header := []any{"State", "Total Claims", "Pending", "Under Review", "Approved", "Rejected"}
	if err := f.SetSheetRow(summarySheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	var total models.RegionSummary
	for i, r := range report.Data {
		state := unspecifiedState
		if r.State != nil {
			state = *r.State
		}
		row := []any{state, r.TotalClaims, r.Pending, r.UnderReview, r.Approved, r.Rejected}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row: %w", err)
		}
		total.TotalClaims += r.TotalClaims
		total.Pending += r.Pending
		total.UnderReview += r.UnderReview
		total.Approved += r.Approved
		total.Rejected += r.Rejected
	}

	footer := []any{"Total", total.TotalClaims, total.Pending, total.UnderReview, total.Approved, total.Rejected}
	cell, _ := excelize.CoordinatesToCellName(1, len(report.Data)+2)
	if err := f.SetSheetRow(summarySheet, cell, &footer); err != nil {
		return nil, fmt.Errorf("failed to write totals: %w", err)
	}
	if err := f.SetCellValue(summarySheet, "H1", "Generated At"); err != nil {
		return nil, fmt.Errorf("failed to write timestamp: %w", err)
	}
	if err := f.SetCellValue(summarySheet, "I1", report.GeneratedAt.Format(time.RFC3339)); err != nil {
		return nil, fmt.Errorf("failed to write timestamp: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}
