package dto

import (
	"time"

	"github.com/fra-atlas/atlas-backend/internal/models"
)

type DashboardResponse struct {
	Statistics  models.Statistics `json:"statistics"`
	AIInsights  string            `json:"ai_insights"`
	Degraded    bool              `json:"insights_degraded,omitempty"`
	LastUpdated time.Time         `json:"last_updated"`
}

type SummaryReport struct {
	ReportType  string                 `json:"report_type"`
	GeneratedAt time.Time              `json:"generated_at"`
	Data        []models.RegionSummary `json:"data"`
}
