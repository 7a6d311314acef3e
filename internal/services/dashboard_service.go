package services

import (
	"context"
	"fmt"

	"github.com/fra-atlas/atlas-backend/internal/access"
	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/fra-atlas/atlas-backend/internal/insights"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/fra-atlas/atlas-backend/internal/store"
)

// DashboardService aggregates over the whole claim corpus.
type DashboardService struct {
	claims store.ClaimStore
	engine *insights.Engine
}

func NewDashboardService(claims store.ClaimStore, engine *insights.Engine) *DashboardService {
	return &DashboardService{claims: claims, engine: engine}
}

// Stats returns the status counters plus the AI narrative. A failing
// narrative degrades the payload but never the counters.
func (s *DashboardService) Stats(ctx context.Context, actor *models.User) (*dto.DashboardResponse, error) {
	if err := access.Authorize(actor, access.ActionViewDashboard, nil); err != nil {
		return nil, err
	}
	claims, err := s.claims.ListClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	narrative := s.engine.Narrative(ctx, claims)
	return &dto.DashboardResponse{
		Statistics:  insights.Summarize(claims),
		AIInsights:  narrative.AIInsights,
		Degraded:    narrative.Degraded,
		LastUpdated: narrative.GeneratedAt,
	}, nil
}

func (s *DashboardService) MapData(ctx context.Context, actor *models.User) ([]dto.MapPoint, error) {
	if err := access.Authorize(actor, access.ActionViewDashboard, nil); err != nil {
		return nil, err
	}
	claims, err := s.claims.ListClaims(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load claims: %w", err)
	}

	points := make([]dto.MapPoint, 0, len(claims))
	for _, c := range claims {
		points = append(points, dto.MapPoint{
			ID:        c.ID,
			Title:     c.Title,
			Status:    c.Status,
			Location:  c.Location,
			CreatedAt: c.CreatedAt,
		})
	}
	return points, nil
}
