package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/access"
	"github.com/fra-atlas/atlas-backend/internal/analysis"
	"github.com/fra-atlas/atlas-backend/internal/dto"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/fra-atlas/atlas-backend/internal/store"
	"github.com/fra-atlas/atlas-backend/internal/validation"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClaimService owns the claim lifecycle. Every operation authorizes the
// actor before touching the store.
type ClaimService struct {
	claims   store.ClaimStore
	pipeline *analysis.Pipeline
	now      func() time.Time
}

func NewClaimService(claims store.ClaimStore, pipeline *analysis.Pipeline) *ClaimService {
	return &ClaimService{
		claims:   claims,
		pipeline: pipeline,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Create files a new pending claim owned by actor. Any owner supplied in the
// request is ignored.
func (s *ClaimService) Create(ctx context.Context, actor *models.User, req *dto.CreateClaimRequest) (*models.Claim, error) {
	if err := access.Authorize(actor, access.ActionCreateClaim, nil); err != nil {
		return nil, err
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	if loc := req.Location; loc != nil {
		loc.Address = strings.TrimSpace(loc.Address)
		loc.State = strings.TrimSpace(loc.State)
		loc.District = strings.TrimSpace(loc.District)
		loc.Village = strings.TrimSpace(loc.Village)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.UserID != nil && *req.UserID != actor.ID {
		slog.Warn("ignoring client supplied claim owner", "user_id", actor.ID.String(), "requested_owner", req.UserID.String())
	}

	now := s.now()
	claim := &models.Claim{
		ID:               uuid.New(),
		OwnerID:          actor.ID,
		Title:            req.Title,
		Description:      req.Description,
		Location:         req.Location.Model(),
		Status:           models.StatusPending,
		Documents:        datatypes.JSONSlice[string]{},
		AreaHectares:     req.AreaHectares,
		ForestType:       req.ForestType,
		CommunityDetails: req.CommunityDetails,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.claims.CreateClaim(ctx, claim); err != nil {
		return nil, fmt.Errorf("failed to create claim: %w", err)
	}

	slog.Info("claim created", "claim_id", claim.ID.String(), "user_id", actor.ID.String())
	return claim, nil
}

// List returns every claim visible to actor.
func (s *ClaimService) List(ctx context.Context, actor *models.User) ([]models.Claim, error) {
	owner, err := access.ListFilter(actor)
	if err != nil {
		return nil, err
	}
	if owner != nil {
		return s.claims.ListClaimsByOwner(ctx, *owner)
	}
	return s.claims.ListClaims(ctx)
}

func (s *ClaimService) Get(ctx context.Context, actor *models.User, id uuid.UUID) (*models.Claim, error) {
	if actor == nil {
		return nil, access.Authorize(nil, access.ActionReadClaim, nil)
	}
	claim, err := s.claims.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionReadClaim, claim); err != nil {
		return nil, err
	}
	return claim, nil
}

// UpdateStatus moves a claim to the requested status. No transition order
// is enforced; any of the four statuses is accepted from any other.
func (s *ClaimService) UpdateStatus(ctx context.Context, actor *models.User, id uuid.UUID, req *dto.StatusUpdateRequest) (*models.Claim, error) {
	if err := access.Authorize(actor, access.ActionUpdateStatus, nil); err != nil {
		return nil, err
	}
	status, err := models.ParseClaimStatus(strings.TrimSpace(req.Status))
	if err != nil {
		return nil, err
	}

	updated, err := s.claims.UpdateStatus(ctx, id, store.StatusUpdate{
		Status:       status,
		ReviewedBy:   actor.ID,
		OfficerNotes: req.OfficerNotes,
		At:           s.now(),
	})
	if err != nil {
		return nil, err
	}

	slog.Info("claim status updated",
		"claim_id", id.String(),
		"user_id", actor.ID.String(),
		"status", string(status),
	)
	return updated, nil
}

// UploadDocument takes custody of doc for the claim and runs analysis. The
// upload succeeds once the document is stored, whatever the analysis does.
func (s *ClaimService) UploadDocument(ctx context.Context, actor *models.User, id uuid.UUID, doc analysis.Document) (*analysis.Outcome, error) {
	if actor == nil {
		return nil, access.Authorize(nil, access.ActionUploadDocument, nil)
	}
	claim, err := s.claims.GetClaim(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := access.Authorize(actor, access.ActionUploadDocument, claim); err != nil {
		return nil, err
	}

	out, err := s.pipeline.Process(ctx, claim, doc)
	if err != nil {
		return nil, err
	}

	slog.Info("claim document uploaded",
		"claim_id", id.String(),
		"user_id", actor.ID.String(),
		"analysis_degraded", out.Analysis.Degraded,
	)
	return out, nil
}
