// Package store persists users and claims.
package store

import (
	"context"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/google/uuid"
)

// UserStore persists registered identities.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// ClaimStore persists claims. Every mutation touches exactly one record.
// Lookups of absent ids return apperr.ErrNotFound.
type ClaimStore interface {
	CreateClaim(ctx context.Context, c *models.Claim) error
	GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error)
	ListClaims(ctx context.Context) ([]models.Claim, error)
	ListClaimsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Claim, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, u StatusUpdate) (*models.Claim, error)
	AppendDocument(ctx context.Context, id uuid.UUID, ref string, at time.Time) (*models.Claim, error)
	SetAnalysis(ctx context.Context, id uuid.UUID, analysis string, at time.Time) (*models.Claim, error)
	SummarizeByState(ctx context.Context) ([]models.RegionSummary, error)
}

// StatusUpdate is the full set of fields a review transition writes.
type StatusUpdate struct {
	Status       models.ClaimStatus
	ReviewedBy   uuid.UUID
	OfficerNotes *string
	At           time.Time
}
