package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/fra-atlas/atlas-backend/internal/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormStore implements UserStore and ClaimStore on Postgres.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateUser(ctx context.Context, u *models.User) error {
	if err := s.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperr.ErrConflict
		}
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (s *GormStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("LOWER(email) = LOWER(?)", email).First(&user).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &user, nil
}

func (s *GormStore) CreateClaim(ctx context.Context, c *models.Claim) error {
	if c.Documents == nil {
		c.Documents = []string{}
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("create claim: %w", err)
	}
	return nil
}

func (s *GormStore) GetClaim(ctx context.Context, id uuid.UUID) (*models.Claim, error) {
	var claim models.Claim
	if err := s.db.WithContext(ctx).First(&claim, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &claim, nil
}

func (s *GormStore) ListClaims(ctx context.Context) ([]models.Claim, error) {
	claims := make([]models.Claim, 0)
	if err := s.db.WithContext(ctx).Order("created_at ASC").Find(&claims).Error; err != nil {
		return nil, fmt.Errorf("list claims: %w", err)
	}
	return claims, nil
}

func (s *GormStore) ListClaimsByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Claim, error) {
	claims := make([]models.Claim, 0)
	err := s.db.WithContext(ctx).Scopes(tenant.ForOwner(ownerID)).
		Order("created_at ASC").Find(&claims).Error
	if err != nil {
		return nil, fmt.Errorf("list claims by owner: %w", err)
	}
	return claims, nil
}

// UpdateStatus writes the transition as one UPDATE; concurrent writers race
// and the last one wins.
func (s *GormStore) UpdateStatus(ctx context.Context, id uuid.UUID, u StatusUpdate) (*models.Claim, error) {
	return s.update(ctx, id, map[string]interface{}{
		"status":        u.Status,
		"reviewed_by":   u.ReviewedBy,
		"officer_notes": u.OfficerNotes,
		"updated_at":    u.At,
	})
}

func (s *GormStore) AppendDocument(ctx context.Context, id uuid.UUID, ref string, at time.Time) (*models.Claim, error) {
	doc, err := json.Marshal([]string{ref})
	if err != nil {
		return nil, err
	}
	return s.update(ctx, id, map[string]interface{}{
		"documents":  gorm.Expr("documents || ?::jsonb", string(doc)),
		"updated_at": at,
	})
}

func (s *GormStore) SetAnalysis(ctx context.Context, id uuid.UUID, analysis string, at time.Time) (*models.Claim, error) {
	return s.update(ctx, id, map[string]interface{}{
		"ai_analysis": analysis,
		"updated_at":  at,
	})
}

func (s *GormStore) update(ctx context.Context, id uuid.UUID, fields map[string]interface{}) (*models.Claim, error) {
	result := s.db.WithContext(ctx).Model(&models.Claim{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return nil, fmt.Errorf("update claim: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperr.ErrNotFound
	}
	return s.GetClaim(ctx, id)
}

type stateRow struct {
	State       *string
	TotalClaims int64
	Pending     int64
	UnderReview int64
	Approved    int64
	Rejected    int64
}

// SummarizeByState groups claims by location_state. Blank states form their
// own NULL bucket, ordered last.
func (s *GormStore) SummarizeByState(ctx context.Context) ([]models.RegionSummary, error) {
	var rows []stateRow
	err := s.db.WithContext(ctx).Model(&models.Claim{}).
		Select(`NULLIF(location_state, '') AS state,
			COUNT(*) AS total_claims,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS pending,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS under_review,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS approved,
			SUM(CASE WHEN status = ? THEN 1 ELSE 0 END) AS rejected`,
			models.StatusPending, models.StatusUnderReview, models.StatusApproved, models.StatusRejected).
		Group("NULLIF(location_state, '')").
		Order("state ASC NULLS LAST").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("summarize by state: %w", err)
	}

	res := make([]models.RegionSummary, 0, len(rows))
	for _, r := range rows {
		res = append(res, models.RegionSummary{
			State:       r.State,
			TotalClaims: r.TotalClaims,
			Pending:     r.Pending,
			UnderReview: r.UnderReview,
			Approved:    r.Approved,
			Rejected:    r.Rejected,
		})
	}
	return res, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.ErrNotFound
	}
	return err
}
