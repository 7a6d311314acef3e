package store

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/insights"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/google/uuid"
)

// MemoryStore keeps users and claims in-process. Used for local runs and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]models.User
	email  map[string]uuid.UUID
	claims map[uuid.UUID]models.Claim
	order  []uuid.UUID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:  make(map[uuid.UUID]models.User),
		email:  make(map[string]uuid.UUID),
		claims: make(map[uuid.UUID]models.Claim),
	}
}

func (m *MemoryStore) CreateUser(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := strings.ToLower(u.Email)
	if _, exists := m.email[key]; exists {
		return apperr.ErrConflict
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt
	m.users[u.ID] = *u
	m.email[key] = u.ID
	return nil
}

func (m *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[strings.ToLower(email)]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	u := m.users[id]
	return &u, nil
}

func (m *MemoryStore) GetUserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return &u, nil
}

func (m *MemoryStore) CreateClaim(_ context.Context, c *models.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if _, exists := m.claims[c.ID]; exists {
		return apperr.ErrConflict
	}
	m.claims[c.ID] = c.Clone()
	m.order = append(m.order, c.ID)
	return nil
}

func (m *MemoryStore) GetClaim(_ context.Context, id uuid.UUID) (*models.Claim, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	out := c.Clone()
	return &out, nil
}

// ListClaims returns claims in insertion order.
func (m *MemoryStore) ListClaims(_ context.Context) ([]models.Claim, error) {
	return m.list(func(models.Claim) bool { return true }), nil
}

func (m *MemoryStore) ListClaimsByOwner(_ context.Context, ownerID uuid.UUID) ([]models.Claim, error) {
	return m.list(func(c models.Claim) bool { return c.OwnerID == ownerID }), nil
}

func (m *MemoryStore) list(keep func(models.Claim) bool) []models.Claim {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]models.Claim, 0, len(m.order))
	for _, id := range m.order {
		if c, ok := m.claims[id]; ok && keep(c) {
			res = append(res, c.Clone())
		}
	}
	return res
}

func (m *MemoryStore) UpdateStatus(_ context.Context, id uuid.UUID, u StatusUpdate) (*models.Claim, error) {
	return m.mutate(id, func(c *models.Claim) {
		reviewer := u.ReviewedBy
		c.Status = u.Status
		c.ReviewedBy = &reviewer
		c.OfficerNotes = u.OfficerNotes
		c.UpdatedAt = u.At
	})
}

func (m *MemoryStore) AppendDocument(_ context.Context, id uuid.UUID, ref string, at time.Time) (*models.Claim, error) {
	return m.mutate(id, func(c *models.Claim) {
		c.Documents = append(c.Documents, ref)
		c.UpdatedAt = at
	})
}

func (m *MemoryStore) SetAnalysis(_ context.Context, id uuid.UUID, analysis string, at time.Time) (*models.Claim, error) {
	return m.mutate(id, func(c *models.Claim) {
		c.AIAnalysis = &analysis
		c.UpdatedAt = at
	})
}

func (m *MemoryStore) mutate(id uuid.UUID, fn func(c *models.Claim)) (*models.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.claims[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	c = c.Clone()
	fn(&c)
	m.claims[id] = c
	out := c.Clone()
	return &out, nil
}

func (m *MemoryStore) SummarizeByState(ctx context.Context) ([]models.RegionSummary, error) {
	claims, err := m.ListClaims(ctx)
	if err != nil {
		return nil, err
	}
	return insights.ByState(claims), nil
}
