package models

import (
	"time"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ClaimStatus is the review state of a forest-rights claim.
type ClaimStatus string

const (
	StatusPending     ClaimStatus = "pending"
	StatusUnderReview ClaimStatus = "under_review"
	StatusApproved    ClaimStatus = "approved"
	StatusRejected    ClaimStatus = "rejected"
)

var ClaimStatuses = []ClaimStatus{StatusPending, StatusUnderReview, StatusApproved, StatusRejected}

// ParseClaimStatus maps a wire value onto a ClaimStatus.
func ParseClaimStatus(s string) (ClaimStatus, error) {
	for _, st := range ClaimStatuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", apperr.Validation("unknown claim status %q", s)
}

// Location is stored inline on the claim; reporting groups by State.
type Location struct {
	Lat      float64 `gorm:"not null" json:"lat"`
	Lng      float64 `gorm:"not null" json:"lng"`
	Address  string  `gorm:"size:500;not null" json:"address"`
	State    string  `gorm:"size:100;not null;index" json:"state"`
	District string  `gorm:"size:100;not null" json:"district"`
	Village  string  `gorm:"size:100;not null" json:"village"`
}

// Claim is a forest-rights assertion. OwnerID is set once at creation,
// Documents only grows and Status only moves through ClaimService.
type Claim struct {
	ID               uuid.UUID                   `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerID          uuid.UUID                   `gorm:"type:uuid;not null;index" json:"user_id"`
	Title            string                      `gorm:"size:255;not null" json:"title"`
	Description      string                      `gorm:"type:text;not null" json:"description"`
	Location         Location                    `gorm:"embedded;embeddedPrefix:location_" json:"location"`
	Status           ClaimStatus                 `gorm:"size:20;not null;default:'pending';index" json:"status"`
	Documents        datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'" json:"documents"`
	AIAnalysis       *string                     `gorm:"type:text" json:"ai_analysis"`
	AreaHectares     *float64                    `json:"area_hectares,omitempty"`
	ForestType       *string                     `gorm:"size:100" json:"forest_type,omitempty"`
	CommunityDetails *string                     `gorm:"type:text" json:"community_details,omitempty"`
	ReviewedBy       *uuid.UUID                  `gorm:"type:uuid" json:"reviewed_by,omitempty"`
	OfficerNotes     *string                     `gorm:"type:text" json:"officer_notes,omitempty"`
	CreatedAt        time.Time                   `json:"created_at"`
	UpdatedAt        time.Time                   `json:"updated_at"`
}

// Clone returns a copy that shares no slices or pointers with c.
func (c Claim) Clone() Claim {
	out := c
	out.Documents = append(datatypes.JSONSlice[string]{}, c.Documents...)
	out.AIAnalysis = clonePtr(c.AIAnalysis)
	out.AreaHectares = clonePtr(c.AreaHectares)
	out.ForestType = clonePtr(c.ForestType)
	out.CommunityDetails = clonePtr(c.CommunityDetails)
	out.ReviewedBy = clonePtr(c.ReviewedBy)
	out.OfficerNotes = clonePtr(c.OfficerNotes)
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
