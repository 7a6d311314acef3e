package dto

import (
	"time"

	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/google/uuid"
)

// LocationInput uses pointers so a zero coordinate is distinguishable from a
// missing one.
type LocationInput struct {
	Lat      *float64 `json:"lat" validate:"required,latitude"`
	Lng      *float64 `json:"lng" validate:"required,longitude"`
	Address  string   `json:"address" validate:"required,max=500"`
	State    string   `json:"state" validate:"required,max=100"`
	District string   `json:"district" validate:"required,max=100"`
	Village  string   `json:"village" validate:"required,max=100"`
}

func (l LocationInput) Model() models.Location {
	var loc models.Location
	if l.Lat != nil {
		loc.Lat = *l.Lat
	}
	if l.Lng != nil {
		loc.Lng = *l.Lng
	}
	loc.Address = l.Address
	loc.State = l.State
	loc.District = l.District
	loc.Village = l.Village
	return loc
}

// CreateClaimRequest accepts a user_id field for compatibility with older
// clients. It is ignored; the owner is always the caller.
type CreateClaimRequest struct {
	Title            string         `json:"title" validate:"required,max=255"`
	Description      string         `json:"description" validate:"required"`
	Location         *LocationInput `json:"location" validate:"required"`
	AreaHectares     *float64       `json:"area_hectares" validate:"omitempty,gte=0"`
	ForestType       *string        `json:"forest_type" validate:"omitempty,max=100"`
	CommunityDetails *string        `json:"community_details"`
	UserID           *uuid.UUID     `json:"user_id,omitempty"`
}

type StatusUpdateRequest struct {
	Status       string  `json:"status" validate:"required"`
	OfficerNotes *string `json:"officer_notes"`
}

type UploadResponse struct {
	Message          string `json:"message"`
	FilePath         string `json:"file_path"`
	AIAnalysis       string `json:"ai_analysis"`
	AnalysisDegraded bool   `json:"analysis_degraded"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type MapPoint struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Status    models.ClaimStatus `json:"status"`
	Location  models.Location    `json:"location"`
	CreatedAt time.Time          `json:"created_at"`
}
