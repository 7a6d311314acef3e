package models

import (
	"time"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/google/uuid"
)

// Role determines claim visibility and mutation rights.
type Role string

const (
	RoleCommunityUser   Role = "Community User"
	RoleNGO             Role = "NGO"
	RoleDistrictOfficer Role = "District Officer"
	RoleMinistry        Role = "Ministry"
)

// Roles lists every role the system knows about.
var Roles = []Role{RoleCommunityUser, RoleNGO, RoleDistrictOfficer, RoleMinistry}

// ParseRole maps a wire value onto a Role.
func ParseRole(s string) (Role, error) {
	for _, r := range Roles {
		if string(r) == s {
			return r, nil
		}
	}
	return "", apperr.Validation("unknown role %q", s)
}

func (r Role) Valid() bool {
	_, err := ParseRole(string(r))
	return err == nil
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	FullName  string    `gorm:"not null;size:255" json:"full_name"`
	Role      Role      `gorm:"size:32;not null;index" json:"role"`
	Phone     *string   `gorm:"size:32" json:"phone,omitempty"`
	Address   *string   `gorm:"size:500" json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
