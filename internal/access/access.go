// Package access decides which role may perform which operation on which claim.
//
// Every decision goes through a single {role x action} table. Handlers never
// compare role strings themselves.
package access

import (
	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/google/uuid"
)

type Action int

const (
	ActionListClaims Action = iota
	ActionReadClaim
	ActionCreateClaim
	ActionUpdateStatus
	ActionUploadDocument
	ActionViewDashboard
	ActionViewReports
)

// Actions lists every action covered by the permission table.
var Actions = []Action{
	ActionListClaims,
	ActionReadClaim,
	ActionCreateClaim,
	ActionUpdateStatus,
	ActionUploadDocument,
	ActionViewDashboard,
	ActionViewReports,
}

func (a Action) String() string {
	switch a {
	case ActionListClaims:
		return "list_claims"
	case ActionReadClaim:
		return "read_claim"
	case ActionCreateClaim:
		return "create_claim"
	case ActionUpdateStatus:
		return "update_status"
	case ActionUploadDocument:
		return "upload_document"
	case ActionViewDashboard:
		return "view_dashboard"
	case ActionViewReports:
		return "view_reports"
	}
	return "unknown"
}

// Scope is how much of the corpus a role may touch for an action.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeOwn
	ScopeAll
)

var permissions = map[models.Role]map[Action]Scope{
	models.RoleCommunityUser: {
		ActionListClaims:     ScopeOwn,
		ActionReadClaim:      ScopeOwn,
		ActionCreateClaim:    ScopeAll,
		ActionUpdateStatus:   ScopeNone,
		ActionUploadDocument: ScopeOwn,
		ActionViewDashboard:  ScopeAll,
		ActionViewReports:    ScopeAll,
	},
	models.RoleNGO: {
		ActionListClaims:     ScopeAll,
		ActionReadClaim:      ScopeAll,
		ActionCreateClaim:    ScopeAll,
		ActionUpdateStatus:   ScopeNone,
		ActionUploadDocument: ScopeAll,
		ActionViewDashboard:  ScopeAll,
		ActionViewReports:    ScopeAll,
	},
	models.RoleDistrictOfficer: {
		ActionListClaims:     ScopeAll,
		ActionReadClaim:      ScopeAll,
		ActionCreateClaim:    ScopeAll,
		ActionUpdateStatus:   ScopeAll,
		ActionUploadDocument: ScopeAll,
		ActionViewDashboard:  ScopeAll,
		ActionViewReports:    ScopeAll,
	},
	models.RoleMinistry: {
		ActionListClaims:     ScopeAll,
		ActionReadClaim:      ScopeAll,
		ActionCreateClaim:    ScopeAll,
		ActionUpdateStatus:   ScopeAll,
		ActionUploadDocument: ScopeAll,
		ActionViewDashboard:  ScopeAll,
		ActionViewReports:    ScopeAll,
	},
}

var denyReasons = map[Action]string{
	ActionUpdateStatus: apperr.ReasonInsufficientPermissions,
}

// ScopeFor looks up the table. Unknown roles get ScopeNone.
func ScopeFor(role models.Role, action Action) Scope {
	return permissions[role][action]
}

// Authorize returns nil when actor may perform action on claim.
// claim is nil for actions that do not target a single record (list, create);
// callers of ScopeOwn list actions must then apply ListFilter.
func Authorize(actor *models.User, action Action, claim *models.Claim) error {
	if actor == nil {
		return apperr.ErrAuthenticationFailed
	}

	switch ScopeFor(actor.Role, action) {
	case ScopeAll:
		return nil
	case ScopeOwn:
		if claim == nil || claim.OwnerID == actor.ID {
			return nil
		}
	}
	return apperr.Denied(denyReason(action))
}

// ListFilter returns the owner id a claim listing must be restricted to,
// or nil when the actor may see the whole corpus.
func ListFilter(actor *models.User) (*uuid.UUID, error) {
	if err := Authorize(actor, ActionListClaims, nil); err != nil {
		return nil, err
	}
	if ScopeFor(actor.Role, ActionListClaims) == ScopeOwn {
		id := actor.ID
		return &id, nil
	}
	return nil, nil
}

func denyReason(action Action) string {
	if r, ok := denyReasons[action]; ok {
		return r
	}
	return apperr.ReasonAccessDenied
}
