package access

import (
	"errors"
	"testing"

	"github.com/fra-atlas/atlas-backend/internal/apperr"
	"github.com/fra-atlas/atlas-backend/internal/models"
	"github.com/google/uuid"
)

func newUser(role models.Role) *models.User {
	return &models.User{ID: uuid.New(), Role: role}
}

func TestPermissionTableIsExhaustive(t *testing.T) {
	for _, role := range models.Roles {
		row, ok := permissions[role]
		if !ok {
			t.Fatalf("role %q missing from permission table", role)
		}
		for _, action := range Actions {
			if _, ok := row[action]; !ok {
				t.Fatalf("role %q has no entry for %s", role, action)
			}
		}
	}
}

func TestAuthorizeNilActorIsAuthenticationFailure(t *testing.T) {
	for _, action := range Actions {
		err := Authorize(nil, action, nil)
		if !errors.Is(err, apperr.ErrAuthenticationFailed) {
			t.Fatalf("%s: expected authentication failure, got %v", action, err)
		}
		if errors.Is(err, apperr.ErrAuthorizationDenied) {
			t.Fatalf("%s: unauthenticated actor must not be reported as denied", action)
		}
	}
}

func TestAuthorizeReadClaim(t *testing.T) {
	owner := newUser(models.RoleCommunityUser)
	other := newUser(models.RoleCommunityUser)
	claim := &models.Claim{ID: uuid.New(), OwnerID: owner.ID}

	if err := Authorize(owner, ActionReadClaim, claim); err != nil {
		t.Fatalf("owner should read own claim: %v", err)
	}
	err := Authorize(other, ActionReadClaim, claim)
	if !errors.Is(err, apperr.ErrAuthorizationDenied) {
		t.Fatalf("expected denial, got %v", err)
	}
	if got := apperr.Reason(err); got != apperr.ReasonAccessDenied {
		t.Fatalf("unexpected reason %q", got)
	}
	for _, role := range []models.Role{models.RoleNGO, models.RoleDistrictOfficer, models.RoleMinistry} {
		if err := Authorize(newUser(role), ActionReadClaim, claim); err != nil {
			t.Fatalf("%s should read any claim: %v", role, err)
		}
	}
}

func TestAuthorizeUpdateStatus(t *testing.T) {
	claim := &models.Claim{ID: uuid.New(), OwnerID: uuid.New()}
	cases := []struct {
		role    models.Role
		allowed bool
	}{
		{models.RoleCommunityUser, false},
		{models.RoleNGO, false},
		{models.RoleDistrictOfficer, true},
		{models.RoleMinistry, true},
	}
	for _, tc := range cases {
		err := Authorize(newUser(tc.role), ActionUpdateStatus, claim)
		if tc.allowed && err != nil {
			t.Fatalf("%s: expected allowed, got %v", tc.role, err)
		}
		if !tc.allowed {
			if !errors.Is(err, apperr.ErrAuthorizationDenied) {
				t.Fatalf("%s: expected denial, got %v", tc.role, err)
			}
			if got := apperr.Reason(err); got != apperr.ReasonInsufficientPermissions {
				t.Fatalf("%s: unexpected reason %q", tc.role, got)
			}
		}
	}
}

func TestAuthorizeUploadDocument(t *testing.T) {
	owner := newUser(models.RoleCommunityUser)
	claim := &models.Claim{ID: uuid.New(), OwnerID: owner.ID}

	if err := Authorize(owner, ActionUploadDocument, claim); err != nil {
		t.Fatalf("owner upload: %v", err)
	}
	if err := Authorize(newUser(models.RoleCommunityUser), ActionUploadDocument, claim); !errors.Is(err, apperr.ErrAuthorizationDenied) {
		t.Fatalf("expected other community user to be denied, got %v", err)
	}
	for _, role := range []models.Role{models.RoleNGO, models.RoleDistrictOfficer, models.RoleMinistry} {
		if err := Authorize(newUser(role), ActionUploadDocument, claim); err != nil {
			t.Fatalf("%s upload: %v", role, err)
		}
	}
}

func TestAuthorizeCreateAllowedForEveryRole(t *testing.T) {
	for _, role := range models.Roles {
		if err := Authorize(newUser(role), ActionCreateClaim, nil); err != nil {
			t.Fatalf("%s create: %v", role, err)
		}
	}
}

func TestListFilter(t *testing.T) {
	community := newUser(models.RoleCommunityUser)
	filter, err := ListFilter(community)
	if err != nil {
		t.Fatalf("list filter: %v", err)
	}
	if filter == nil || *filter != community.ID {
		t.Fatalf("community user must be restricted to own claims, got %v", filter)
	}

	for _, role := range []models.Role{models.RoleNGO, models.RoleDistrictOfficer, models.RoleMinistry} {
		filter, err := ListFilter(newUser(role))
		if err != nil {
			t.Fatalf("%s list filter: %v", role, err)
		}
		if filter != nil {
			t.Fatalf("%s should see the full corpus", role)
		}
	}

	if _, err := ListFilter(newUser(models.Role("Auditor"))); !errors.Is(err, apperr.ErrAuthorizationDenied) {
		t.Fatalf("unknown role should be denied, got %v", err)
	}
}
