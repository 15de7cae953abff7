package domain

import (
	"errors"
	"testing"
)

func TestAdministratorValidate(t *testing.T) {
	valid := AdministratorIdentity{
		SubjectID: "adm-1",
		Name:      "Asha",
		Role:      RoleAdmin,
		SocietyID: "soc-1",
	}

	if err := valid.Validate(); err != nil {
		t.Fatalf("expected valid record, got %v", err)
	}

	cases := []struct {
		name    string
		mutate  func(*AdministratorIdentity)
		wantErr error
	}{
		{"missing subject", func(a *AdministratorIdentity) { a.SubjectID = "  " }, ErrMissingSubject},
		{"unknown role", func(a *AdministratorIdentity) { a.Role = "janitor" }, ErrUnknownRole},
		{"missing society", func(a *AdministratorIdentity) { a.SocietyID = "" }, ErrMissingSociety},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			admin := valid
			tc.mutate(&admin)
			if err := admin.Validate(); !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestScopeUnrestrictedForNonChairman(t *testing.T) {
	for _, role := range []Role{RoleSuperAdmin, RoleAdmin, RoleModerator} {
		admin := AdministratorIdentity{SubjectID: "adm-1", Role: role, SocietyID: "soc-1", HomeWing: "A"}
		scope := admin.Scope()
		if scope.WingRestricted {
			t.Fatalf("expected %s to be unrestricted", role)
		}
		if !scope.AllowsWing("Z") {
			t.Fatalf("expected %s to touch any wing", role)
		}
	}
}

func TestScopeChairmanAssignedWings(t *testing.T) {
	admin := AdministratorIdentity{
		SubjectID:     "adm-2",
		Role:          RoleWingChairman,
		SocietyID:     "soc-1",
		HomeWing:      "A",
		AssignedWings: []string{"B", "C"},
	}

	scope := admin.Scope()
	if !scope.WingRestricted {
		t.Fatal("expected chairman to be wing restricted")
	}
	if !scope.AllowsWings([]string{"B", "C"}) {
		t.Fatal("expected assigned wings to be allowed")
	}
	if scope.AllowsWing("A") {
		t.Fatal("home wing must not be implied when assignments exist")
	}
}

func TestScopeChairmanHomeWingFallback(t *testing.T) {
	admin := AdministratorIdentity{
		SubjectID: "adm-3",
		Role:      RoleWingChairman,
		SocietyID: "soc-1",
		HomeWing:  "A",
	}

	scope := admin.Scope()
	if !scope.AllowsWing("A") {
		t.Fatal("expected fallback to the home wing")
	}
	if scope.AllowsWing("B") {
		t.Fatal("expected other wings to be denied")
	}
}

func TestScopeCopiesAssignedWings(t *testing.T) {
	wings := []string{"B"}
	admin := AdministratorIdentity{
		SubjectID:     "adm-4",
		Role:          RoleWingChairman,
		SocietyID:     "soc-1",
		AssignedWings: wings,
	}

	scope := admin.Scope()
	wings[0] = "Z"

	if !scope.AllowsWing("B") {
		t.Fatal("expected scope to hold its own copy of the wing list")
	}
}

func TestAllowsWingsEmptyTargetList(t *testing.T) {
	scope := EffectiveScope{WingRestricted: true, AllowedWings: []string{"A"}}
	if !scope.AllowsWings(nil) {
		t.Fatal("expected an empty target list to pass")
	}
}
