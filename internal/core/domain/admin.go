package domain

import (
	"errors"
	"strings"
)

// Validation failures surfaced by AdministratorIdentity.Validate. The
// resolver rejects partial records at the boundary instead of letting them
// reach the permission check.
var (
	ErrMissingSubject = errors.New("administrator subject id is empty")
	ErrUnknownRole    = errors.New("administrator role is not recognised")
	ErrMissingSociety = errors.New("administrator has no society assignment")
)

// AdministratorIdentity is the resolved privileged caller for the duration of
// one request. It is loaded fresh per request and never mutated in place.
type AdministratorIdentity struct {
	SubjectID     string
	Name          string
	Role          Role
	SocietyID     string
	HomeWing      string
	AssignedWings []string
}

// Validate rejects records that must not pass the resolver boundary.
func (a AdministratorIdentity) Validate() error {
	if strings.TrimSpace(a.SubjectID) == "" {
		return ErrMissingSubject
	}
	if !a.Role.IsValid() {
		return ErrUnknownRole
	}
	if strings.TrimSpace(a.SocietyID) == "" {
		return ErrMissingSociety
	}
	return nil
}

// EffectiveScope is the derived data-visibility boundary for a request.
// When WingRestricted is false the caller sees every wing in its society and
// AllowedWings is empty.
type EffectiveScope struct {
	WingRestricted bool
	AllowedWings   []string
}

// Scope computes the effective scope for the administrator. Only
// wing_chairman is wing-restricted; an empty assignment list falls back to
// the chairman's own home wing.
func (a AdministratorIdentity) Scope() EffectiveScope {
	if a.Role != RoleWingChairman {
		return EffectiveScope{}
	}

	wings := a.AssignedWings
	if len(wings) == 0 && a.HomeWing != "" {
		wings = []string{a.HomeWing}
	}

	allowed := make([]string, len(wings))
	copy(allowed, wings)

	return EffectiveScope{
		WingRestricted: true,
		AllowedWings:   allowed,
	}
}

// AllowsWing reports whether the scope permits touching records in the wing.
func (s EffectiveScope) AllowsWing(wing string) bool {
	if !s.WingRestricted {
		return true
	}
	for _, allowed := range s.AllowedWings {
		if allowed == wing {
			return true
		}
	}
	return false
}

// AllowsWings reports whether every supplied wing is inside the scope.
func (s EffectiveScope) AllowsWings(wings []string) bool {
	for _, wing := range wings {
		if !s.AllowsWing(wing) {
			return false
		}
	}
	return true
}
