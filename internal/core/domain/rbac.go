package domain

// Role identifies an administrator privilege class.
type Role string

const (
	RoleSuperAdmin   Role = "super_admin"
	RoleAdmin        Role = "admin"
	RoleWingChairman Role = "wing_chairman"
	RoleModerator    Role = "moderator"
)

// IsValid reports whether the role is one of the known administrator roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleWingChairman, RoleModerator:
		return true
	}
	return false
}

// Resource names a protected category of data and operations.
type Resource string

const (
	ResourceUsers         Resource = "users"
	ResourceMaintenance   Resource = "maintenance"
	ResourceForum         Resource = "forum"
	ResourceContacts      Resource = "contacts"
	ResourceJoinRequests  Resource = "join_requests"
	ResourceCommunication Resource = "communication"
	ResourceAuditLog      Resource = "audit_log"

	// ResourceSessions names the session control surface. It never appears in
	// the matrix: session endpoints require authentication only, and the
	// constant exists so audit entries name it consistently.
	ResourceSessions Resource = "sessions"
)

// Action names an operation on a resource.
type Action string

const (
	ActionRead       Action = "read"
	ActionWrite      Action = "write"
	ActionApprove    Action = "approve"
	ActionReject     Action = "reject"
	ActionDeactivate Action = "deactivate"
	ActionDelete     Action = "delete"
	ActionModerate   Action = "moderate"
	ActionBroadcast  Action = "broadcast"

	// ActionAll is the wildcard entry granting every action on a resource.
	ActionAll Action = "*"

	// ActionWingOnly is a marker, not a grantable action: its presence in a
	// grant tells the gate that row-level wing scoping must be enforced for
	// that role/resource pair.
	ActionWingOnly Action = "wing_only"
)

// PermissionMatrix maps role -> resource -> allowed action set. The
// super_admin wildcard is an explicit rule evaluated before table lookup so
// it can never be lost to a missing entry.
type PermissionMatrix struct {
	grants map[Role]map[Resource]map[Action]struct{}
}

// Grants declares the allowed actions per resource for a single role.
type Grants map[Resource][]Action

// NewPermissionMatrix builds an immutable matrix from per-role grants.
func NewPermissionMatrix(table map[Role]Grants) PermissionMatrix {
	grants := make(map[Role]map[Resource]map[Action]struct{}, len(table))
	for role, byResource := range table {
		grants[role] = make(map[Resource]map[Action]struct{}, len(byResource))
		for resource, actions := range byResource {
			set := make(map[Action]struct{}, len(actions))
			for _, action := range actions {
				set[action] = struct{}{}
			}
			grants[role][resource] = set
		}
	}
	return PermissionMatrix{grants: grants}
}

// HasPermission reports whether the role may perform action on resource.
// super_admin is always allowed; unknown roles and resources fail closed.
// The wing_only marker is never grantable through this check.
func (m PermissionMatrix) HasPermission(role Role, resource Resource, action Action) bool {
	if role == RoleSuperAdmin {
		return true
	}
	if action == ActionWingOnly {
		return false
	}

	byResource, ok := m.grants[role]
	if !ok {
		return false
	}
	actions, ok := byResource[resource]
	if !ok {
		return false
	}

	if _, ok := actions[ActionAll]; ok {
		return true
	}
	_, ok = actions[action]
	return ok
}

// WingScoped reports whether grants for the role/resource pair carry the
// wing_only marker, meaning the gate must additionally verify that every
// touched record lies inside the caller's allowed wings.
func (m PermissionMatrix) WingScoped(role Role, resource Resource) bool {
	if role == RoleSuperAdmin {
		return false
	}
	byResource, ok := m.grants[role]
	if !ok {
		return false
	}
	actions, ok := byResource[resource]
	if !ok {
		return false
	}
	_, ok = actions[ActionWingOnly]
	return ok
}

// DefaultPermissionMatrix returns the production role/resource/action table.
// super_admin is intentionally absent: the wildcard rule covers it.
func DefaultPermissionMatrix() PermissionMatrix {
	return NewPermissionMatrix(map[Role]Grants{
		RoleAdmin: {
			ResourceUsers:         {ActionRead, ActionWrite, ActionDeactivate},
			ResourceMaintenance:   {ActionRead, ActionWrite, ActionApprove, ActionReject},
			ResourceForum:         {ActionRead, ActionModerate, ActionDelete},
			ResourceContacts:      {ActionRead, ActionWrite, ActionDelete},
			ResourceJoinRequests:  {ActionRead, ActionApprove, ActionReject},
			ResourceCommunication: {ActionRead, ActionWrite, ActionBroadcast},
			ResourceAuditLog:      {ActionRead},
		},
		RoleWingChairman: {
			ResourceUsers:        {ActionRead, ActionWingOnly},
			ResourceMaintenance:  {ActionRead, ActionApprove, ActionWingOnly},
			ResourceJoinRequests: {ActionRead, ActionApprove, ActionReject, ActionWingOnly},
			ResourceForum:        {ActionRead},
			ResourceContacts:     {ActionRead},
		},
		RoleModerator: {
			ResourceForum:    {ActionRead, ActionModerate, ActionDelete},
			ResourceContacts: {ActionRead},
		},
	})
}
