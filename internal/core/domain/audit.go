package domain

import "time"

// AuditEntry is one immutable record of a privileged action. Actor fields
// are copied from the administrator at the time of the action so later role
// changes never rewrite history. The audit store exposes no update or delete
// path.
type AuditEntry struct {
	ID        string
	AdminID   string
	AdminName string
	AdminRole Role
	SocietyID string
	Action    string
	Resource  Resource
	Details   map[string]any
	IPAddress string
	UserAgent string
	CreatedAt time.Time
}

// AuditFilter narrows audit log listings.
type AuditFilter struct {
	AdminID  string
	Resource Resource
	Action   string
	Since    time.Time
	Limit    int
	Offset   int
}
