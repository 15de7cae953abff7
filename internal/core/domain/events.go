package domain

import "time"

// AdminSessionStartedEvent is emitted when an administrator logs in and a
// fresh session supersedes any previous one.
type AdminSessionStartedEvent struct {
	EventID         string
	SessionID       string
	AdminID         string
	SocietyID       string
	Role            Role
	IPAddress       string
	UserAgent       string
	StartedAt       time.Time
	ReplacedSession string
	Metadata        map[string]any
}

// AdminSessionEndedEvent is emitted when a session is invalidated, either by
// an explicit logout or implicitly by a new login.
type AdminSessionEndedEvent struct {
	EventID   string
	SessionID string
	AdminID   string
	Reason    string
	EndedAt   time.Time
	Metadata  map[string]any
}

// AdminActionRecordedEvent mirrors an audit entry onto the event bus for
// downstream consumers (notifications, analytics).
type AdminActionRecordedEvent struct {
	EventID    string
	EntryID    string
	AdminID    string
	SocietyID  string
	Role       Role
	Action     string
	Resource   Resource
	RecordedAt time.Time
	Metadata   map[string]any
}
