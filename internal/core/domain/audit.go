package domain

import "time"

// AuditKind names a lifecycle event recorded in the audit trail.
type AuditKind string

const (
	AuditRegistered         AuditKind = "registered"
	AuditProfileUpdated     AuditKind = "profile_updated"
	AuditDeleted            AuditKind = "deleted"
	AuditStatusToggled      AuditKind = "status_toggled"
	AuditPhotoCleanupFailed AuditKind = "photo_cleanup_failed"
)

// AuditEvent records a single account lifecycle change.
type AuditEvent struct {
	Kind     AuditKind
	SkaterID int64
	// ActorID is the authenticated skater that triggered the change; zero for
	// anonymous operations such as registration.
	ActorID    int64
	Detail     string
	OccurredAt time.Time
}
