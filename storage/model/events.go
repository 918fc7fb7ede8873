package model

import (
	"time"
)

// AuditEventKind names the account events worth recording.
type AuditEventKind string

const (
	// EventCreated is recorded when an account is appended to the sheet.
	EventCreated AuditEventKind = "created"
	// EventLogin is recorded after a successful credential verification.
	EventLogin AuditEventKind = "login"
	// EventModified is recorded when account fields change.
	EventModified AuditEventKind = "modified"
	// EventDeleted is recorded when an account row is removed.
	EventDeleted AuditEventKind = "deleted"
)

// auditTimeFormat matches the timestamp format the stats sheet has always
// been written with.
const auditTimeFormat = "2006/01/02 15:04"

// AuditEvent records a single account event. Events are append-only and are
// never read back; delivery is best-effort.
type AuditEvent struct {
	Login string
	Kind  AuditEventKind
	Time  time.Time
}

// Row serializes the event into the stats sheet's column order.
func (e AuditEvent) Row() []string {
	return []string{e.Login, string(e.Kind), e.Time.Format(auditTimeFormat)}
}
