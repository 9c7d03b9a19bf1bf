package domain

import "time"

// AuthEventKind classifies an entry of the authentication audit trail.
type AuthEventKind string

const (
	AuthEventRegistered       AuthEventKind = "registered"
	AuthEventRegisterRejected AuthEventKind = "register_rejected"
	AuthEventLoginSucceeded   AuthEventKind = "login_succeeded"
	AuthEventLoginFailed      AuthEventKind = "login_failed"
	AuthEventLoggedOut        AuthEventKind = "logged_out"
	AuthEventAccessDenied     AuthEventKind = "access_denied"
)

// AuthEvent is one audit record. Secrets are never attached.
type AuthEvent struct {
	Kind       AuthEventKind
	UserID     int64 // zero when the subject is unknown
	Email      string
	Reason     string
	RemoteIP   string
	OccurredAt time.Time
}
