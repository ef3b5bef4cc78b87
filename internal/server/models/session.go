package models

import "time"

// Session is a server-side login session. The session cookie carries a signed
// token whose ID points at one of these rows, so a logout revokes the cookie
// even before the token itself expires.
//
// CSRFToken holds the currently valid rotation token for the session; issuing
// a new one invalidates the previous value.
type Session struct {
	ID        string
	UserID    string
	CSRFToken string
	CreatedAt time.Time
	ExpiresAt time.Time
}
