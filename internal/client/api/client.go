// Package api defines the client's view of the Matchpoint backend: the data
// types it exchanges and the Client interface the rest of the SDK talks to.
//
// The contract deliberately avoids bearer tokens: authentication state lives
// in an httpOnly session cookie managed by the HTTP implementation's cookie
// jar, and the identity probe reports "not logged in" as data, never as an
// error.
package api

import "context"

// BirthData is the astrological birth information on a profile.
type BirthData struct {
	BirthDate     string `json:"birthDate"`
	BirthTime     string `json:"birthTime"`
	BirthLocation string `json:"birthLocation"`
}

// User is the canonical current-user representation. It is only ever received
// from the backend; the SDK never synthesizes one except optimistically during
// a mutation, and the next probe overwrites it.
type User struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	IsAdmin     bool       `json:"isAdmin"`
	DisplayName string     `json:"displayName"`
	Bio         string     `json:"bio"`
	Gender      string     `json:"gender"`
	BirthData   *BirthData `json:"birthData,omitempty"`
}

// Identity is the settled result of an identity probe. Authenticated=false
// is a valid, terminal answer, not a failure.
type Identity struct {
	Authenticated bool
	User          *User
}

// LocationSuggestion is one birth-location autocomplete candidate.
type LocationSuggestion struct {
	DisplayName string `json:"displayName"`
	Latitude    string `json:"latitude"`
	Longitude   string `json:"longitude"`
}

// Client is the transport surface consumed by the session/bootstrap/authflow
// layers. All methods honor context cancellation; cancelled calls return the
// context's error wrapped in common.ErrTransport.
type Client interface {
	// Register creates an account and opens a session.
	Register(ctx context.Context, email, password string) (*User, error)

	// Login authenticates and opens a session (cookie set via the jar).
	Login(ctx context.Context, email, password string) (*User, error)

	// Logout revokes the current session. Best-effort on the caller's side:
	// orchestration clears local state even when this fails.
	Logout(ctx context.Context) error

	// Me performs the identity probe. A logged-out answer is (Identity{...,
	// Authenticated: false}, nil) — never an error.
	Me(ctx context.Context) (*Identity, error)

	// FetchCSRF obtains a fresh rotation token for mutating requests.
	FetchCSRF(ctx context.Context) (string, error)

	// UpdateBasicProfile and UpdateBirthData mutate the profile and return
	// the updated canonical user.
	UpdateBasicProfile(ctx context.Context, displayName, bio, gender string) (*User, error)
	UpdateBirthData(ctx context.Context, bd BirthData) (*User, error)

	// PhotoUploadURL returns a presigned PUT URL and its storage key;
	// PhotoURL returns a presigned GET URL ("" when no photo exists).
	PhotoUploadURL(ctx context.Context) (url string, key string, err error)
	PhotoURL(ctx context.Context) (string, error)

	// SearchLocations is best-effort: failures yield an empty list.
	SearchLocations(ctx context.Context, query string, limit int) []LocationSuggestion
}
