package auth

import (
	"crypto/subtle"

	"github.com/matchpoint-app/matchpoint/internal/common"
)

// NewCSRFToken returns a fresh rotation token. Each issued token replaces the
// previous one for its session.
func NewCSRFToken() (string, error) {
	return common.MakeRandHexString(32)
}

// CheckCSRFToken compares a presented token against the session's current one
// in constant time.
func CheckCSRFToken(current, presented string) bool {
	if current == "" || presented == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(current), []byte(presented)) == 1
}
