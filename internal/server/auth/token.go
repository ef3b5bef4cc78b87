// Package auth mints and verifies the signed tokens carried by the session
// cookie, plus the CSRF rotation tokens bound to a session.
package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/matchpoint-app/matchpoint/internal/common"
)

// Claims binds a token to a server-side session row. The session ID, not the
// user ID, is the subject: deleting the row revokes the cookie immediately.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string
}

// GenerateSessionToken signs an HS256 token referencing sessionID.
func GenerateSessionToken(sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: sessionID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetSessionIDFromToken verifies tokenString and returns the session ID it
// references. Expired or malformed tokens yield common.ErrInvalidSession.
func GetSessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidSession
	}

	if !token.Valid {
		return "", common.ErrInvalidSession
	}

	return claims.SessionID, nil
}
