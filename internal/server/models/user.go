// Package models contains the server-side domain entities.
package models

import "time"

// BirthData is the astrological birth information attached to a profile.
// BirthTime is stored as "HH:mm"; seconds are rejected at the service layer.
type BirthData struct {
	BirthDate     string `json:"birthDate"`
	BirthTime     string `json:"birthTime"`
	BirthLocation string `json:"birthLocation"`
}

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string     `json:"id"`
	Email        string     `json:"email"`
	PasswordHash string     `json:"-"`
	IsAdmin      bool       `json:"isAdmin"`
	DisplayName  string     `json:"displayName"`
	Bio          string     `json:"bio"`
	Gender       string     `json:"gender"`
	PhotoKey     string     `json:"-"`
	BirthData    *BirthData `json:"birthData,omitempty"`
	CreatedAt    time.Time  `json:"-"`
}
