package models

import "time"

// Profile is a registered user. Email is the login identifier.
type Profile struct {
	ID           int       `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"-"`
	IsStaff      bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// OwnerID returns the profile's own id; a profile owns itself.
func (p Profile) OwnerID() int { return p.ID }
