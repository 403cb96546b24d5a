// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// Account timestamps are stored in a fixed UTC+9 offset, matching the
// primary deployment region.
var Timezone = time.FixedZone("UTC+9", 9*60*60)

// Now returns the current time in the account timezone.
func Now() time.Time {
	return time.Now().In(Timezone)
}

// User is the core entity of the system, representing a single account.
type User struct {
	ID           uuid.UUID // Server-generated, immutable identifier.
	Email        string    // Login identifier, globally unique.
	UserName     string    // Display name, globally unique.
	PasswordHash string    // bcrypt hash of the password, never the plaintext.
	IsActive     bool      // False until the account has been activated.
	CreatedAt    time.Time // Set once at registration.
	UpdatedAt    time.Time // Bumped on every mutation; never before CreatedAt.
}

// Projection is the externally visible subset of a User. The password hash
// deliberately has no representation here.
type Projection struct {
	ID        uuid.UUID `json:"id"`
	UserName  string    `json:"user_name"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Project maps the user to its public projection.
func (u *User) Project() *Projection {
	return &Projection{
		ID:        u.ID,
		UserName:  u.UserName,
		Email:     u.Email,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}
