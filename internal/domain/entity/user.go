// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the durable record of a registered identity. The email address is
// the login identifier and never changes after registration; the password
// hash is write-only from the application's point of view.
type User struct {
	ID              uuid.UUID // The unique identifier for this identity.
	Email           string    // The login identifier, unique across all identities.
	PasswordHash    string    // One-way bcrypt hash of the password; the plaintext is never stored.
	ProfileComplete bool      // True once the user has filled in their display profile.
	Profile         Profile   // Display attributes owned by the profile collaborator.
	CreatedAt       time.Time // Timestamp of registration.
	UpdatedAt       time.Time // Timestamp of the last modification to this identity.
}

// Profile holds the display attributes shown to other chat participants.
// None of these fields participate in authentication.
type Profile struct {
	FirstName   string // The user's given name.
	LastName    string // The user's family name.
	AvatarURL   string // Reference to the user's avatar image.
	AccentColor string // Preferred accent color for the chat UI, e.g. "#7c3aed".
}
