// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"chatline/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for identity persistence.
// This allows the application layer to handle specific outcomes without depending on database-specific errors.
var (
	// ErrUserNotFound is returned when no identity exists for the given key.
	ErrUserNotFound = errors.New("user not found")
	// ErrDuplicateEmail is returned when an insert collides with the unique
	// index on email. It is produced by the storage layer itself, never by an
	// application-level pre-check, so two concurrent registrations with the
	// same email cannot both succeed.
	ErrDuplicateEmail = errors.New("email already registered")
)

// UserRepository defines the standard operations for identity persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single identity by its unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a single identity by its email address.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// Create persists a new identity. The email unique index decides the
	// winner of concurrent inserts; losers observe ErrDuplicateEmail.
	Create(ctx context.Context, user *entity.User) error

	// UpdateProfile overwrites the display profile and the profile_complete
	// flag of an existing identity. Email and password hash are untouched.
	UpdateProfile(ctx context.Context, user *entity.User) error
}
