// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"chatline/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new identity.
type RegisterInput struct {
	Email    string
	Password string
}

// LoginInput defines the data required to log in.
type LoginInput struct {
	Email    string
	Password string
}

// --- Output DTOs ---

// RegisterOutput returns the newly created identity and its first session token.
type RegisterOutput struct {
	User         *entity.User
	SessionToken string
}

// LoginOutput returns the session token issued after a successful login.
type LoginOutput struct {
	User         *entity.User
	SessionToken string
}

// AccountUsecase defines the credential-store operations the delivery layer
// depends on: creating identities, verifying credentials and minting the
// session token that proves a successful authentication.
type AccountUsecase interface {
	// Register creates a new identity and issues its first session token.
	Register(ctx context.Context, input *RegisterInput) (*RegisterOutput, error)

	// Login verifies an email/password pair and issues a session token.
	// Unknown email and wrong password are indistinguishable to the caller.
	Login(ctx context.Context, input *LoginInput) (*LoginOutput, error)

	// CurrentUser loads the identity behind a validated session claim.
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
}
