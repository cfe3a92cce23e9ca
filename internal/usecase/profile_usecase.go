// Package usecase contains the application-specific business rules.
package usecase

import (
	"context"

	"chatline/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateProfileInput defines the display attributes a user may change.
// Email and password are not part of this surface.
type UpdateProfileInput struct {
	FirstName   string
	LastName    string
	AvatarURL   string
	AccentColor string
}

// ProfileUsecase defines the profile collaborator's operations. It owns the
// profile_complete flag on the identity record but never touches credentials.
type ProfileUsecase interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input *UpdateProfileInput) (*entity.User, error)
}
