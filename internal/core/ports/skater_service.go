package ports

import (
	"context"
	"io"

	"github.com/skatepark/skater-profiles/internal/core/domain"
)

// RegisterInput carries a registration form and its uploaded image.
type RegisterInput struct {
	Email           string
	Name            string
	Password        string
	YearsExperience int
	Specialty       string
	ImageName       string
	Image           io.Reader
}

// UpdateProfileInput holds the fields a skater wants to change. Nil fields
// are left untouched; an empty Password keeps the current one.
type UpdateProfileInput struct {
	Email           *string
	Name            *string
	Password        *string
	YearsExperience *int
	Specialty       *string
}

// SkaterService defines the account lifecycle use cases.
type SkaterService interface {
	Register(ctx context.Context, in RegisterInput) (int64, error)
	Login(ctx context.Context, email, password string) (string, *domain.Skater, error)
	Profile(ctx context.Context, id int64) (*domain.Skater, error)
	List(ctx context.Context) ([]*domain.Skater, error)
	UpdateProfile(ctx context.Context, id int64, in UpdateProfileInput) error
	Delete(ctx context.Context, id int64, password string) error
	// ToggleStatus flips the target's active flag and returns the new value.
	ToggleStatus(ctx context.Context, adminID, targetID int64) (bool, error)
}
