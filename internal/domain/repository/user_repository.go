package repository

import (
	"context"

	"github.com/lendora/loan-origination/internal/domain/entity"
)

// UserRepository defines the interface for user directory persistence.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// UpdateProfile persists the mutable profile fields only.
	UpdateProfile(ctx context.Context, id, name, phone string) (*entity.User, error)
}
