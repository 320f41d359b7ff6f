package repository

import (
	"context"

	"portfolio-tracker/internal/domain"
)

// UserRepository defines persistence operations for User entities.
// Lookups return domain.ErrNotFound when no row matches; every other failure
// is classified as domain.KindStorage.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) (int64, error)
	Find(ctx context.Context) ([]domain.User, error)
	FindByID(ctx context.Context, id int64) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByManager(ctx context.Context, managerID int64) ([]domain.User, error)
	Update(ctx context.Context, user *domain.User) (*domain.User, error)
}
