package users

import (
	"context"

	"github.com/Velislav710/TeenBudget-sub001/internal/server/models"
)

// Repository is the user directory. Lookups return common.ErrNotFound when
// no row matches.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
}
