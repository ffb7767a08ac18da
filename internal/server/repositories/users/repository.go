package users

import (
	"context"

	"github.com/dmitrijs2005/activitydash/internal/server/models"
)

// Repository is the credential store.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	// EmailExists ignores the row with excludeID; pass "" to check all rows.
	EmailExists(ctx context.Context, email string, excludeID string) (bool, error)
	UpdateProfile(ctx context.Context, user *models.User) (*models.User, error)
}
