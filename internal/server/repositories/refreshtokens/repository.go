package refreshtokens

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, id string, userID string, expiresAt time.Time) error
	Blacklist(ctx context.Context, id string, userID string) error
}
