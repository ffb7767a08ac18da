package activity

import (
	"context"

	"github.com/dmitrijs2005/activitydash/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, userID string, kind models.ActivityKind) (*models.ActivityLogEntry, error)
	// DailyCounts aggregates entries by UTC day and kind. An empty userID
	// aggregates over every user.
	DailyCounts(ctx context.Context, userID string) ([]models.DailyCount, error)
}
