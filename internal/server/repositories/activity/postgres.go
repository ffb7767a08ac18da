// Package activity provides a PostgreSQL-backed append-only store for
// login/logout events and their per-day aggregation.
package activity

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/activitydash/internal/dbx"
	"github.com/dmitrijs2005/activitydash/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Append inserts a new entry; id and timestamp come from the database.
func (r *PostgresRepository) Append(ctx context.Context, userID string, kind models.ActivityKind) (*models.ActivityLogEntry, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown activity type %q", kind)
	}

	query := `
		INSERT INTO activity_logs (user_id, activity_type)
		VALUES ($1, $2)
		RETURNING id, created_at
	`
	e := &models.ActivityLogEntry{UserID: userID, Kind: kind}
	if err := r.db.QueryRowContext(ctx, query, userID, string(kind)).Scan(&e.ID, &e.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

const dailyCountsSelect = `
	SELECT (created_at AT TIME ZONE 'UTC')::date AS day, activity_type, COUNT(*)
	FROM activity_logs
`

const dailyCountsGroup = `
	GROUP BY day, activity_type
	ORDER BY day, activity_type
`

func (r *PostgresRepository) DailyCounts(ctx context.Context, userID string) ([]models.DailyCount, error) {
	query := dailyCountsSelect + dailyCountsGroup
	var args []any
	if userID != "" {
		query = dailyCountsSelect + ` WHERE user_id = $1 ` + dailyCountsGroup
		args = append(args, userID)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]models.DailyCount, 0)
	for rows.Next() {
		var (
			c    models.DailyCount
			kind string
		)
		if err := rows.Scan(&c.Day, &kind, &c.Count); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		c.Kind = models.ActivityKind(kind)
		result = append(result, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return result, nil
}
