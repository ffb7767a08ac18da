// Package refreshtokens provides a PostgreSQL-backed repository for issued
// refresh tokens and their blacklist state.
package refreshtokens

import (
	"context"
	"fmt"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/dbx"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create records a freshly issued refresh token by its jti.
func (r *PostgresRepository) Create(ctx context.Context, id string, userID string, expiresAt time.Time) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, id, userID, expiresAt); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// Blacklist moves token id owned by userID from issued to blacklisted.
// The conditional UPDATE is the whole state machine: of two concurrent
// calls only one can affect the row. Unknown, foreign or already
// blacklisted tokens yield common.ErrInvalidToken.
func (r *PostgresRepository) Blacklist(ctx context.Context, id string, userID string) error {
	query := `
		UPDATE refresh_tokens
		SET blacklisted_at = now()
		WHERE id = $1 AND user_id = $2 AND blacklisted_at IS NULL
	`
	res, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n != 1 {
		return common.ErrInvalidToken
	}
	return nil
}
