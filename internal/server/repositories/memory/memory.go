// Package memory provides map-backed implementations of every repository
// behind a single Store. It satisfies repomanager.RepositoryManager and is
// used where a PostgreSQL instance is not available, chiefly in tests.
// Transactions are not modelled: the DBTX handed to the factories is ignored.
package memory

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/dbx"
	"github.com/dmitrijs2005/activitydash/internal/server/models"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/activity"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/users"
	"github.com/google/uuid"
)

type Store struct {
	mu       sync.Mutex
	users    map[string]*models.User
	tokens   map[string]*models.RefreshToken
	activity []models.ActivityLogEntry

	// Now stamps new rows; replace it to control activity days.
	Now func() time.Time
}

func NewStore() *Store {
	return &Store{
		users:  make(map[string]*models.User),
		tokens: make(map[string]*models.RefreshToken),
		Now:    time.Now,
	}
}

func (s *Store) RunMigrations(context.Context, *sql.DB) error { return nil }

func (s *Store) Users(dbx.DBTX) users.Repository { return (*userRepo)(s) }

func (s *Store) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return (*tokenRepo)(s) }

func (s *Store) Activity(dbx.DBTX) activity.Repository { return (*activityRepo)(s) }

// ActivityEntries returns a copy of the log in insertion order.
func (s *Store) ActivityEntries() []models.ActivityLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.ActivityLogEntry(nil), s.activity...)
}

// RefreshToken returns a copy of the stored row for jti id.
func (s *Store) RefreshToken(id string) (models.RefreshToken, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tokens[id]
	if !ok {
		return models.RefreshToken{}, false
	}
	return *t, true
}

// PromoteSuperuser sets the privilege flag on an existing user.
func (s *Store) PromoteSuperuser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u, ok := s.users[userID]; ok {
		u.IsSuperuser = true
	}
}

type userRepo Store

func (r *userRepo) Create(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserName == user.UserName {
			return nil, common.ErrDuplicateUsername
		}
		if u.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}

	u := *user
	u.ID = uuid.NewString()
	u.CreatedAt = r.Now()
	r.users[u.ID] = &u

	out := u
	return &out, nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	out := *u
	return &out, nil
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.UserName == username {
			out := *u
			return &out, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r *userRepo) UsernameExists(ctx context.Context, username string) (bool, error) {
	_, err := r.GetByUsername(ctx, username)
	return err == nil, nil
}

func (r *userRepo) EmailExists(_ context.Context, email string, excludeID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, u := range r.users {
		if u.Email == email && id != excludeID {
			return true, nil
		}
	}
	return false, nil
}

func (r *userRepo) UpdateProfile(_ context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[user.ID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	for id, other := range r.users {
		if id != user.ID && other.Email == user.Email {
			return nil, common.ErrDuplicateEmail
		}
	}

	u.Email = user.Email
	u.FirstName = user.FirstName
	u.LastName = user.LastName

	out := *u
	return &out, nil
}

type tokenRepo Store

func (r *tokenRepo) Create(_ context.Context, id string, userID string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.tokens[id] = &models.RefreshToken{ID: id, UserID: userID, ExpiresAt: expiresAt, CreatedAt: r.Now()}
	return nil
}

func (r *tokenRepo) Blacklist(_ context.Context, id string, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.tokens[id]
	if !ok || t.UserID != userID || t.Blacklisted() {
		return common.ErrInvalidToken
	}
	now := r.Now()
	t.BlacklistedAt = &now
	return nil
}

type activityRepo Store

func (r *activityRepo) Append(_ context.Context, userID string, kind models.ActivityKind) (*models.ActivityLogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID]; !ok {
		return nil, common.ErrorNotFound
	}
	e := models.ActivityLogEntry{
		ID:        int64(len(r.activity) + 1),
		UserID:    userID,
		Kind:      kind,
		CreatedAt: r.Now(),
	}
	r.activity = append(r.activity, e)
	return &e, nil
}

func (r *activityRepo) DailyCounts(_ context.Context, userID string) ([]models.DailyCount, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	type bucket struct {
		day  time.Time
		kind models.ActivityKind
	}
	counts := make(map[bucket]int64)
	for _, e := range r.activity {
		if userID != "" && e.UserID != userID {
			continue
		}
		t := e.CreatedAt.UTC()
		counts[bucket{time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), e.Kind}]++
	}

	result := make([]models.DailyCount, 0, len(counts))
	for b, n := range counts {
		result = append(result, models.DailyCount{Day: b.day, Kind: b.kind, Count: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Day.Equal(result[j].Day) {
			return result[i].Day.Before(result[j].Day)
		}
		return result[i].Kind < result[j].Kind
	})
	return result, nil
}
