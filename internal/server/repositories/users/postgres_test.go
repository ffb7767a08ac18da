package users

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userCols = []string{"id", "username", "email", "password_hash", "first_name", "last_name", "is_superuser", "created_at"}

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return NewPostgresRepository(db), mock
}

const insertQ = `(?s)^INSERT\s+INTO\s+users\s*\(username,\s*email,\s*password_hash,\s*first_name,\s*last_name,\s*is_superuser\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,\s*created_at$`

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	now := time.Now()

	mock.ExpectQuery(insertQ).
		WithArgs("alice", "alice@x.com", "hash", "", "", false).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow("u-42", now))

	u := &models.User{UserName: "alice", Email: "alice@x.com", PasswordHash: "hash"}
	got, err := repo.Create(context.Background(), u)
	require.NoError(t, err)
	assert.Equal(t, "u-42", got.ID)
	assert.Equal(t, now, got.CreatedAt)
	assert.False(t, got.IsSuperuser)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_UniqueViolations(t *testing.T) {
	tests := []struct {
		constraint string
		want       error
	}{
		{constraint: "users_username_key", want: common.ErrDuplicateUsername},
		{constraint: "users_email_key", want: common.ErrDuplicateEmail},
	}

	for _, tt := range tests {
		t.Run(tt.constraint, func(t *testing.T) {
			repo, mock := newRepoWithMock(t)

			mock.ExpectQuery(insertQ).
				WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: tt.constraint})

			_, err := repo.Create(context.Background(), &models.User{UserName: "alice", Email: "alice@x.com", PasswordHash: "h"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQ).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), &models.User{UserName: "alice"})
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestGetByUsername_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)^SELECT\s+id,\s*username,.*FROM\s+users\s+WHERE\s+username\s*=\s*\$1$`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "alice", "alice@x.com", "hash", "Alice", "A", false, time.Now()))

	got, err := repo.GetByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)
	assert.Equal(t, "alice@x.com", got.Email)
	assert.Equal(t, "hash", got.PasswordHash)
	assert.Equal(t, "Alice", got.FirstName)
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "ghost")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)FROM\s+users\s+WHERE\s+id`).WillReturnError(errors.New("db err"))

	_, err := repo.GetByID(context.Background(), "u-1")
	if err == nil || !regexp.MustCompile(`db error: .*db err`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestUsernameExists(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT\s+EXISTS.*WHERE\s+username\s*=\s*\$1`).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.UsernameExists(context.Background(), "alice")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestEmailExists_ExcludesSelf(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`(?s)SELECT\s+EXISTS.*WHERE\s+email\s*=\s*\$1\s+AND\s+id::text\s*<>\s*\$2`).
		WithArgs("alice@x.com", "u-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	ok, err := repo.EmailExists(context.Background(), "alice@x.com", "u-1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestEmailExists_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(`SELECT\s+EXISTS`).WillReturnError(errors.New("boom"))

	_, err := repo.EmailExists(context.Background(), "a@x.com", "")
	require.Error(t, err)
}

const updateQ = `(?s)^UPDATE\s+users\s+SET\s+email\s*=\s*\$2,\s*first_name\s*=\s*\$3,\s*last_name\s*=\s*\$4\s+WHERE\s+id\s*=\s*\$1\s+RETURNING`

func TestUpdateProfile_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(updateQ).
		WithArgs("u-1", "new@x.com", "Al", "Ice").
		WillReturnRows(sqlmock.NewRows(userCols).
			AddRow("u-1", "alice", "new@x.com", "hash", "Al", "Ice", false, time.Now()))

	got, err := repo.UpdateProfile(context.Background(), &models.User{
		ID: "u-1", UserName: "mallory", Email: "new@x.com", FirstName: "Al", LastName: "Ice", IsSuperuser: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName, "username is not written")
	assert.False(t, got.IsSuperuser, "privilege is not written")
	assert.Equal(t, "new@x.com", got.Email)
}

func TestUpdateProfile_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(updateQ).WillReturnError(sql.ErrNoRows)

	_, err := repo.UpdateProfile(context.Background(), &models.User{ID: "ghost"})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateProfile_DuplicateEmail(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(updateQ).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	_, err := repo.UpdateProfile(context.Background(), &models.User{ID: "u-1", Email: "taken@x.com"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
}
