package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/cryptox"
	"github.com/dmitrijs2005/activitydash/internal/server/auth"
	"github.com/dmitrijs2005/activitydash/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strp(s string) *string { return &s }

func TestRegister_Success(t *testing.T) {
	f := newFixture(t)

	u, err := f.users.Register(context.Background(), RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "s3cret!",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "alice", u.UserName)
	assert.False(t, u.IsSuperuser)
	assert.NotContains(t, u.PasswordHash, "s3cret!")

	ok, err := cryptox.VerifyPassword("s3cret!", u.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.Empty(t, f.store.ActivityEntries())
}

func TestRegister_Validation(t *testing.T) {
	tests := []struct {
		name      string
		in        RegisterInput
		field     string
		sentinels []error
		notIs     error
	}{
		{
			name:      "duplicate username",
			in:        RegisterInput{Username: "taken", Email: "new@example.com", Password: "password1"},
			field:     "username",
			sentinels: []error{common.ErrDuplicateUsername},
		},
		{
			name:      "duplicate email",
			in:        RegisterInput{Username: "fresh", Email: "taken@example.com", Password: "password1"},
			field:     "email",
			sentinels: []error{common.ErrDuplicateEmail, common.ErrInvalidEmail},
		},
		{
			name:      "malformed email",
			in:        RegisterInput{Username: "fresh", Email: "not-an-email", Password: "password1"},
			field:     "email",
			sentinels: []error{common.ErrInvalidEmail},
			notIs:     common.ErrDuplicateEmail,
		},
		{
			name:      "weak password",
			in:        RegisterInput{Username: "fresh", Email: "fresh@example.com", Password: "12345"},
			field:     "password",
			sentinels: []error{common.ErrWeakPassword},
		},
		{
			name:      "empty password",
			in:        RegisterInput{Username: "fresh", Email: "fresh@example.com"},
			field:     "password",
			sentinels: []error{common.ErrWeakPassword},
		},
		{
			name:  "bad username characters",
			in:    RegisterInput{Username: "no spaces!", Email: "fresh@example.com", Password: "password1"},
			field: "username",
			notIs: common.ErrDuplicateUsername,
		},
		{
			name:  "blank username",
			in:    RegisterInput{Username: "   ", Email: "fresh@example.com", Password: "password1"},
			field: "username",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.register(t, "taken")

			_, err := f.users.Register(context.Background(), tt.in)
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr), "want *ValidationError, got %T", err)
			assert.Contains(t, verr.Fields, tt.field)
			assert.ErrorIs(t, err, common.ErrorValidation)
			for _, s := range tt.sentinels {
				assert.ErrorIs(t, err, s)
			}
			if tt.notIs != nil {
				assert.NotErrorIs(t, err, tt.notIs)
			}
		})
	}
}

func TestRegister_ReportsEveryField(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.Register(context.Background(), RegisterInput{Username: "", Email: "x", Password: "1"})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 3)
	assert.ErrorIs(t, err, common.ErrInvalidEmail)
	assert.ErrorIs(t, err, common.ErrWeakPassword)
}

func TestRegister_CreateRace(t *testing.T) {
	fm := &faultyManager{createErr: common.ErrDuplicateEmail}
	f := newFixtureWith(t, fm)

	_, err := f.users.Register(context.Background(), RegisterInput{Username: "a", Email: "a@example.com", Password: "password1"})
	assert.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.ErrorIs(t, err, common.ErrorValidation)
}

func TestRegister_RepositoryError(t *testing.T) {
	fm := &faultyManager{usersErr: errDB}
	f := newFixtureWith(t, fm)

	_, err := f.users.Register(context.Background(), RegisterInput{Username: "a", Email: "a@example.com", Password: "password1"})
	assert.ErrorIs(t, err, errDB)
	assert.NotErrorIs(t, err, common.ErrorValidation)
}

func TestLogin_IssuesTokensAndRecordsActivity(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	before := time.Now()
	pair := f.login(t, "alice")
	require.NoError(t, f.mock.ExpectationsWereMet())

	id, err := f.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)

	entries := f.store.ActivityEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, models.ActivityLogin, entries[0].Kind)
	assert.Equal(t, u.ID, entries[0].UserID)
	assert.False(t, entries[0].CreatedAt.Before(before), "login stamped %v, called at %v", entries[0].CreatedAt, before)
}

func TestLogin_TrimsUsername(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	pair, err := f.users.Login(context.Background(), "  alice\t", "password1")
	require.NoError(t, err)
	require.NoError(t, f.mock.ExpectationsWereMet())

	id, err := f.tokens.VerifyAccess(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, u.ID, id)
}

func TestLogin_InvalidCredentials(t *testing.T) {
	f := newFixture(t)
	f.register(t, "alice")

	_, err := f.users.Login(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, common.ErrorUnauthorized)

	_, err2 := f.users.Login(context.Background(), "nobody", "password1")
	assert.ErrorIs(t, err2, common.ErrorUnauthorized)
	assert.Equal(t, err.Error(), err2.Error())

	assert.Empty(t, f.store.ActivityEntries())
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogin_LookupError(t *testing.T) {
	fm := &faultyManager{}
	f := newFixtureWith(t, fm)
	f.register(t, "alice")
	fm.usersErr = errDB

	_, err := f.users.Login(context.Background(), "alice", "password1")
	assert.ErrorIs(t, err, errDB)
	assert.NotErrorIs(t, err, common.ErrorUnauthorized)
}

func TestLogin_ActivityFailureRollsBack(t *testing.T) {
	fm := &faultyManager{activityErr: errBoom{}}
	f := newFixtureWith(t, fm)
	f.register(t, "alice")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	pair, err := f.users.Login(context.Background(), "alice", "password1")
	require.Error(t, err)
	assert.Nil(t, pair)
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogin_TokenStoreFailureRollsBack(t *testing.T) {
	fm := &faultyManager{tokensErr: errBoom{}}
	f := newFixtureWith(t, fm)
	f.register(t, "alice")

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()

	_, err := f.users.Login(context.Background(), "alice", "password1")
	require.Error(t, err)
	assert.Empty(t, f.store.ActivityEntries())
	require.NoError(t, f.mock.ExpectationsWereMet())
}

func TestLogout_BlacklistsOnceAndRecordsActivity(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")
	pair := f.login(t, "alice")

	f.mock.ExpectBegin()
	f.mock.ExpectCommit()
	require.NoError(t, f.users.Logout(context.Background(), u.ID, pair.RefreshToken))

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	err := f.users.Logout(context.Background(), u.ID, pair.RefreshToken)
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	require.NoError(t, f.mock.ExpectationsWereMet())

	entries := f.store.ActivityEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, models.ActivityLogin, entries[0].Kind)
	assert.Equal(t, models.ActivityLogout, entries[1].Kind)
}

func TestLogout_Rejections(t *testing.T) {
	f := newFixture(t)
	alice := f.register(t, "alice")
	f.register(t, "bob")
	alicePair := f.login(t, "alice")
	bobPair := f.login(t, "bob")

	t.Run("missing token", func(t *testing.T) {
		err := f.users.Logout(context.Background(), alice.ID, "")
		assert.ErrorIs(t, err, common.ErrMissingToken)
	})

	t.Run("access token instead of refresh", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		err := f.users.Logout(context.Background(), alice.ID, alicePair.AccessToken)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("someone else's token", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		err := f.users.Logout(context.Background(), alice.ID, bobPair.RefreshToken)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		f.mock.ExpectBegin()
		f.mock.ExpectRollback()
		err := f.users.Logout(context.Background(), alice.ID, "not.a.jwt")
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	})

	require.NoError(t, f.mock.ExpectationsWereMet())
	assert.Len(t, f.store.ActivityEntries(), 2, "only the two logins are recorded")
}

func TestLogout_UnknownButWellSignedToken(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	forged, _, err := auth.GenerateToken(u.ID, auth.TokenTypeRefresh, []byte(f.cfg.SecretKey), f.cfg.RefreshTokenValidityDuration)
	require.NoError(t, err)

	f.mock.ExpectBegin()
	f.mock.ExpectRollback()
	assert.ErrorIs(t, f.users.Logout(context.Background(), u.ID, forged), common.ErrInvalidToken)
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	got, err := f.users.GetProfile(context.Background(), u.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
	assert.Equal(t, "alice@example.com", got.Email)

	_, err = f.users.GetProfile(context.Background(), "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestUpdateProfile_Success(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")
	other := f.register(t, "bob")

	got, err := f.users.UpdateProfile(context.Background(), u.ID, ProfileUpdate{
		Email:     strp("alice@new.example.com"),
		FirstName: strp("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice@new.example.com", got.Email)
	assert.Equal(t, "Alice", got.FirstName)
	assert.Empty(t, got.LastName)
	assert.Equal(t, "alice", got.UserName)

	bob, err := f.users.GetProfile(context.Background(), other.ID)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", bob.Email)
	assert.Empty(t, bob.FirstName)
}

func TestUpdateProfile_KeepOwnEmail(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")

	got, err := f.users.UpdateProfile(context.Background(), u.ID, ProfileUpdate{
		Email:    strp("alice@example.com"),
		LastName: strp("Liddell"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Liddell", got.LastName)
}

func TestUpdateProfile_EchoReadOnlyFields(t *testing.T) {
	f := newFixture(t)
	u := f.register(t, "alice")
	no := false

	got, err := f.users.UpdateProfile(context.Background(), u.ID, ProfileUpdate{
		Username:    strp("alice"),
		IsSuperuser: &no,
		Email:       strp("alice@example.com"),
		FirstName:   strp("Alice"),
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.UserName)
	assert.False(t, got.IsSuperuser)
	assert.Equal(t, "Alice", got.FirstName)
}

func TestUpdateProfile_Rejections(t *testing.T) {
	yes := true
	longName := strings.Repeat("ä", 151)

	tests := []struct {
		name     string
		in       ProfileUpdate
		field    string
		sentinel error
	}{
		{"username is read-only", ProfileUpdate{Username: strp("mallory")}, "username", common.ErrReadOnlyField},
		{"privilege is read-only", ProfileUpdate{IsSuperuser: &yes}, "is_superuser", common.ErrReadOnlyField},
		{"malformed email", ProfileUpdate{Email: strp("nope")}, "email", common.ErrInvalidEmail},
		{"email taken", ProfileUpdate{Email: strp("bob@example.com")}, "email", common.ErrDuplicateEmail},
		{"first name too long", ProfileUpdate{FirstName: strp(longName)}, "first_name", common.ErrorValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			u := f.register(t, "alice")
			f.register(t, "bob")

			_, err := f.users.UpdateProfile(context.Background(), u.ID, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
			assert.ErrorIs(t, err, tt.sentinel)

			got, _ := f.users.GetProfile(context.Background(), u.ID)
			assert.Equal(t, "alice", got.UserName)
			assert.False(t, got.IsSuperuser)
			assert.Equal(t, "alice@example.com", got.Email)
		})
	}
}

func TestUpdateProfile_UnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.users.UpdateProfile(context.Background(), "missing", ProfileUpdate{FirstName: strp("x")})
	assert.ErrorIs(t, err, common.ErrorNotFound)
}
