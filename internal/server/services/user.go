// Package services contains server-side business logic: registration,
// login/logout with activity recording, profile management, token handling
// and the activity chart.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/cryptox"
	"github.com/dmitrijs2005/activitydash/internal/dbx"
	"github.com/dmitrijs2005/activitydash/internal/server/models"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/repomanager"
)

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ProfileUpdate is a partial profile change; nil fields are left untouched.
// Username and IsSuperuser are only present so that attempts to change them
// can be rejected.
type ProfileUpdate struct {
	Username    *string `json:"username"`
	Email       *string `json:"email"`
	FirstName   *string `json:"first_name"`
	LastName    *string `json:"last_name"`
	IsSuperuser *bool   `json:"is_superuser"`
}

// Seams for tests: argon2 with production parameters is slow by design.
var (
	hashPassword   = cryptox.HashPassword
	verifyPassword = cryptox.VerifyPassword
)

// dummyHash is verified against when the username is unknown so that both
// failure paths of Login do the same amount of work.
var dummyHash = sync.OnceValue(func() string {
	h, err := hashPassword(string(common.GenerateRandByteArray(16)))
	if err != nil {
		return ""
	}
	return h
})

// UserService implements the account workflow:
//   - Register: create non-privileged users
//   - Login: verify credentials, mint tokens and record a login event
//   - Logout: blacklist the refresh token and record a logout event
//   - GetProfile / UpdateProfile: the caller's own record
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	tokens      *TokenService
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *TokenService) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		tokens:      tokens,
	}
}

// Register validates in, rejects taken usernames and emails and stores a
// new user with an argon2id password hash.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	verr := &ValidationError{}
	verr.check("username", in.Username, common.ErrorValidation, usernameRules...)
	verr.check("email", in.Email, common.ErrInvalidEmail, emailRules...)
	verr.check("password", in.Password, common.ErrWeakPassword, passwordRules...)

	repo := s.repomanager.Users(s.db)

	if !verr.has("username") {
		exists, err := repo.UsernameExists(ctx, in.Username)
		if err != nil {
			return nil, fmt.Errorf("error checking username: %w", err)
		}
		if exists {
			verr.add("username", common.ErrDuplicateUsername, "A user with that username already exists.")
		}
	}
	if !verr.has("email") {
		exists, err := repo.EmailExists(ctx, in.Email, "")
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if exists {
			verr.add("email", common.ErrDuplicateEmail, "A user with that email already exists.")
		}
	}
	if !verr.empty() {
		return nil, verr
	}

	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	user, err := repo.Create(ctx, &models.User{
		UserName:     in.Username,
		Email:        in.Email,
		PasswordHash: hash,
	})
	if err != nil {
		// lost a race against a concurrent registration
		switch {
		case errors.Is(err, common.ErrDuplicateUsername):
			return nil, fieldError("username", common.ErrDuplicateUsername, "A user with that username already exists.")
		case errors.Is(err, common.ErrDuplicateEmail):
			return nil, fieldError("email", common.ErrDuplicateEmail, "A user with that email already exists.")
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and, in one transaction, issues a token pair
// and records a login event. Unknown usernames and wrong passwords both
// yield common.ErrorUnauthorized.
func (s *UserService) Login(ctx context.Context, username string, password string) (*TokenPair, error) {
	username = strings.TrimSpace(username)
	user, err := s.repomanager.Users(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_, _ = verifyPassword(password, dummyHash())
			return nil, common.ErrorUnauthorized
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}

	ok, err := verifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("error verifying password: %w", err)
	}
	if !ok {
		return nil, common.ErrorUnauthorized
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		pair, err = s.tokens.IssuePair(ctx, tx, user.ID)
		if err != nil {
			return err
		}
		if _, err := s.repomanager.Activity(tx).Append(ctx, user.ID, models.ActivityLogin); err != nil {
			return fmt.Errorf("error recording login: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout blacklists refreshToken and records a logout event in one
// transaction. Nothing is recorded when the token is rejected.
func (s *UserService) Logout(ctx context.Context, userID string, refreshToken string) error {
	if refreshToken == "" {
		return common.ErrMissingToken
	}

	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.tokens.Blacklist(ctx, tx, userID, refreshToken); err != nil {
			return err
		}
		if _, err := s.repomanager.Activity(tx).Append(ctx, userID, models.ActivityLogout); err != nil {
			return fmt.Errorf("error recording logout: %w", err)
		}
		return nil
	})
}

// GetProfile returns the caller's own user record.
func (s *UserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.repomanager.Users(s.db).GetByID(ctx, userID)
}

// UpdateProfile applies in to the caller's record. Changing the username or
// the privilege flag is rejected, though echoing the stored value back is
// allowed; a new email must be well formed and not used by another account.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, in ProfileUpdate) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	verr := &ValidationError{}
	if in.Username != nil && *in.Username != user.UserName {
		verr.add("username", common.ErrReadOnlyField, "This field is read-only.")
	}
	if in.IsSuperuser != nil && *in.IsSuperuser != user.IsSuperuser {
		verr.add("is_superuser", common.ErrReadOnlyField, "This field is read-only.")
	}
	if in.FirstName != nil {
		verr.check("first_name", *in.FirstName, common.ErrorValidation, personNameRules...)
	}
	if in.LastName != nil {
		verr.check("last_name", *in.LastName, common.ErrorValidation, personNameRules...)
	}

	var email string
	if in.Email != nil {
		email = strings.TrimSpace(*in.Email)
		verr.check("email", email, common.ErrInvalidEmail, emailRules...)
	}
	if !verr.empty() {
		return nil, verr
	}

	if in.Email != nil && email != user.Email {
		exists, err := repo.EmailExists(ctx, email, userID)
		if err != nil {
			return nil, fmt.Errorf("error checking email: %w", err)
		}
		if exists {
			return nil, fieldError("email", common.ErrDuplicateEmail, "A user with that email already exists.")
		}
		user.Email = email
	}
	if in.FirstName != nil {
		user.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		user.LastName = *in.LastName
	}

	updated, err := repo.UpdateProfile(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, fieldError("email", common.ErrDuplicateEmail, "A user with that email already exists.")
		}
		return nil, err
	}
	return updated, nil
}
