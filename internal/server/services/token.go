package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/activitydash/internal/common"
	"github.com/dmitrijs2005/activitydash/internal/dbx"
	"github.com/dmitrijs2005/activitydash/internal/server/auth"
	"github.com/dmitrijs2005/activitydash/internal/server/config"
	"github.com/dmitrijs2005/activitydash/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string `json:"access"`
	RefreshToken string `json:"refresh"`
}

// TokenService mints and validates JWTs and tracks issued refresh tokens so
// they can be blacklisted on logout.
type TokenService struct {
	repomanager                  repomanager.RepositoryManager
	jwtSecret                    []byte
	accessTokenValidityDuration  time.Duration
	refreshTokenValidityDuration time.Duration
}

func NewTokenService(m repomanager.RepositoryManager, cfg *config.Config) *TokenService {
	return &TokenService{
		repomanager:                  m,
		jwtSecret:                    []byte(cfg.SecretKey),
		accessTokenValidityDuration:  cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration: cfg.RefreshTokenValidityDuration,
	}
}

// IssuePair signs a new access/refresh pair for userID and records the
// refresh token's jti through tx.
func (s *TokenService) IssuePair(ctx context.Context, tx dbx.DBTX, userID string) (*TokenPair, error) {
	access, _, err := auth.GenerateToken(userID, auth.TokenTypeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error signing access token: %w", err)
	}

	refresh, claims, err := auth.GenerateToken(userID, auth.TokenTypeRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, fmt.Errorf("error signing refresh token: %w", err)
	}

	if err := s.repomanager.RefreshTokens(tx).Create(ctx, claims.ID, userID, claims.ExpiresAt.Time); err != nil {
		return nil, fmt.Errorf("error storing refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// VerifyAccess returns the user id carried by a valid access token.
// Refresh tokens are rejected.
func (s *TokenService) VerifyAccess(token string) (string, error) {
	if token == "" {
		return "", common.ErrMissingToken
	}
	claims, err := auth.ParseToken(token, auth.TokenTypeAccess, s.jwtSecret)
	if err != nil {
		return "", err
	}
	return claims.UserID(), nil
}

// Blacklist revokes refresh token owned by userID. Tokens that are
// malformed, expired, foreign or already blacklisted are rejected with
// common.ErrInvalidToken or common.ErrTokenExpired.
func (s *TokenService) Blacklist(ctx context.Context, tx dbx.DBTX, userID string, refreshToken string) error {
	claims, err := auth.ParseToken(refreshToken, auth.TokenTypeRefresh, s.jwtSecret)
	if err != nil {
		return err
	}
	if claims.UserID() != userID {
		return common.ErrInvalidToken
	}

	if err := s.repomanager.RefreshTokens(tx).Blacklist(ctx, claims.ID, userID); err != nil {
		if errors.Is(err, common.ErrInvalidToken) {
			return err
		}
		return fmt.Errorf("error blacklisting refresh token: %w", err)
	}
	return nil
}
