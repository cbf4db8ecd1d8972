package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/parleychat/parley/internal/identity/domain"
	"github.com/parleychat/parley/internal/identity/store"
	"github.com/parleychat/parley/pkg/cryptox"
	"github.com/parleychat/parley/pkg/jwtx"
	"github.com/parleychat/parley/pkg/slogx"
)

type TokenService struct {
	Store      store.Store
	Hasher     *cryptox.Hasher
	Signer     *jwtx.Signer
	Verifier   *jwtx.Verifier
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// Login verifies the credentials and issues an access/refresh token pair
// plus the user profile. Unconfirmed accounts are rejected before the
// password is even looked at.
func (s *TokenService) Login(ctx context.Context, email, password string) (domain.SessionProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.Store.Users().GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SessionProfile{}, ErrUserNotFound
		}
		return domain.SessionProfile{}, err
	}

	if !user.IsEmailConfirmed {
		return domain.SessionProfile{}, ErrEmailUnconfirmed
	}
	if !s.Hasher.Verify(password, user.PasswordHash) {
		slogx.FromContext(ctx).Info("login rejected", "email", email)
		return domain.SessionProfile{}, ErrWrongPassword
	}

	return s.issueSession(user)
}

// Refresh verifies a refresh token and issues a fresh pair. Expired and
// invalid tokens are distinct outcomes so the caller can decide between
// prompting a re-login and reporting tampering.
func (s *TokenService) Refresh(ctx context.Context, refreshToken string) (domain.SessionProfile, error) {
	claims, err := s.Verifier.Verify(refreshToken)
	if err != nil {
		if errors.Is(err, jwtx.ErrExpired) {
			return domain.SessionProfile{}, ErrTokenExpired
		}
		return domain.SessionProfile{}, ErrTokenInvalid
	}

	// Re-resolve the subject so a record updated (or gone) since issuance
	// is reflected in the new claims.
	user, err := s.Store.Users().GetUserByEmail(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.SessionProfile{}, ErrUserNotFound
		}
		return domain.SessionProfile{}, err
	}

	return s.issueSession(user)
}

func (s *TokenService) issueSession(u domain.User) (domain.SessionProfile, error) {
	now := time.Now().UTC()

	access, err := s.Signer.Sign(
		jwtx.NewClaims(u.Email, u.Role, u.FullName, u.Phone, s.Issuer, s.AccessTTL, now))
	if err != nil {
		return domain.SessionProfile{}, err
	}
	refresh, err := s.Signer.Sign(
		jwtx.NewClaims(u.Email, u.Role, u.FullName, u.Phone, s.Issuer, s.RefreshTTL, now))
	if err != nil {
		return domain.SessionProfile{}, err
	}

	return domain.SessionProfile{
		UserID:   u.ID,
		Email:    u.Email,
		FullName: u.FullName,
		Role:     u.Role,
		Phone:    u.Phone,
		TokenPair: domain.TokenPair{
			AccessToken:  access,
			RefreshToken: refresh,
		},
	}, nil
}
