package service

import (
	"context"
	"errors"

	"github.com/parleychat/parley/internal/identity/domain"
	"github.com/parleychat/parley/internal/identity/store"
)

type DirectoryService struct {
	Store store.Store
}

// ListUsers returns the redacted directory listing. The store never
// selects credential columns for listings; the Redact pass on top keeps
// the wire type free of a hash field entirely.
func (s *DirectoryService) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	public := make([]domain.PublicUser, 0, len(users))
	for _, u := range users {
		public = append(public, u.Redact())
	}
	return public, nil
}

// UpdateUser applies an administrative partial update.
func (s *DirectoryService) UpdateUser(ctx context.Context, id string, upd store.UserUpdate) error {
	err := s.Store.Users().UpdateUser(ctx, id, upd)
	if errors.Is(err, store.ErrNotFound) {
		return ErrUserNotFound
	}
	return err
}
