package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/parleychat/parley/internal/identity/store"
	"github.com/parleychat/parley/pkg/slogx"
)

type ConfirmationService struct {
	Store store.Store
}

// Confirm validates a submitted confirmation code and activates the
// account. The read and the confirming write run in one transaction so
// two concurrent confirmations cannot both succeed.
func (s *ConfirmationService) Confirm(ctx context.Context, email, code string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	now := time.Now().UTC()

	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		user, err := tx.Users().GetUserByEmail(ctx, email)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrUserNotFound
			}
			return err
		}

		if user.IsEmailConfirmed {
			return ErrAlreadyConfirmed
		}
		if user.ConfirmationExpiresAt != nil && now.After(*user.ConfirmationExpiresAt) {
			return ErrCodeExpired
		}
		if user.ConfirmationCode == nil ||
			subtle.ConstantTimeCompare([]byte(*user.ConfirmationCode), []byte(code)) != 1 {
			return ErrCodeMismatch
		}

		return tx.Users().ConfirmEmail(ctx, email)
	})
	if err != nil {
		return err
	}

	slogx.FromContext(ctx).Info("email confirmed", "email", email)
	return nil
}
