package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/parleychat/parley/internal/identity/domain"
	"github.com/parleychat/parley/internal/identity/store"
	"github.com/parleychat/parley/pkg/cryptox"
	"github.com/parleychat/parley/pkg/idx"
	"github.com/parleychat/parley/pkg/slogx"
)

// DefaultCodeLength is the number of digits in a confirmation code.
const DefaultCodeLength = 6

// CodeDispatcher hands a confirmation code off for best-effort delivery.
// Implementations must not block; delivery failure never reaches the
// registration flow.
type CodeDispatcher interface {
	Enqueue(recipient, code string)
}

type RegistrationService struct {
	Store      store.Store
	Hasher     *cryptox.Hasher
	Dispatcher CodeDispatcher
	CodeTTL    time.Duration
	CodeLength int
}

type RegisterInput struct {
	Email    string
	FullName string
	Role     string
	Password string
	Phone    string
	Address  string
}

// Register creates an unconfirmed user record and queues the
// confirmation code for delivery. The input is assumed validated at the
// dispatch boundary; email arrives syntactically valid but is
// case-normalized here so the uniqueness key is canonical.
func (s *RegistrationService) Register(ctx context.Context, in RegisterInput) (domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}

	length := s.CodeLength
	if length <= 0 {
		length = DefaultCodeLength
	}
	code, err := cryptox.GenerateNumericCode(length)
	if err != nil {
		return domain.User{}, err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(s.CodeTTL)
	user := domain.User{
		ID:                    idx.New().String(),
		Email:                 email,
		FullName:              in.FullName,
		Role:                  in.Role,
		Phone:                 in.Phone,
		Address:               in.Address,
		PasswordHash:          hash,
		ConfirmationCode:      &code,
		ConfirmationExpiresAt: &expiresAt,
		CreatedAt:             now,
		UpdatedAt:             now,
	}

	// No existence pre-check: the unique index decides, which closes the
	// race between concurrent registrations for the same email.
	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.User{}, ErrDuplicateEmail
		}
		return domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "user_id", user.ID, "email", email)

	if s.Dispatcher != nil {
		s.Dispatcher.Enqueue(email, code)
	}

	return user, nil
}
