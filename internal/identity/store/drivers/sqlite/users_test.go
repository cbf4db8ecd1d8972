package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/identity/domain"
	"github.com/parleychat/parley/internal/identity/store"
	"github.com/parleychat/parley/pkg/idx"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func testUser(email string) domain.User {
	now := time.Now().UTC().Truncate(time.Second)
	code := "123456"
	expires := now.Add(24 * time.Hour)
	return domain.User{
		ID:                    idx.New().String(),
		Email:                 email,
		FullName:              "A B",
		Role:                  "user",
		Phone:                 "+71234567890",
		PasswordHash:          "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		ConfirmationCode:      &code,
		ConfirmationExpiresAt: &expires,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
}

func TestCreateAndGetUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := testUser("a@b.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	got, err := s.Users().GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.Equal(t, u.ID, got.ID)
	require.Equal(t, u.Email, got.Email)
	require.Equal(t, u.PasswordHash, got.PasswordHash)
	require.False(t, got.IsEmailConfirmed)
	require.NotNil(t, got.ConfirmationCode)
	require.Equal(t, "123456", *got.ConfirmationCode)
	require.NotNil(t, got.ConfirmationExpiresAt)
	require.Nil(t, got.BlockedUntil)

	byID, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, got.Email, byID.Email)
}

func TestGetUserNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	_, err := s.Users().GetUserByEmail(ctx, "nobody@example.com")
	require.ErrorIs(t, err, store.ErrNotFound)

	_, err = s.Users().GetUserByID(ctx, idx.New().String())
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, testUser("a@b.com")))

	err := s.Users().CreateUser(ctx, testUser("a@b.com"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)
}

func TestUpdateUserPartial(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := testUser("a@b.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	name := "New Name"
	blocked := true
	until := time.Now().UTC().Add(time.Hour).Truncate(time.Second)
	require.NoError(t, s.Users().UpdateUser(ctx, u.ID, store.UserUpdate{
		FullName:     &name,
		IsBlocked:    &blocked,
		BlockedUntil: &until,
	}))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, "New Name", got.FullName)
	require.True(t, got.IsBlocked)
	require.NotNil(t, got.BlockedUntil)
	// Untouched fields keep their values.
	require.Equal(t, u.Role, got.Role)
	require.Equal(t, u.Phone, got.Phone)
}

func TestUpdateUserEmptyIsNoOp(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := testUser("a@b.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	// An empty update touches nothing, not even updated_at.
	require.NoError(t, s.Users().UpdateUser(ctx, u.ID, store.UserUpdate{}))

	got, err := s.Users().GetUserByID(ctx, u.ID)
	require.NoError(t, err)
	require.Equal(t, u.UpdatedAt.Truncate(time.Second), got.UpdatedAt.Truncate(time.Second))
}

func TestUpdateUserNotFound(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	name := "New Name"
	err := s.Users().UpdateUser(ctx, idx.New().String(), store.UserUpdate{FullName: &name})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestConfirmEmailClearsCodeAtomically(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	u := testUser("a@b.com")
	require.NoError(t, s.Users().CreateUser(ctx, u))

	require.NoError(t, s.Users().ConfirmEmail(ctx, "a@b.com"))

	got, err := s.Users().GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.True(t, got.IsEmailConfirmed)
	require.Nil(t, got.ConfirmationCode)
	require.Nil(t, got.ConfirmationExpiresAt)

	// The guarded WHERE clause makes a second confirm a no-op miss.
	err = s.Users().ConfirmEmail(ctx, "a@b.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestListUsersNeverCarriesPasswordHash(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().CreateUser(ctx, testUser("a@b.com")))
	require.NoError(t, s.Users().CreateUser(ctx, testUser("c@d.com")))

	users, err := s.Users().ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	for _, u := range users {
		require.Empty(t, u.PasswordHash)
		require.NotEmpty(t, u.Email)
	}
}

func TestWithTxRollsBackOnError(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestStore(t)

	sentinel := store.ErrNotFound
	err := s.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Users().CreateUser(ctx, testUser("a@b.com")); err != nil {
			return err
		}
		return sentinel
	})
	require.ErrorIs(t, err, sentinel)

	_, err = s.Users().GetUserByEmail(ctx, "a@b.com")
	require.ErrorIs(t, err, store.ErrNotFound)
}
