package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestConfirmHappyPath(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	dispatcher := newCapturingDispatcher()
	reg := newRegistrationService(st, dispatcher)
	svc := &ConfirmationService{Store: st}

	_, err := reg.Register(ctx, RegisterInput{
		Email: "a@b.com", FullName: "A B", Role: "user", Password: "pw123456",
	})
	require.NoError(t, err)
	code := dispatcher.codeFor("a@b.com")
	require.NotEmpty(t, code)

	require.NoError(t, svc.Confirm(ctx, "a@b.com", code))

	user, err := st.Users().GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.True(t, user.IsEmailConfirmed)
	require.Nil(t, user.ConfirmationCode)
}

func TestConfirmWrongCodeLeavesRecordUnconfirmed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	dispatcher := newCapturingDispatcher()
	reg := newRegistrationService(st, dispatcher)
	svc := &ConfirmationService{Store: st}

	_, err := reg.Register(ctx, RegisterInput{
		Email: "a@b.com", FullName: "A B", Role: "user", Password: "pw123456",
	})
	require.NoError(t, err)

	err = svc.Confirm(ctx, "a@b.com", "000000")
	if dispatcher.codeFor("a@b.com") == "000000" {
		t.Skip("randomly drew the real code")
	}
	require.ErrorIs(t, err, ErrCodeMismatch)

	user, err := st.Users().GetUserByEmail(ctx, "a@b.com")
	require.NoError(t, err)
	require.False(t, user.IsEmailConfirmed)
	require.NotNil(t, user.ConfirmationCode)
}

func TestConfirmTwiceReturnsAlreadyConfirmed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	dispatcher := newCapturingDispatcher()
	reg := newRegistrationService(st, dispatcher)
	svc := &ConfirmationService{Store: st}

	_, err := reg.Register(ctx, RegisterInput{
		Email: "a@b.com", FullName: "A B", Role: "user", Password: "pw123456",
	})
	require.NoError(t, err)
	code := dispatcher.codeFor("a@b.com")

	require.NoError(t, svc.Confirm(ctx, "a@b.com", code))

	// Replaying the same code must not re-confirm.
	err = svc.Confirm(ctx, "a@b.com", code)
	require.ErrorIs(t, err, ErrAlreadyConfirmed)
}

func TestConfirmUnknownUser(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	svc := &ConfirmationService{Store: newTestStore(t)}
	err := svc.Confirm(ctx, "nobody@example.com", "123456")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestConfirmExpiredCode(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	st := newTestStore(t)
	dispatcher := newCapturingDispatcher()
	reg := newRegistrationService(st, dispatcher)
	reg.CodeTTL = -time.Minute // already expired at creation
	svc := &ConfirmationService{Store: st}

	_, err := reg.Register(ctx, RegisterInput{
		Email: "a@b.com", FullName: "A B", Role: "user", Password: "pw123456",
	})
	require.NoError(t, err)

	err = svc.Confirm(ctx, "a@b.com", dispatcher.codeFor("a@b.com"))
	require.ErrorIs(t, err, ErrCodeExpired)
}
