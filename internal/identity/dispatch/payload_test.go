package dispatch

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/identity/domain"
)

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, code, verr.Code)
}

func TestRegisterPayloadValidate(t *testing.T) {
	t.Parallel()

	valid := RegisterPayload{
		Email: "a@b.com", FullName: "A B", Role: "user",
		Password: "pw123456", Phone: "+71234567890",
	}
	require.NoError(t, valid.Validate())

	t.Run("required fields", func(t *testing.T) {
		for _, p := range []RegisterPayload{
			{FullName: "A B", Role: "user", Password: "pw"},
			{Email: "a@b.com", Role: "user", Password: "pw"},
			{Email: "a@b.com", FullName: "A B", Password: "pw"},
			{Email: "a@b.com", FullName: "A B", Role: "user"},
		} {
			requireCode(t, p.Validate(), domain.CodeMissingFields)
		}
	})

	t.Run("email shape", func(t *testing.T) {
		for _, email := range []string{"not-an-email", "a@b", "a b@c.com", "@b.com"} {
			p := valid
			p.Email = email
			requireCode(t, p.Validate(), domain.CodeInvalidEmail)
		}
	})

	t.Run("phone shape", func(t *testing.T) {
		for _, phone := range []string{"71234567890", "+7123", "+7123456789012345678", "+7-123-456-78-90"} {
			p := valid
			p.Phone = phone
			requireCode(t, p.Validate(), domain.CodeInvalidPhone)
		}
	})

	t.Run("phone is optional", func(t *testing.T) {
		p := valid
		p.Phone = ""
		require.NoError(t, p.Validate())
	})
}

func TestLoginPayloadValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&LoginPayload{Email: "a@b.com", Password: "pw"}).Validate())
	requireCode(t, (&LoginPayload{Email: "a@b.com"}).Validate(), domain.CodeMissingCredentials)
	requireCode(t, (&LoginPayload{Password: "pw"}).Validate(), domain.CodeMissingCredentials)
}

func TestConfirmPayloadValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&ConfirmPayload{Email: "a@b.com", ConfirmationCode: "123456"}).Validate())
	requireCode(t, (&ConfirmPayload{Email: "a@b.com"}).Validate(), domain.CodeMissingFields)
}

func TestRefreshPayloadValidate(t *testing.T) {
	t.Parallel()

	require.NoError(t, (&RefreshPayload{RefreshToken: "x.y.z"}).Validate())
	requireCode(t, (&RefreshPayload{}).Validate(), domain.CodeMissingToken)
}

func TestUpdateUserPayloadValidate(t *testing.T) {
	t.Parallel()

	name := "New Name"
	require.NoError(t, (&UpdateUserPayload{UserID: "01ABC", FullName: &name}).Validate())
	requireCode(t, (&UpdateUserPayload{FullName: &name}).Validate(), domain.CodeMissingFields)
	requireCode(t, (&UpdateUserPayload{UserID: "01ABC"}).Validate(), domain.CodeMissingFields)

	bad := "123"
	requireCode(t,
		(&UpdateUserPayload{UserID: "01ABC", Phone: &bad}).Validate(),
		domain.CodeInvalidPhone)

	t.Run("blocked_until requires is_blocked", func(t *testing.T) {
		until := "2026-09-01T00:00:00Z"
		requireCode(t,
			(&UpdateUserPayload{UserID: "01ABC", BlockedUntil: &until}).Validate(),
			domain.CodeMissingFields)

		blocked := true
		require.NoError(t, (&UpdateUserPayload{
			UserID: "01ABC", IsBlocked: &blocked, BlockedUntil: &until,
		}).Validate())
	})
}
