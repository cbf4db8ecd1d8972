package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/identity/store"
	"github.com/parleychat/parley/internal/identity/store/drivers/sqlite"
	"github.com/parleychat/parley/pkg/cryptox"
	"github.com/parleychat/parley/pkg/jwtx"
)

var testSecret = []byte("service-test-secret")

func newTestStore(t *testing.T) store.Store {
	t.Helper()

	s, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

// capturingDispatcher records enqueued confirmation codes.
type capturingDispatcher struct {
	mu    sync.Mutex
	sent  []string
	codes map[string]string // recipient -> code
}

func newCapturingDispatcher() *capturingDispatcher {
	return &capturingDispatcher{codes: make(map[string]string)}
}

func (d *capturingDispatcher) Enqueue(recipient, code string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, recipient)
	d.codes[recipient] = code
}

func (d *capturingDispatcher) codeFor(recipient string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.codes[recipient]
}

func newRegistrationService(st store.Store, dispatcher CodeDispatcher) *RegistrationService {
	return &RegistrationService{
		Store:      st,
		Hasher:     cryptox.NewHasher(""),
		Dispatcher: dispatcher,
		CodeTTL:    24 * time.Hour,
	}
}

func newTokenService(st store.Store) *TokenService {
	return &TokenService{
		Store:      st,
		Hasher:     cryptox.NewHasher(""),
		Signer:     jwtx.NewSigner(testSecret),
		Verifier:   jwtx.NewVerifier(testSecret, "identity-test"),
		Issuer:     "identity-test",
		AccessTTL:  jwtx.DefaultAccessTokenTTL,
		RefreshTTL: jwtx.DefaultRefreshTokenTTL,
	}
}
