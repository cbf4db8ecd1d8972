package bus

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"

	"github.com/parleychat/parley/internal/identity/domain"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func TestResponderCorrelatesResponse(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	r := &Responder{writer: fw}

	res := domain.Succeed("login", "", map[string]string{"access_token": "abc"})
	require.NoError(t, r.Respond(context.Background(), "req-42", res))
	require.Len(t, fw.messages, 1)

	msg := fw.messages[0]
	require.Equal(t, "req-42", string(msg.Key))

	var env domain.ResponseEnvelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	require.Equal(t, "req-42", env.RequestID)
	require.Equal(t, "login", env.Message.Action)
	require.Equal(t, domain.StatusSuccess, env.Message.Status)
}

func TestResponderRefusesEmptyRequestID(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	r := &Responder{writer: fw}

	err := r.Respond(context.Background(), "", domain.Succeed("login", "", nil))
	require.ErrorIs(t, err, ErrNoRequestID)
	require.Empty(t, fw.messages)
}

func TestResponderPropagatesWriteFailure(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{err: errors.New("broker gone")}
	r := &Responder{writer: fw}

	err := r.Respond(context.Background(), "req-1", domain.Succeed("login", "", nil))
	require.Error(t, err)
}

func TestResponderClose(t *testing.T) {
	t.Parallel()

	fw := &fakeWriter{}
	r := &Responder{writer: fw}
	require.NoError(t, r.Close())
	require.True(t, fw.closed)
}
