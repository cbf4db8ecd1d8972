package bus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/segmentio/kafka-go"

	"github.com/parleychat/parley/internal/identity/domain"
)

// ErrNoRequestID guards the one invariant of the response channel: a
// response without a correlation id can never be matched by the caller,
// so it must not be published at all.
var ErrNoRequestID = errors.New("bus: response without request id")

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Responder is the response correlator: it wraps a handler result with
// the request id of the command it answers and publishes it on the
// responses topic. This is the only place request ids are threaded.
type Responder struct {
	writer messageWriter
}

func NewResponder(brokers []string, topic string) *Responder {
	return &Responder{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.LeastBytes{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (r *Responder) Respond(ctx context.Context, requestID string, res domain.Result) error {
	if requestID == "" {
		return ErrNoRequestID
	}

	value, err := json.Marshal(domain.ResponseEnvelope{
		RequestID: requestID,
		Message:   res,
	})
	if err != nil {
		return fmt.Errorf("bus: marshal response: %w", err)
	}

	return r.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(requestID),
		Value: value,
	})
}

func (r *Responder) Close() error { return r.writer.Close() }
