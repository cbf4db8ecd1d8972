// Package bus is the Kafka plumbing around the dispatcher: a consumer
// loop pulling commands off the requests topic and a responder
// publishing correlated results.
package bus

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/parleychat/parley/internal/identity/dispatch"
	"github.com/parleychat/parley/internal/identity/domain"
	"github.com/parleychat/parley/pkg/slogx"
)

// Consumer pulls one command at a time and processes it to completion
// before committing the offset and pulling the next. Throughput scaling
// happens by running more instances, not by parallelism in here; the
// store's unique index is the only cross-instance guarantee.
type Consumer struct {
	reader     *kafka.Reader
	dispatcher *dispatch.Dispatcher
	responder  *Responder
	logger     *slog.Logger
}

func NewConsumer(
	brokers []string,
	topic, groupID string,
	dispatcher *dispatch.Dispatcher,
	responder *Responder,
	logger *slog.Logger,
) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			MaxWait:     time.Second,
			StartOffset: kafka.LastOffset,
		}),
		dispatcher: dispatcher,
		responder:  responder,
		logger:     logger,
	}
}

// Run blocks consuming commands until ctx is canceled or the reader is
// closed. Bad commands are logged and dropped; the loop itself only ever
// stops on shutdown or a broken broker connection.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, io.ErrClosedPipe) {
				return nil
			}
			c.logger.Error("commit failed", "error", err, "offset", msg.Offset)
		}
	}
}

// handle processes one command. Every failure path here drops the
// command without a response rather than crashing the loop; availability
// over completeness.
func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var env domain.CommandEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		c.logger.Warn("malformed command envelope, dropping",
			"error", err, "offset", msg.Offset)
		return
	}
	if env.RequestID == "" {
		c.logger.Warn("command without request id, dropping",
			"action", env.Message.Action, "offset", msg.Offset)
		return
	}

	ctx = slogx.WithRequestID(slogx.WithContext(ctx, c.logger), env.RequestID)
	log := slogx.FromContext(ctx)
	log.Debug("command received", "action", env.Message.Action)

	result, err := c.dispatcher.Dispatch(ctx, env.Message)
	if err != nil {
		log.Error("command dropped", "action", env.Message.Action, "error", err)
		return
	}
	if result == nil {
		return
	}

	if err := c.responder.Respond(ctx, env.RequestID, *result); err != nil {
		log.Error("response publish failed", "action", env.Message.Action, "error", err)
	}
}

// Close stops the reader; a blocked FetchMessage returns io.EOF.
func (c *Consumer) Close() error { return c.reader.Close() }
