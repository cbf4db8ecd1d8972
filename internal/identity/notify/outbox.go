package notify

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/sethvargo/go-retry"
	"golang.org/x/time/rate"
)

const (
	// deliveryAttempts bounds retries per notification: one initial try
	// plus this many retries with exponential backoff.
	deliveryAttempts = 3

	retryBase = 500 * time.Millisecond
)

// Notification is one pending confirmation-code delivery.
type Notification struct {
	Recipient string
	Code      string
}

// Outbox decouples notification delivery from command handling: Enqueue
// never blocks, a single worker drains the queue with a send rate cap
// and retries transient failures. Terminal failures are logged and the
// notification is lost — registration has already succeeded by then and
// stays succeeded.
type Outbox struct {
	notifier Notifier
	logger   *slog.Logger
	limiter  *rate.Limiter

	mu     sync.Mutex
	queue  chan Notification
	closed bool

	startOnce sync.Once
	done      chan struct{}
}

// NewOutbox creates an outbox holding at most size pending notifications
// and sending at most perMinute per minute.
func NewOutbox(notifier Notifier, logger *slog.Logger, size, perMinute int) *Outbox {
	return &Outbox{
		notifier: notifier,
		logger:   logger,
		limiter:  rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
		queue:    make(chan Notification, size),
		done:     make(chan struct{}),
	}
}

// Enqueue queues a notification without blocking. When the outbox is
// full or already stopped the notification is dropped and logged;
// callers never fail. Safe to call concurrently with Stop.
func (o *Outbox) Enqueue(recipient, code string) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.closed {
		o.logger.Warn("outbox stopped, dropping notification", "recipient", recipient)
		return
	}
	select {
	case o.queue <- Notification{Recipient: recipient, Code: code}:
	default:
		o.logger.Warn("outbox full, dropping notification", "recipient", recipient)
	}
}

// Start launches the delivery worker. ctx cancellation abandons pending
// deliveries in flight.
func (o *Outbox) Start(ctx context.Context) {
	o.startOnce.Do(func() {
		go o.run(ctx)
	})
}

// Stop closes the queue and waits for the worker to drain it. Stop is
// idempotent; Enqueue calls racing or following it are dropped.
func (o *Outbox) Stop() {
	o.mu.Lock()
	if !o.closed {
		o.closed = true
		close(o.queue)
	}
	o.mu.Unlock()
	<-o.done
}

func (o *Outbox) run(ctx context.Context) {
	defer close(o.done)
	for n := range o.queue {
		o.deliver(ctx, n)
	}
}

func (o *Outbox) deliver(ctx context.Context, n Notification) {
	if err := o.limiter.Wait(ctx); err != nil {
		o.logger.Warn("notification abandoned on shutdown", "recipient", n.Recipient)
		return
	}

	backoff := retry.WithMaxRetries(deliveryAttempts, retry.NewExponential(retryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := o.notifier.Send(ctx, n.Recipient, n.Code); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		o.logger.Error("notification delivery failed", "recipient", n.Recipient, "error", err)
		return
	}
	o.logger.Info("confirmation code sent", "recipient", n.Recipient)
}
