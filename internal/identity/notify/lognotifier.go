package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes codes to the log instead of sending mail. Used when
// no SMTP relay is configured, which is the normal dev setup.
type LogNotifier struct {
	Logger *slog.Logger
}

func (n *LogNotifier) Send(ctx context.Context, recipient, code string) error {
	n.Logger.Info("confirmation code (no SMTP relay configured)",
		"recipient", recipient, "code", code)
	return nil
}
