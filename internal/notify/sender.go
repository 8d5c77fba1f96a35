package notify

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnregisteredToken is the terminal delivery failure for a token that is
// invalid or no longer registered (e.g. the app was uninstalled). Senders
// must return it, possibly wrapped, so the dispatcher can clear the stored
// token.
var ErrUnregisteredToken = errors.New("push token is not registered")

// Notification is a push message: user-visible title/body plus the data
// payload the receiving client acts on.
type Notification struct {
	Title string
	Body  string
	Data  map[string]string
}

// Sender delivers a notification to a single push token. Implementations
// wrap a real push provider; delivery is best-effort and retried by the
// dispatcher, not the sender.
type Sender interface {
	Send(ctx context.Context, token string, n Notification) error
}

// LogSender logs notifications instead of delivering them. It is the default
// when no push provider is configured.
type LogSender struct {
	Logger *slog.Logger
}

func (s LogSender) Send(_ context.Context, token string, n Notification) error {
	s.Logger.Info("push (log only)",
		"token", token,
		"title", n.Title,
		"body", n.Body,
		"type", n.Data["type"],
	)
	return nil
}
