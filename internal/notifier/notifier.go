package notifier

import "context"

// Notifier delivers one formatted message to a channel
type Notifier interface {
	// Notify posts a single message. The message uses Telegram's HTML subset.
	Notify(ctx context.Context, message string) error
}

// Func adapts a plain function to Notifier
type Func func(ctx context.Context, message string) error

// Notify calls f
func (f Func) Notify(ctx context.Context, message string) error {
	return f(ctx, message)
}
