package driven

import "context"

// Notifier defines the driven port for user-visible notifications. Every
// login ends in exactly one Notify call.
type Notifier interface {
	Notify(ctx context.Context, message string)
}
