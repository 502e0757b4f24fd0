// Package notify implements the Notifier port for terminal and browser output.
package notify

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ericfisherdev/carepanel/internal/domain/port/driven"
)

// Compile-time interface satisfaction checks.
var (
	_ driven.Notifier = (*Writer)(nil)
	_ driven.Notifier = Flash{}
)

// Writer prints each notification as a line on an io.Writer.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter creates a Writer notifier. Concurrent notifications never
// interleave within a line.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Notify writes message followed by a newline. Write errors are dropped; a
// notification has nowhere else to go.
func (n *Writer) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, _ = fmt.Fprintln(n.w, message)
}

type flashKey struct{}

// Flashes collects the notifications raised while serving one request.
type Flashes struct {
	mu       sync.Mutex
	messages []string
}

// Messages returns a copy of the collected notifications in arrival order.
func (f *Flashes) Messages() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.messages...)
}

// WithFlashes returns a context carrying a fresh collector for Flash.
func WithFlashes(ctx context.Context) (context.Context, *Flashes) {
	f := &Flashes{}
	return context.WithValue(ctx, flashKey{}, f), f
}

// Flash delivers notifications to the collector attached to the context by
// WithFlashes. Without a collector the notification is dropped.
type Flash struct{}

// Notify appends message to the context's collector.
func (Flash) Notify(ctx context.Context, message string) {
	f, ok := ctx.Value(flashKey{}).(*Flashes)
	if !ok {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, message)
}
