package logger

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// queueKey and itemKey are private types to prevent collisions with other context keys.
type (
	queueKey struct{}
	itemKey  struct{}
)

// ContextExtractor pulls a slog attribute out of a context. Registered
// extractors run on every Handle call, so request-scoped values such as
// the current queue or item stay fresh instead of being cached at logger
// construction.
type ContextExtractor func(ctx context.Context) (slog.Attr, bool)

// ContextWithQueue tags the context with the queue a task belongs to.
// The schedulers attach it to every handler invocation so handler-side
// logging can identify its queue without threading the name explicitly.
func ContextWithQueue(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, queueKey{}, name)
}

// QueueFromContext retrieves the queue name from the context.
// Returns an empty string and false if no queue is set.
func QueueFromContext(ctx context.Context) (string, bool) {
	name, ok := ctx.Value(queueKey{}).(string)
	return name, ok
}

// ContextWithItem tags the context with the identity of the queued item
// currently being processed.
func ContextWithItem(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, itemKey{}, id)
}

// ItemFromContext retrieves the item ID from the context.
// Returns the zero UUID and false if no item is set.
func ItemFromContext(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(itemKey{}).(uuid.UUID)
	return id, ok
}

// QueueExtractor returns a ContextExtractor that injects the queue name
// carried by the context under the key "queue".
func QueueExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if name, ok := QueueFromContext(ctx); ok {
			return Queue(name), true
		}
		return slog.Attr{}, false
	}
}

// ItemExtractor returns a ContextExtractor that injects the item ID
// carried by the context under the key "item_id".
func ItemExtractor() ContextExtractor {
	return func(ctx context.Context) (slog.Attr, bool) {
		if id, ok := ItemFromContext(ctx); ok {
			return ItemID(id.String()), true
		}
		return slog.Attr{}, false
	}
}

// ctxHandler runs the registered extractors against each record's context
// before delegating to the concrete handler. Extraction happens per log
// call rather than per logger, so the same logger instance serves every
// queue and item.
type ctxHandler struct {
	next       slog.Handler
	extractors []ContextExtractor
}

func (h *ctxHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

func (h *ctxHandler) Handle(ctx context.Context, rec slog.Record) error {
	for _, ex := range h.extractors {
		if attr, ok := ex(ctx); ok {
			rec.AddAttrs(attr)
		}
	}
	return h.next.Handle(ctx, rec)
}

func (h *ctxHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &ctxHandler{next: h.next.WithAttrs(attrs), extractors: h.extractors}
}

func (h *ctxHandler) WithGroup(name string) slog.Handler {
	return &ctxHandler{next: h.next.WithGroup(name), extractors: h.extractors}
}
