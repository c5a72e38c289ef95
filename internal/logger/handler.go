package logger

import (
	"context"
	"log/slog"

	"vocatus/backend/internal/middleware"
)

// ContextHandler decorates an slog.Handler with the request correlation id
// carried in the context, so every log line of a request can be tied together.
type ContextHandler struct {
	slog.Handler
}

func NewContextHandler(h slog.Handler) *ContextHandler {
	return &ContextHandler{Handler: h}
}

func (h *ContextHandler) Handle(ctx context.Context, r slog.Record) error {
	if id, ok := ctx.Value(middleware.CorrelationKey).(string); ok && id != "" {
		r.AddAttrs(slog.String("correlation_id", id))
	}
	return h.Handler.Handle(ctx, r)
}
