package stats

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"vocatus/backend/features/chat"
	"vocatus/backend/internal/middleware"
)

type UsageRepo interface {
	Totals(ctx context.Context) (*chat.UsageTotals, error)
}

type Index interface {
	IndexSize(ctx context.Context) (rows, dim int, err error)
}

type Handler struct {
	usageRepo UsageRepo
	index     Index
}

func NewHandler(u UsageRepo, i Index) *Handler {
	return &Handler{usageRepo: u, index: i}
}

type StatsResponse struct {
	Usage     *chat.UsageTotals `json:"usage"`
	Chunks    int               `json:"chunks"`
	Dimension int               `json:"dimension"`
}

func (h *Handler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	correlationID := middleware.GetCorrelationID(ctx)

	slog.InfoContext(ctx, "getting stats", "correlationId", correlationID)

	totals, err := h.usageRepo.Totals(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "failed to aggregate usage", "error", err, "correlationId", correlationID)
		h.writeError(ctx, w, "INTERNAL_ERROR", "failed to aggregate usage", http.StatusInternalServerError)
		return
	}

	// A missing vector store is an operational state, not a request failure.
	rows, dim, err := h.index.IndexSize(ctx)
	if err != nil {
		slog.WarnContext(ctx, "vector index unavailable", "error", err, "correlationId", correlationID)
		rows, dim = 0, 0
	}

	resp := StatsResponse{
		Usage:     totals,
		Chunks:    rows,
		Dimension: dim,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]interface{}{"data": resp}); err != nil {
		slog.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, code, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	resp := map[string]interface{}{
		"error": map[string]string{
			"code":    code,
			"message": message,
		},
		"correlationId": middleware.GetCorrelationID(ctx),
	}

	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}
