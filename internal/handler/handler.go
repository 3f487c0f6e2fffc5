// Package handler exposes the token counting HTTP surface.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/chasedovey/tokencounter/internal/auth"
	"github.com/chasedovey/tokencounter/internal/counting"
	"github.com/chasedovey/tokencounter/internal/domain"
	"github.com/chasedovey/tokencounter/internal/ratelimit"
	"github.com/chasedovey/tokencounter/internal/server"
	"github.com/chasedovey/tokencounter/internal/storage"
)

type Handler struct {
	service *counting.Service
	store   storage.UsageStore
	logger  *slog.Logger
}

func New(service *counting.Service, store storage.UsageStore, logger *slog.Logger) *Handler {
	if store == nil {
		store = storage.Noop{}
	}
	return &Handler{
		service: service,
		store:   store,
		logger:  logger,
	}
}

// Mount registers the routes. The health probe stays open; counting
// routes require Basic auth and then rate-limit admission, in that order
// so 401 takes precedence over 429.
func (h *Handler) Mount(r chi.Router, verifier *auth.Verifier, limiter *ratelimit.ClientLimiter) {
	r.Get("/v1/health", h.HandleHealth)

	r.Group(func(r chi.Router) {
		r.Use(server.BasicAuthMiddleware(verifier))
		r.Use(server.RateLimitMiddleware(limiter))
		r.Post("/v1/tokens/count", h.HandleCount)
		r.Post("/v1/tokens/batch-count", h.HandleBatchCount)
	})
}

// HandleHealth is the liveness probe. No auth, no rate limit.
func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	server.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// HandleCount counts tokens in a single text.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	var req domain.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, domain.ErrInvalidRequest("invalid request body").
			WithCode(domain.ErrorCodeMalformedBody))
		return
	}

	server.AddLogField(r.Context(), "model", req.Model)

	result, err := h.service.CountOne(r.Context(), req)
	if err != nil {
		server.AddError(r.Context(), err)
		server.WriteError(w, err)
		return
	}

	h.recordUsage(r, req.Model, 1, result.TokenCount, result.ProcessingTimeMs)
	server.WriteJSON(w, http.StatusOK, result)
}

// HandleBatchCount counts tokens for each non-empty text in a batch.
func (h *Handler) HandleBatchCount(w http.ResponseWriter, r *http.Request) {
	var req domain.BatchTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		server.WriteError(w, domain.ErrInvalidRequest("invalid request body").
			WithCode(domain.ErrorCodeMalformedBody))
		return
	}

	server.AddLogField(r.Context(), "model", req.Model)

	result, err := h.service.CountBatch(r.Context(), req.Model, req.Texts)
	if err != nil {
		server.AddError(r.Context(), err)
		server.WriteError(w, err)
		return
	}

	var elapsed float64
	for _, item := range result.Results {
		elapsed += item.ProcessingTimeMs
	}
	h.recordUsage(r, req.Model, len(result.Results), result.TotalTokens, elapsed)

	server.WriteJSON(w, http.StatusOK, result)
}

// recordUsage writes the audit row for a successful count. Best-effort: a
// storage failure is logged, never surfaced to the client. The counted
// text is never stored.
func (h *Handler) recordUsage(r *http.Request, model string, textCount, totalTokens int, durationMs float64) {
	rec := &storage.UsageRecord{
		ID:          uuid.New().String(),
		Principal:   server.GetPrincipal(r.Context()),
		Route:       r.URL.Path,
		Model:       model,
		TextCount:   textCount,
		TotalTokens: totalTokens,
		DurationMs:  durationMs,
		Status:      http.StatusOK,
		CreatedAt:   time.Now(),
	}

	// Detached context: recording should outlive a client disconnect.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := h.store.RecordUsage(ctx, rec); err != nil {
		h.logger.Warn("failed to record usage",
			slog.String("route", rec.Route),
			slog.String("error", err.Error()),
		)
	}
}
