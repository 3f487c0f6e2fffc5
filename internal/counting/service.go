// Package counting orchestrates single and batch token counting.
package counting

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/chasedovey/tokencounter/internal/domain"
)

// Counter is the tokenization seam the services depend on. The tokens
// registry satisfies it.
type Counter interface {
	// Count returns the token count and the elapsed milliseconds of the
	// tokenization call.
	Count(ctx context.Context, model, text string) (int, float64, error)

	// SupportsModel reports whether Count would accept the model.
	SupportsModel(model string) bool
}

// Service validates counting requests and delegates to the tokenizer.
type Service struct {
	counter     Counter
	concurrency int
}

// NewService creates a counting service. concurrency bounds parallel
// tokenization within one batch; values below 1 mean sequential.
func NewService(counter Counter, concurrency int) *Service {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Service{
		counter:     counter,
		concurrency: concurrency,
	}
}

// CountOne counts tokens in a single text. Empty or whitespace-only text
// is a validation error; tokenization failures propagate unchanged.
func (s *Service) CountOne(ctx context.Context, req domain.TokenRequest) (*domain.TokenResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrEmptyText()
	}

	count, elapsed, err := s.counter.Count(ctx, req.Model, req.Text)
	if err != nil {
		return nil, err
	}

	return &domain.TokenResult{
		TokenCount:       count,
		ProcessingTimeMs: elapsed,
	}, nil
}

// CountBatch counts tokens for every non-empty item, preserving filtered
// input order in the result. Model is a batch-level parameter: an
// unsupported model rejects the whole batch before any item is processed.
// Items missing a text_id are assigned "text{n}" by their 1-based
// position in the filtered sequence.
func (s *Service) CountBatch(ctx context.Context, model string, items []domain.BatchTextItem) (*domain.BatchResult, error) {
	filtered := make([]domain.BatchTextItem, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		filtered = append(filtered, item)
	}

	if len(filtered) == 0 {
		return nil, domain.ErrEmptyBatch()
	}

	if !s.counter.SupportsModel(model) {
		return nil, domain.ErrUnsupportedModel(model)
	}

	results := make([]domain.TokenResult, len(filtered))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, item := range filtered {
		g.Go(func() error {
			count, elapsed, err := s.counter.Count(gctx, model, item.Text)
			if err != nil {
				return fmt.Errorf("counting %s: %w", itemID(item, i), err)
			}
			results[i] = domain.TokenResult{
				TextID:           itemID(item, i),
				TokenCount:       count,
				ProcessingTimeMs: elapsed,
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, r := range results {
		total += r.TokenCount
	}

	return &domain.BatchResult{
		Results:     results,
		Model:       model,
		TotalTokens: total,
	}, nil
}

func itemID(item domain.BatchTextItem, idx int) string {
	if item.TextID != "" {
		return item.TextID
	}
	return fmt.Sprintf("text%d", idx+1)
}
