// Package tokens provides token counting for supported model families.
package tokens

import (
	"context"
	"strings"
	"time"

	"github.com/chasedovey/tokencounter/internal/domain"
)

// Registry selects a tokenizer for a model and shapes its output into
// (count, elapsed milliseconds). It supports:
// 1. Registered domain.Tokenizer implementations (tiktoken for OpenAI)
// 2. An optional allow-list restricting accepted model identifiers
// 3. An optional fallback estimator for models no tokenizer claims
type Registry struct {
	counters []domain.Tokenizer
	fallback domain.Tokenizer
	allow    map[string]struct{}
}

// NewRegistry creates an empty tokenizer registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a tokenizer to the registry.
func (r *Registry) Register(counter domain.Tokenizer) {
	r.counters = append(r.counters, counter)
}

// SetFallback sets the tokenizer used when no registered one supports a
// model. Leaving it unset makes unknown models an error.
func (r *Registry) SetFallback(counter domain.Tokenizer) {
	r.fallback = counter
}

// SetAllowedModels restricts accepted models to the given identifiers.
// An empty list removes the restriction.
func (r *Registry) SetAllowedModels(models []string) {
	if len(models) == 0 {
		r.allow = nil
		return
	}
	r.allow = make(map[string]struct{}, len(models))
	for _, m := range models {
		r.allow[m] = struct{}{}
	}
}

// SupportsModel reports whether Count would accept the model.
func (r *Registry) SupportsModel(model string) bool {
	if r.allow != nil {
		if _, ok := r.allow[model]; !ok {
			return false
		}
	}
	for _, counter := range r.counters {
		if counter.SupportsModel(model) {
			return true
		}
	}
	return r.fallback != nil
}

// Count tokenizes text with the tokenizer for the model and returns the
// token count and the wall-clock duration of the tokenization call in
// milliseconds. The measurement covers only the tokenizer invocation.
// Empty text counts as zero tokens, not an error.
func (r *Registry) Count(ctx context.Context, model, text string) (int, float64, error) {
	counter := r.lookup(model)
	if counter == nil {
		return 0, 0, domain.ErrUnsupportedModel(model)
	}

	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}

	start := time.Now()
	count, err := counter.CountText(ctx, model, text)
	elapsed := float64(time.Since(start)) / float64(time.Millisecond)
	if err != nil {
		return 0, 0, err
	}
	return count, elapsed, nil
}

func (r *Registry) lookup(model string) domain.Tokenizer {
	if r.allow != nil {
		if _, ok := r.allow[model]; !ok {
			return nil
		}
	}
	for _, counter := range r.counters {
		if counter.SupportsModel(model) {
			return counter
		}
	}
	return r.fallback
}

// Estimator approximates token counts from character length. It backs
// models without a real tokenizer when explicitly enabled.
type Estimator struct {
	// CharsPerToken is the average characters per token (default: 4)
	CharsPerToken float64
}

// NewEstimator creates a new token estimator.
func NewEstimator() *Estimator {
	return &Estimator{
		CharsPerToken: 4.0, // Reasonable default for most models
	}
}

// CountText estimates the token count of text.
func (e *Estimator) CountText(ctx context.Context, model, text string) (int, error) {
	return int(float64(len(text)) / e.CharsPerToken), nil
}

// SupportsModel returns true - estimator supports all models as a fallback.
func (e *Estimator) SupportsModel(model string) bool {
	return true
}

// ModelMatcher helps match model names to tokenizer families.
type ModelMatcher struct {
	prefixes []string
	exact    []string
}

// NewModelMatcher creates a new model matcher.
func NewModelMatcher(prefixes, exact []string) *ModelMatcher {
	return &ModelMatcher{
		prefixes: prefixes,
		exact:    exact,
	}
}

// Matches returns true if the model matches any pattern.
func (m *ModelMatcher) Matches(model string) bool {
	// Check exact matches first
	for _, e := range m.exact {
		if model == e {
			return true
		}
	}

	// Check prefix matches
	for _, p := range m.prefixes {
		if strings.HasPrefix(model, p) {
			return true
		}
	}

	return false
}
