package domain

import "context"

// Tokenizer counts tokens in plain text for a family of models.
type Tokenizer interface {
	// CountText returns the number of tokens in text for the given model.
	CountText(ctx context.Context, model, text string) (int, error)

	// SupportsModel returns true if this tokenizer supports the given model.
	SupportsModel(model string) bool
}
