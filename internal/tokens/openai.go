package tokens

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

// OpenAICounter provides accurate token counts for OpenAI models using tiktoken.
type OpenAICounter struct {
	matcher *ModelMatcher
	// codecCache caches tokenizer codecs by encoding name
	codecCache map[tokenizer.Encoding]tokenizer.Codec
	cacheMu    sync.RWMutex
}

// NewOpenAICounter creates a new OpenAI token counter.
func NewOpenAICounter() *OpenAICounter {
	return &OpenAICounter{
		matcher: NewModelMatcher(
			// Prefixes for OpenAI models (including future gpt-5.x, gpt-6, etc.)
			// Note: "o" prefix matches o1, o3, o4 reasoning models
			[]string{"gpt-", "o1", "o3", "o4", "text-embedding", "text-davinci"},
			// Exact matches for legacy models
			[]string{"davinci", "curie", "babbage", "ada"},
		),
		codecCache: make(map[tokenizer.Encoding]tokenizer.Codec),
	}
}

// getCodec returns the tokenizer codec for a model.
func (c *OpenAICounter) getCodec(model string) (tokenizer.Codec, error) {
	// Try to get codec for the specific model first
	codec, err := tokenizer.ForModel(mapModelName(model))
	if err == nil {
		return codec, nil
	}

	// Fall back to encoding based on model prefix
	encoding := modelToEncoding(model)

	// Check cache
	c.cacheMu.RLock()
	if cached, ok := c.codecCache[encoding]; ok {
		c.cacheMu.RUnlock()
		return cached, nil
	}
	c.cacheMu.RUnlock()

	codec, err = tokenizer.Get(encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to get tokenizer encoding: %w", err)
	}

	c.cacheMu.Lock()
	c.codecCache[encoding] = codec
	c.cacheMu.Unlock()

	return codec, nil
}

// mapModelName maps a model string to tokenizer.Model
func mapModelName(model string) tokenizer.Model {
	model = strings.ToLower(model)

	switch {
	// GPT-5 family
	case model == "gpt-5-mini" || strings.HasPrefix(model, "gpt-5-mini-"):
		return tokenizer.GPT5Mini
	case model == "gpt-5-nano" || strings.HasPrefix(model, "gpt-5-nano-"):
		return tokenizer.GPT5Nano
	case strings.HasPrefix(model, "gpt-5"):
		return tokenizer.GPT5

	// GPT-4.1 family
	case strings.HasPrefix(model, "gpt-4.1") || strings.HasPrefix(model, "gpt-41"):
		return tokenizer.GPT41

	// GPT-4o family
	case strings.HasPrefix(model, "gpt-4o"):
		return tokenizer.GPT4o

	// O-series reasoning models
	case strings.HasPrefix(model, "o1"):
		if strings.Contains(model, "mini") {
			return tokenizer.O1Mini
		}
		if strings.Contains(model, "preview") {
			return tokenizer.O1Preview
		}
		return tokenizer.O1
	case strings.HasPrefix(model, "o3"):
		if strings.Contains(model, "mini") {
			return tokenizer.O3Mini
		}
		return tokenizer.O3
	case strings.HasPrefix(model, "o4"):
		return tokenizer.O4Mini

	// GPT-4 family
	case strings.HasPrefix(model, "gpt-4"):
		return tokenizer.GPT4

	// GPT-3.5 family
	case strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.GPT35Turbo

	// Text embedding
	case strings.HasPrefix(model, "text-embedding"):
		return tokenizer.TextEmbeddingAda002

	// Legacy models
	case strings.HasPrefix(model, "text-davinci-003"):
		return tokenizer.TextDavinci003
	case strings.HasPrefix(model, "text-davinci-002"):
		return tokenizer.TextDavinci002
	case strings.HasPrefix(model, "text-davinci"):
		return tokenizer.TextDavinci001
	case model == "davinci":
		return tokenizer.Davinci
	case model == "curie":
		return tokenizer.Curie
	case model == "babbage":
		return tokenizer.Babbage
	case model == "ada":
		return tokenizer.Ada

	default:
		// tokenizer.ForModel will handle unknown models
		return tokenizer.Model(model)
	}
}

// modelToEncoding maps model names to encoding names for fallback.
//
// Encoding reference:
// - O200kBase: GPT-5, GPT-4.1, GPT-4o, O1, O3, O4-mini and newer models
// - Cl100kBase: GPT-4, GPT-3.5-turbo, text-embedding-ada-002
// - P50kBase: text-davinci-003, text-davinci-002
// - R50kBase: davinci, curie, babbage, ada (legacy)
func modelToEncoding(model string) tokenizer.Encoding {
	model = strings.ToLower(model)

	switch {
	case strings.HasPrefix(model, "gpt-5"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4.1"), strings.HasPrefix(model, "gpt-41"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "gpt-4o"):
		return tokenizer.O200kBase
	case strings.HasPrefix(model, "o1"), strings.HasPrefix(model, "o3"), strings.HasPrefix(model, "o4"):
		return tokenizer.O200kBase

	case strings.HasPrefix(model, "gpt-4"):
		return tokenizer.Cl100kBase
	case strings.HasPrefix(model, "gpt-3.5"):
		return tokenizer.Cl100kBase

	case strings.HasPrefix(model, "text-embedding"):
		return tokenizer.Cl100kBase

	case strings.HasPrefix(model, "text-davinci"):
		return tokenizer.P50kBase

	case model == "davinci" || model == "curie" || model == "babbage" || model == "ada":
		return tokenizer.R50kBase

	default:
		// Most likely encoding for unknown/future models
		return tokenizer.O200kBase
	}
}

// CountText counts tokens in plain text using the model's encoding.
// Empty text is zero tokens.
func (c *OpenAICounter) CountText(ctx context.Context, model, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	codec, err := c.getCodec(model)
	if err != nil {
		return 0, err
	}

	ids, _, err := codec.Encode(text)
	if err != nil {
		return 0, fmt.Errorf("encoding text for %s: %w", model, err)
	}
	return len(ids), nil
}

// SupportsModel returns true for OpenAI models.
func (c *OpenAICounter) SupportsModel(model string) bool {
	return c.matcher.Matches(model)
}
