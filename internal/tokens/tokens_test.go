package tokens

import (
	"context"
	"errors"
	"testing"

	"github.com/chasedovey/tokencounter/internal/domain"
)

func TestOpenAICounter_CountText(t *testing.T) {
	c := NewOpenAICounter()

	tests := []struct {
		name      string
		model     string
		text      string
		minTokens int
		maxTokens int
	}{
		{"empty text", "gpt-3.5-turbo", "", 0, 0},
		{"simple sentence", "gpt-3.5-turbo", "Hello, how are you today?", 5, 10},
		{"common words", "gpt-4", "The quick brown fox jumps over the lazy dog.", 8, 12},
		{"code snippet", "gpt-4", "def hello(): print('Hello, World!')", 8, 15},
		{"legacy model", "text-davinci-003", "Hello world", 2, 4},
		{"numbers", "gpt-3.5-turbo", "123456789 and 987654321", 5, 12},
		{"single word", "gpt-4o", "hello", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := c.CountText(context.Background(), tt.model, tt.text)
			if err != nil {
				t.Fatalf("CountText() error = %v", err)
			}
			if got < tt.minTokens || got > tt.maxTokens {
				t.Errorf("CountText(%q) = %d, want between %d and %d",
					tt.text, got, tt.minTokens, tt.maxTokens)
			}
		})
	}
}

func TestOpenAICounter_SupportsModel(t *testing.T) {
	c := NewOpenAICounter()

	tests := []struct {
		model    string
		expected bool
	}{
		{"gpt-3.5-turbo", true},
		{"gpt-4", true},
		{"gpt-4o", true},
		{"text-davinci-003", true},
		{"o1-preview", true},
		{"davinci", true},
		{"claude-3-sonnet", false},
		{"not-a-model", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := c.SupportsModel(tt.model); got != tt.expected {
				t.Errorf("SupportsModel(%q) = %v, want %v", tt.model, got, tt.expected)
			}
		})
	}
}

func TestRegistry_Count(t *testing.T) {
	r := NewRegistry()
	r.Register(NewOpenAICounter())

	count, elapsed, err := r.Count(context.Background(), "gpt-3.5-turbo", "Hello world")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count <= 0 {
		t.Errorf("Count() = %d, want positive", count)
	}
	if elapsed < 0 {
		t.Errorf("elapsed = %f, want non-negative", elapsed)
	}
}

func TestRegistry_EmptyTextIsZero(t *testing.T) {
	r := NewRegistry()
	r.Register(NewOpenAICounter())

	count, _, err := r.Count(context.Background(), "gpt-4", "")
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 0 {
		t.Errorf("Count(\"\") = %d, want 0", count)
	}
}

func TestRegistry_UnsupportedModel(t *testing.T) {
	r := NewRegistry()
	r.Register(NewOpenAICounter())

	_, _, err := r.Count(context.Background(), "not-a-model", "Hello")
	if err == nil {
		t.Fatal("Count() succeeded for unknown model")
	}

	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("error = %T, want *domain.APIError", err)
	}
	if apiErr.Type != domain.ErrorTypeUnsupportedModel {
		t.Errorf("error type = %q, want %q", apiErr.Type, domain.ErrorTypeUnsupportedModel)
	}
	if apiErr.HTTPStatusCode() != 422 {
		t.Errorf("status = %d, want 422", apiErr.HTTPStatusCode())
	}
}

func TestRegistry_AllowList(t *testing.T) {
	r := NewRegistry()
	r.Register(NewOpenAICounter())
	r.SetAllowedModels([]string{"gpt-3.5-turbo", "gpt-4"})

	if !r.SupportsModel("gpt-3.5-turbo") {
		t.Error("allow-listed model rejected")
	}

	// Supported by tiktoken but not on the allow-list.
	if r.SupportsModel("gpt-4o") {
		t.Error("model outside allow-list accepted")
	}

	_, _, err := r.Count(context.Background(), "gpt-4o", "Hello")
	var apiErr *domain.APIError
	if !errors.As(err, &apiErr) || apiErr.Type != domain.ErrorTypeUnsupportedModel {
		t.Errorf("Count() error = %v, want unsupported_model", err)
	}
}

func TestRegistry_Fallback(t *testing.T) {
	r := NewRegistry()
	r.Register(NewOpenAICounter())

	// Without a fallback, unknown models fail.
	if r.SupportsModel("llama-2") {
		t.Error("unknown model accepted without fallback")
	}

	r.SetFallback(NewEstimator())

	count, _, err := r.Count(context.Background(), "llama-2", "Hello world, this is a test.")
	if err != nil {
		t.Fatalf("Count() with fallback error = %v", err)
	}
	if count <= 0 {
		t.Errorf("fallback Count() = %d, want positive", count)
	}
}

func TestEstimator_CountText(t *testing.T) {
	e := NewEstimator()

	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"abcd", 1},
		{"abcdefgh", 2},
		{"ab", 0},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			got, err := e.CountText(context.Background(), "any-model", tt.text)
			if err != nil {
				t.Fatalf("CountText() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("CountText(%q) = %d, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestModelMatcher(t *testing.T) {
	matcher := NewModelMatcher(
		[]string{"gpt-", "text-davinci"},
		[]string{"davinci", "curie"},
	)

	tests := []struct {
		model    string
		expected bool
	}{
		{"gpt-4", true},
		{"gpt-3.5-turbo", true},
		{"text-davinci-003", true},
		{"davinci", true},
		{"curie", true},
		{"llama-2", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.model, func(t *testing.T) {
			if got := matcher.Matches(tt.model); got != tt.expected {
				t.Errorf("Matches(%q) = %v, want %v", tt.model, got, tt.expected)
			}
		})
	}
}

func BenchmarkOpenAICounter_CountText(b *testing.B) {
	c := NewOpenAICounter()
	text := "Can you explain quantum computing in simple terms? I'd like to understand the basics of qubits, superposition, and entanglement."

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.CountText(context.Background(), "gpt-3.5-turbo", text)
	}
}
