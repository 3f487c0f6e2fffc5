package domain

// TokenRequest is a single-text counting request.
type TokenRequest struct {
	Text  string `json:"text"`
	Model string `json:"model"`
}

// TokenResult is the outcome of counting one text.
type TokenResult struct {
	TextID           string  `json:"text_id,omitempty"`
	TokenCount       int     `json:"token_count"`
	ProcessingTimeMs float64 `json:"processing_time_ms"`
}

// BatchTextItem is one entry in a batch counting request. TextID is
// caller-supplied; when absent it is assigned as "text{n}" by 1-based
// input position.
type BatchTextItem struct {
	TextID string `json:"text_id,omitempty"`
	Text   string `json:"text"`
}

// BatchTokenRequest is a batch counting request. Model applies to the
// whole batch.
type BatchTokenRequest struct {
	Texts []BatchTextItem `json:"texts"`
	Model string          `json:"model"`
}

// BatchResult aggregates per-item results in filtered input order.
type BatchResult struct {
	Results     []TokenResult `json:"results"`
	Model       string        `json:"model"`
	TotalTokens int           `json:"total_tokens"`
}
