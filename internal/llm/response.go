package llm

// Message roles used when assembling a request.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// Message is one turn of the request sent to a vendor.
type Message struct {
	Role    string
	Content string
}

// Response is the outcome of one generation call, immutable once built.
//
// Invariants: Success implies Content is a non-empty parsed object and Error
// is empty; failure implies Content is empty and Error is set. TotalTokens
// always equals PromptTokens + CompletionTokens on success; on failure the
// token and cost fields are zero because no usage was recorded.
type Response struct {
	Success bool `json:"success"`

	// Content is the parsed JSON object returned by the model.
	Content map[string]any `json:"content,omitempty"`

	// RawResponse is the unparsed text the vendor returned.
	RawResponse string `json:"raw_response"`

	LatencyMs        int64   `json:"latency_ms"`
	PromptTokens     int     `json:"prompt_tokens"`
	CompletionTokens int     `json:"completion_tokens"`
	TotalTokens      int     `json:"total_tokens"`
	EstimatedCostUSD float64 `json:"estimated_cost_usd"`

	// Provider and Model identify the adapter that actually produced this
	// response, which under fallback may differ from the configured primary.
	Provider string `json:"provider"`
	Model    string `json:"model"`

	// Error is the diagnostic message, set iff Success is false.
	Error string `json:"error,omitempty"`
}

// JSONValid reports whether the call succeeded with non-empty parsed content.
func (r *Response) JSONValid() bool {
	return r.Success && len(r.Content) > 0
}
