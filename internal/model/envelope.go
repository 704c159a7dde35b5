package model

// Usage records token consumption reported by a generative endpoint.
type Usage struct {
	InputTokens  int `json:"input_tokens,omitempty"`
	OutputTokens int `json:"output_tokens,omitempty"`
	TotalTokens  int `json:"total_tokens,omitempty"`
}

// GenResult is the uniform envelope returned by every generative vendor
// operation. Transport failures are folded into Error, never raised.
type GenResult struct {
	Success   bool     `json:"success"`
	Response  string   `json:"response,omitempty"`
	Model     string   `json:"model,omitempty"`
	Error     string   `json:"error,omitempty"`
	Usage     *Usage   `json:"usage,omitempty"`
	Citations []string `json:"citations,omitempty"`
}

// GenFailure builds a failed envelope from an error.
func GenFailure(err error) GenResult {
	return GenResult{Success: false, Error: err.Error()}
}
