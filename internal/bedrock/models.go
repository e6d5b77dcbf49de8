package bedrock

// anthropicVersion is the Messages API revision Bedrock expects in every
// request body.
const anthropicVersion = "bedrock-2023-05-31"

// messageRequest is the Anthropic Messages payload sent to InvokeModel
type messageRequest struct {
	AnthropicVersion string    `json:"anthropic_version"`
	MaxTokens        int       `json:"max_tokens"`
	Temperature      float64   `json:"temperature,omitempty"`
	Messages         []message `json:"messages"`
}

// message is a single conversation turn
type message struct {
	Role    string `json:"role"`    // "user" or "assistant"
	Content string `json:"content"` // message text
}

// messageResponse is the subset of the Messages response body we read
type messageResponse struct {
	ID         string         `json:"id"`
	Model      string         `json:"model"`
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
	Usage      usageInfo      `json:"usage"`
}

// contentBlock is one piece of model output; only text blocks are consumed
type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// usageInfo contains token usage for a request
type usageInfo struct {
	InputTokens  int `json:"input_tokens"`  // Number of input tokens
	OutputTokens int `json:"output_tokens"` // Number of output tokens
}
