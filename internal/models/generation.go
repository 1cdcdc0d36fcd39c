package models

// GenerationRequest is a system/user message pair sent to a text-generation provider.
type GenerationRequest struct {
	SystemPrompt string
	UserPrompt   string
	RequestID    string
}

// GenerationResponse is the provider's reply.
type GenerationResponse struct {
	Content  string             `json:"content"`
	Metadata GenerationMetadata `json:"metadata"`
}

// additional information about a generation call
type GenerationMetadata struct {
	ProcessingTime int    `json:"processing_time_ms"`
	Provider       string `json:"provider"`
	Model          string `json:"model"`
}
