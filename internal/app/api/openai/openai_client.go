package openai

import "github.com/sashabaranov/go-openai"

// NewClient builds an OpenAI client. baseURL may be empty for the public API.
func NewClient(apiKey, baseURL string) *openai.Client {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return openai.NewClientWithConfig(config)
}
