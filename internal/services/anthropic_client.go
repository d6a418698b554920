// Package services provides LLM client implementations and core services for the Seminar CLI.
package services

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"seminar/internal/logger"
	"seminar/pkg/seminartypes"
)

// AnthropicClient implements the LLMClient interface for Anthropic's API.
// It provides lazy initialization of the Anthropic client and handles
// all Anthropic-specific communication logic.
type AnthropicClient struct {
	apiKey string
	model  string
	client *anthropic.Client
}

// NewAnthropicClient creates a new Anthropic client with lazy initialization.
// The actual Anthropic client is created only when the first request is made.
func NewAnthropicClient(apiKey, model string) *AnthropicClient {
	return &AnthropicClient{
		apiKey: apiKey,
		model:  model,
		client: nil, // Will be initialized lazily
	}
}

// GetProviderName returns the provider name for this client.
func (c *AnthropicClient) GetProviderName() string {
	return "anthropic"
}

// IsConfigured returns true if the client has a valid API key.
func (c *AnthropicClient) IsConfigured() bool {
	return c.apiKey != ""
}

// initializeClientIfNeeded initializes the Anthropic client if it hasn't been initialized yet.
func (c *AnthropicClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil // Already initialized
	}

	if c.apiKey == "" {
		return fmt.Errorf("anthropic API key not configured")
	}

	client := anthropic.NewClient(option.WithAPIKey(c.apiKey))
	c.client = &client

	logger.Debug("Anthropic client initialized", "provider", "anthropic")
	return nil
}

// SendChatCompletion sends a chat completion request to Anthropic.
func (c *AnthropicClient) SendChatCompletion(ctx context.Context, req seminartypes.CompletionRequest) (string, error) {
	logger.Debug("Anthropic SendChatCompletion starting", "model", c.model, "conversation", req.ConversationID)

	if err := c.initializeClientIfNeeded(); err != nil {
		return "", fmt.Errorf("failed to initialize Anthropic client: %w", err)
	}

	messages, additionalSystemInstructions := c.convertTurnsToAnthropic(req)
	logger.Debug("Messages converted", "message_count", len(messages))

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 1024, // Default, overridden below when the request sets one
		Messages:  messages,
	}

	// Anthropic takes system content out of band, so combine the composed
	// prompt with any system turns found in the conversation.
	systemPrompt := req.SystemPrompt
	if additionalSystemInstructions != "" {
		if systemPrompt != "" {
			systemPrompt += "\n\n" + additionalSystemInstructions
		} else {
			systemPrompt = additionalSystemInstructions
		}
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemPrompt},
		}
	}

	if req.Params.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Params.Temperature)
	}
	if req.Params.MaxTokens > 0 {
		params.MaxTokens = int64(req.Params.MaxTokens)
	}

	logger.Debug("Sending Anthropic request", "model", c.model)
	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("Anthropic request failed", "error", err)
		return "", fmt.Errorf("anthropic request failed: %w", err)
	}

	if len(message.Content) == 0 {
		logger.Error("No response content returned")
		return "", fmt.Errorf("no response content returned")
	}

	var content string
	for _, block := range message.Content {
		content += block.Text
	}

	if content == "" {
		logger.Error("Empty response content")
		return "", fmt.Errorf("empty response content")
	}

	logger.Debug("Anthropic response received", "content_length", len(content))
	return content, nil
}

// convertTurnsToAnthropic converts a completion request to Anthropic message format.
// Returns the conversation messages and any system-turn content, which
// Anthropic accepts only through the top-level system field.
func (c *AnthropicClient) convertTurnsToAnthropic(req seminartypes.CompletionRequest) ([]anthropic.MessageParam, string) {
	messages := make([]anthropic.MessageParam, 0, len(req.PriorTurns)+1)
	var additionalSystemInstructions []string

	for _, turn := range req.PriorTurns {
		switch turn.Role {
		case "user":
			messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(turn.Content)))
		case "assistant":
			messages = append(messages, anthropic.NewAssistantMessage(anthropic.NewTextBlock(turn.Content)))
		case "system":
			additionalSystemInstructions = append(additionalSystemInstructions, turn.Content)
		default:
			// Skip unknown roles
			continue
		}
	}

	messages = append(messages, anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserText)))

	var combined string
	for i, instruction := range additionalSystemInstructions {
		if i > 0 {
			combined += "\n\n"
		}
		combined += instruction
	}

	return messages, combined
}
