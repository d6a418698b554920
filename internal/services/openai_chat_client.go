package services

import (
	"context"
	"fmt"
	"net/http"

	"seminar/internal/logger"
	"seminar/pkg/seminartypes"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIClient implements the LLMClient interface for OpenAI's API.
// It provides lazy initialization of the OpenAI client and handles
// all OpenAI-specific communication logic.
type OpenAIClient struct {
	apiKey         string
	model          string
	client         *openai.Client
	debugTransport http.RoundTripper
}

// NewOpenAIClient creates a new OpenAI client with lazy initialization.
// The actual OpenAI client is created only when the first request is made.
func NewOpenAIClient(apiKey, model string) *OpenAIClient {
	return &OpenAIClient{
		apiKey: apiKey,
		model:  model,
		client: nil, // Will be initialized lazily
	}
}

// GetProviderName returns the provider name for this client.
func (c *OpenAIClient) GetProviderName() string {
	return "openai"
}

// IsConfigured returns true if the client has a valid API key.
func (c *OpenAIClient) IsConfigured() bool {
	return c.apiKey != ""
}

// SetDebugTransport sets the HTTP transport for network debugging.
func (c *OpenAIClient) SetDebugTransport(transport http.RoundTripper) {
	c.debugTransport = transport
	// Clear the existing client to force re-initialization with debug transport
	c.client = nil
}

// initializeClientIfNeeded initializes the OpenAI client if it hasn't been initialized yet.
func (c *OpenAIClient) initializeClientIfNeeded() error {
	if c.client != nil {
		return nil // Already initialized
	}

	if c.apiKey == "" {
		return fmt.Errorf("OpenAI API key not configured")
	}

	var options []option.RequestOption
	options = append(options, option.WithAPIKey(c.apiKey))

	if c.debugTransport != nil {
		httpClient := &http.Client{Transport: c.debugTransport}
		options = append(options, option.WithHTTPClient(httpClient))
		logger.Debug("OpenAI client initialized with debug transport", "provider", "openai")
	} else {
		logger.Debug("OpenAI client initialized", "provider", "openai")
	}

	client := openai.NewClient(options...)
	c.client = &client

	return nil
}

// SendChatCompletion sends a chat completion request to OpenAI.
// The caller bounds the call with the supplied context.
func (c *OpenAIClient) SendChatCompletion(ctx context.Context, req seminartypes.CompletionRequest) (string, error) {
	logger.Debug("OpenAI SendChatCompletion starting", "model", c.model, "conversation", req.ConversationID)

	if err := c.initializeClientIfNeeded(); err != nil {
		return "", fmt.Errorf("failed to initialize OpenAI client: %w", err)
	}

	messages := c.convertTurnsToOpenAI(req)
	logger.Debug("Messages converted", "message_count", len(messages))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(c.model),
		Messages: messages,
	}
	if req.Params.Temperature > 0 {
		params.Temperature = openai.Float(req.Params.Temperature)
	}
	if req.Params.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.Params.MaxTokens))
	}

	logger.Debug("Sending OpenAI request", "model", c.model)
	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		logger.Error("OpenAI request failed", "error", err)
		return "", fmt.Errorf("openai request failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		logger.Error("No response choices returned")
		return "", fmt.Errorf("no response choices returned")
	}

	content := completion.Choices[0].Message.Content
	if content == "" {
		logger.Error("Empty response content")
		return "", fmt.Errorf("empty response content")
	}

	logger.Debug("OpenAI response received", "content_length", len(content))
	return content, nil
}

// convertTurnsToOpenAI converts a completion request to OpenAI message format.
// The composed system prompt leads, prior turns follow in order, and the
// literal user text closes the sequence.
func (c *OpenAIClient) convertTurnsToOpenAI(req seminartypes.CompletionRequest) []openai.ChatCompletionMessageParamUnion {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.PriorTurns)+2)

	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}

	for _, turn := range req.PriorTurns {
		switch turn.Role {
		case "user":
			messages = append(messages, openai.UserMessage(turn.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(turn.Content))
		case "system":
			messages = append(messages, openai.SystemMessage(turn.Content))
		default:
			// Skip unknown roles
			continue
		}
	}

	messages = append(messages, openai.UserMessage(req.UserText))
	return messages
}
