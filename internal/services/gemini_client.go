package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"seminar/internal/logger"
	"seminar/pkg/seminartypes"

	"google.golang.org/genai"
)

// GeminiClient implements the LLMClient interface for Google Gemini API.
// It provides lazy initialization of the Gemini client and handles
// all Gemini-specific communication logic.
type GeminiClient struct {
	apiKey         string
	model          string
	client         *genai.Client
	debugTransport http.RoundTripper
}

// NewGeminiClient creates a new Gemini client with lazy initialization.
// The actual Gemini client is created only when the first request is made.
func NewGeminiClient(apiKey, model string) *GeminiClient {
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
		client: nil, // Will be initialized lazily
	}
}

// GetProviderName returns the provider name for this client.
func (c *GeminiClient) GetProviderName() string {
	return "gemini"
}

// IsConfigured returns true if the client has a valid API key.
func (c *GeminiClient) IsConfigured() bool {
	return c.apiKey != ""
}

// initializeClientIfNeeded initializes the Gemini client if it hasn't been initialized yet.
func (c *GeminiClient) initializeClientIfNeeded(ctx context.Context) error {
	if c.client != nil {
		return nil // Already initialized
	}

	if c.apiKey == "" {
		return fmt.Errorf("google API key not configured")
	}

	clientConfig := &genai.ClientConfig{
		APIKey: c.apiKey,
	}

	if c.debugTransport != nil {
		httpClient := &http.Client{Transport: c.debugTransport}
		clientConfig.HTTPClient = httpClient
		logger.Debug("Gemini client initialized with debug transport", "provider", "gemini")
	} else {
		logger.Debug("Gemini client initialized", "provider", "gemini")
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return fmt.Errorf("failed to create Gemini client: %w", err)
	}

	c.client = client
	return nil
}

// SendChatCompletion sends a chat completion request to Google Gemini.
func (c *GeminiClient) SendChatCompletion(ctx context.Context, req seminartypes.CompletionRequest) (string, error) {
	logger.Debug("Gemini SendChatCompletion starting", "model", c.model, "conversation", req.ConversationID)

	if err := c.initializeClientIfNeeded(ctx); err != nil {
		return "", fmt.Errorf("failed to initialize Gemini client: %w", err)
	}

	contents := c.convertTurnsToGemini(req)
	logger.Debug("Messages converted", "content_count", len(contents))

	config := c.buildGenerationConfig(req)

	result, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		logger.Error("Gemini request failed", "error", err)
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	content := c.extractText(result)
	if content == "" {
		logger.Error("Empty response content")
		return "", fmt.Errorf("empty response content")
	}

	logger.Debug("Gemini response received", "content_length", len(content))
	return content, nil
}

// convertTurnsToGemini converts a completion request to Gemini content format.
// The system prompt is handled separately via SystemInstruction; system turns
// inside the conversation become user turns with a "System:" prefix, since
// Gemini has no mid-conversation system role.
func (c *GeminiClient) convertTurnsToGemini(req seminartypes.CompletionRequest) []*genai.Content {
	contents := make([]*genai.Content, 0, len(req.PriorTurns)+1)

	for _, turn := range req.PriorTurns {
		var role genai.Role
		content := turn.Content

		switch turn.Role {
		case "user":
			role = genai.RoleUser
		case "assistant":
			role = genai.RoleModel // Gemini uses "model" instead of "assistant"
		case "system":
			role = genai.RoleUser
			content = "System: " + content
		default:
			// Skip unknown roles
			continue
		}

		contents = append(contents, &genai.Content{
			Parts: []*genai.Part{{Text: content}},
			Role:  string(role),
		})
	}

	contents = append(contents, &genai.Content{
		Parts: []*genai.Part{{Text: req.UserText}},
		Role:  string(genai.RoleUser),
	})

	return contents
}

// buildGenerationConfig creates a Gemini generation config from the request parameters.
func (c *GeminiClient) buildGenerationConfig(req seminartypes.CompletionRequest) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{}

	if req.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemPrompt, genai.RoleUser)
	}

	if req.Params.Temperature > 0 {
		temp := float32(req.Params.Temperature)
		config.Temperature = &temp
	}
	if req.Params.MaxTokens > 0 {
		config.MaxOutputTokens = int32(req.Params.MaxTokens)
	}

	return config
}

// extractText concatenates the text parts of all candidates, skipping
// thinking blocks.
func (c *GeminiClient) extractText(result *genai.GenerateContentResponse) string {
	var builder strings.Builder

	for _, candidate := range result.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part.Text == "" || part.Thought {
				continue
			}
			builder.WriteString(part.Text)
		}
	}

	return builder.String()
}
