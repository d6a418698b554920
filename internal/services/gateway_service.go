package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"strings"
	"time"

	"seminar/internal/logger"
	"seminar/pkg/seminartypes"
)

// DefaultGatewayTimeout bounds every inference call client-side.
// A timed-out call is treated identically to a gateway failure.
const DefaultGatewayTimeout = 60 * time.Second

// GatewayService is the inference gateway for Seminar. It owns the
// provider-specific LLM client, bounds every call with a client-side
// timeout, and classifies failures so the orchestrator can decide between
// a local fallback message and skipping a responder.
type GatewayService struct {
	initialized bool
	provider    string
	model       string
	timeout     time.Duration
	client      seminartypes.LLMClient
}

// NewGatewayService creates a gateway for the given provider and model.
// Empty arguments fall back to the SEMINAR_PROVIDER / SEMINAR_MODEL
// environment variables, then to the OpenAI defaults.
func NewGatewayService(provider, model string) *GatewayService {
	return &GatewayService{
		provider: provider,
		model:    model,
		timeout:  DefaultGatewayTimeout,
	}
}

// Name returns the service name "gateway" for registration.
func (g *GatewayService) Name() string {
	return "gateway"
}

// SetTimeout overrides the client-side call timeout.
func (g *GatewayService) SetTimeout(timeout time.Duration) {
	g.timeout = timeout
}

// SetClient replaces the provider client. Intended for tests.
func (g *GatewayService) SetClient(client seminartypes.LLMClient) {
	g.client = client
	g.initialized = true
}

// Initialize selects and constructs the provider client. A missing API key
// is not fatal here; the first call will fail and surface in the transcript.
func (g *GatewayService) Initialize() error {
	logger.ServiceOperation("gateway", "initialize", "starting")

	provider := g.provider
	if provider == "" {
		provider = os.Getenv("SEMINAR_PROVIDER")
	}
	if provider == "" {
		provider = "openai"
	}

	model := g.model
	if model == "" {
		model = os.Getenv("SEMINAR_MODEL")
	}

	switch strings.ToLower(provider) {
	case "openai":
		if model == "" {
			model = "gpt-3.5-turbo"
		}
		g.client = NewOpenAIClient(os.Getenv("OPENAI_API_KEY"), model)
	case "anthropic":
		if model == "" {
			model = "claude-3-5-haiku-latest"
		}
		g.client = NewAnthropicClient(os.Getenv("ANTHROPIC_API_KEY"), model)
	case "gemini":
		if model == "" {
			model = "gemini-2.0-flash"
		}
		g.client = NewGeminiClient(os.Getenv("GOOGLE_API_KEY"), model)
	default:
		return fmt.Errorf("unknown provider %q (expected openai, anthropic, or gemini)", provider)
	}

	g.provider = strings.ToLower(provider)
	g.model = model
	g.initialized = true

	if !g.client.IsConfigured() {
		logger.Warn("Gateway provider has no API key configured", "provider", g.provider)
	}

	logger.ServiceOperation("gateway", "initialize", "completed")
	return nil
}

// Complete sends one completion request through the provider client,
// bounded by the gateway timeout.
func (g *GatewayService) Complete(ctx context.Context, req seminartypes.CompletionRequest) (string, error) {
	if !g.initialized {
		return "", fmt.Errorf("gateway service not initialized")
	}

	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.client.SendChatCompletion(callCtx, req)
	if err != nil {
		return "", fmt.Errorf("gateway completion failed: %w", err)
	}

	return text, nil
}

// ProviderName returns the active provider name.
func (g *GatewayService) ProviderName() string {
	return g.provider
}

// IsConnectivityError reports whether err looks like a transport-level
// failure (unreachable host, timeout) rather than a business error from the
// provider. Connectivity failures get a local fallback message; business
// errors just skip the responder.
func IsConnectivityError(err error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return true
	}

	var opErr *net.OpError
	return errors.As(err, &opErr)
}

// MockLLMClient provides a scriptable LLMClient implementation for testing.
// Responses are served in FIFO order; scripted errors are returned in place
// of a response.
type MockLLMClient struct {
	replies []mockReply
	calls   []seminartypes.CompletionRequest
}

type mockReply struct {
	text string
	err  error
}

// NewMockLLMClient creates an empty mock client.
func NewMockLLMClient() *MockLLMClient {
	return &MockLLMClient{}
}

// GetProviderName returns the provider name "mock".
func (m *MockLLMClient) GetProviderName() string {
	return "mock"
}

// IsConfigured always returns true for the mock client.
func (m *MockLLMClient) IsConfigured() bool {
	return true
}

// QueueResponse appends a successful scripted response.
func (m *MockLLMClient) QueueResponse(text string) {
	m.replies = append(m.replies, mockReply{text: text})
}

// QueueError appends a scripted failure.
func (m *MockLLMClient) QueueError(err error) {
	m.replies = append(m.replies, mockReply{err: err})
}

// Calls returns the requests received so far.
func (m *MockLLMClient) Calls() []seminartypes.CompletionRequest {
	return m.calls
}

// SendChatCompletion serves the next scripted reply.
func (m *MockLLMClient) SendChatCompletion(_ context.Context, req seminartypes.CompletionRequest) (string, error) {
	m.calls = append(m.calls, req)

	if len(m.replies) == 0 {
		return "", fmt.Errorf("mock llm client: no scripted replies left")
	}

	reply := m.replies[0]
	m.replies = m.replies[1:]

	if reply.err != nil {
		return "", reply.err
	}
	return reply.text, nil
}
