package services

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seminar/pkg/seminartypes"
)

func TestGatewayService_Initialize(t *testing.T) {
	tests := []struct {
		name         string
		provider     string
		model        string
		wantErr      bool
		wantProvider string
	}{
		{"defaults to openai", "", "", false, "openai"},
		{"explicit anthropic", "anthropic", "", false, "anthropic"},
		{"explicit gemini", "gemini", "", false, "gemini"},
		{"case insensitive", "OpenAI", "", false, "openai"},
		{"custom model carried through", "openai", "gpt-4o", false, "openai"},
		{"unknown provider rejected", "cohere", "", true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SEMINAR_PROVIDER", "")
			t.Setenv("SEMINAR_MODEL", "")
			service := NewGatewayService(tt.provider, tt.model)
			err := service.Initialize()

			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProvider, service.ProviderName())
		})
	}
}

func TestGatewayService_CompleteUsesClient(t *testing.T) {
	mock := NewMockLLMClient()
	mock.QueueResponse("The unexamined life is not worth living.")

	service := NewGatewayService("openai", "")
	service.SetClient(mock)

	text, err := service.Complete(context.Background(), seminartypes.CompletionRequest{
		SystemPrompt: "You are Socrates.",
		UserText:     "What is virtue?",
	})
	require.NoError(t, err)
	assert.Equal(t, "The unexamined life is not worth living.", text)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "What is virtue?", calls[0].UserText)
}

func TestGatewayService_CompleteWrapsErrors(t *testing.T) {
	mock := NewMockLLMClient()
	mock.QueueError(fmt.Errorf("quota exceeded"))

	service := NewGatewayService("openai", "")
	service.SetClient(mock)

	_, err := service.Complete(context.Background(), seminartypes.CompletionRequest{UserText: "hello"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway completion failed")
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestGatewayService_CompleteNotInitialized(t *testing.T) {
	service := NewGatewayService("openai", "")
	_, err := service.Complete(context.Background(), seminartypes.CompletionRequest{UserText: "hello"})
	assert.Error(t, err)
}

func TestGatewayService_TimeoutSurfacesAsConnectivityError(t *testing.T) {
	service := NewGatewayService("openai", "")
	service.SetClient(&slowClient{delay: 50 * time.Millisecond})
	service.SetTimeout(time.Millisecond)

	_, err := service.Complete(context.Background(), seminartypes.CompletionRequest{UserText: "hello"})
	require.Error(t, err)
	assert.True(t, IsConnectivityError(err))
}

func TestIsConnectivityError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil error", nil, false},
		{"deadline exceeded", context.DeadlineExceeded, true},
		{"wrapped deadline", fmt.Errorf("call failed: %w", context.DeadlineExceeded), true},
		{"url error", &url.Error{Op: "Post", URL: "https://api.example.com", Err: fmt.Errorf("connection refused")}, true},
		{"net op error", &net.OpError{Op: "dial", Err: fmt.Errorf("no route to host")}, true},
		{"business error", fmt.Errorf("model not found"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsConnectivityError(tt.err))
		})
	}
}

func TestMockLLMClient_ExhaustedReplies(t *testing.T) {
	mock := NewMockLLMClient()
	_, err := mock.SendChatCompletion(context.Background(), seminartypes.CompletionRequest{})
	assert.Error(t, err)
}

// slowClient blocks until its context is canceled, simulating an
// unresponsive gateway.
type slowClient struct {
	delay time.Duration
}

func (s *slowClient) GetProviderName() string { return "slow" }
func (s *slowClient) IsConfigured() bool      { return true }

func (s *slowClient) SendChatCompletion(ctx context.Context, _ seminartypes.CompletionRequest) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(s.delay):
		return "too late", nil
	}
}
