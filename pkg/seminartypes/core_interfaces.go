// Package seminartypes defines core architectural interfaces for Seminar.
// This file contains the fundamental interfaces that enable the modular
// service architecture: service registration and LLM client abstraction.
package seminartypes

import "context"

// Service defines the interface for Seminar services that provide specific
// functionality. Services are registered at startup and initialized once
// before the chat loop runs.
type Service interface {
	Name() string
	Initialize() error
}

// ServiceRegistry manages the registration and retrieval of services.
type ServiceRegistry interface {
	GetService(name string) (Service, error)
	RegisterService(service Service) error
}

// LLMClient defines the interface for provider-specific completion clients.
// Implementations send one composed prompt plus prior turns to a remote
// completion endpoint and return the generated text.
type LLMClient interface {
	GetProviderName() string
	IsConfigured() bool
	SendChatCompletion(ctx context.Context, req CompletionRequest) (string, error)
}

// TestModeProvider reports whether deterministic test mode is active.
// Generators consult it to decide between random and counter-based output.
type TestModeProvider interface {
	IsTestMode() bool
}
