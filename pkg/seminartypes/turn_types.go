package seminartypes

// TurnRequest describes one orchestration pass triggered by a single user
// submission. It is created per submission and discarded after the turns it
// spawns complete.
type TurnRequest struct {
	UserText         string
	ActivePersonaIDs []string // ordered selection set
	AutoDebate       bool
	MaxRounds        int
}

// ModelParams carries the completion parameters attached to a gateway call.
type ModelParams struct {
	Temperature float64
	MaxTokens   int
}

// ChatTurn is one role-tagged turn of prior conversation supplied to the
// inference gateway alongside the composed prompt. Role is one of
// "user", "assistant", or "system".
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// CompletionRequest is the request shape for one inference gateway call.
// The gateway is treated as an opaque, possibly-slow, possibly-failing
// dependency; this type defines only our side of the contract.
type CompletionRequest struct {
	SystemPrompt   string
	PriorTurns     []ChatTurn
	UserText       string
	Params         ModelParams
	ConversationID string
}
