// Package seminartypes defines the shared domain types for Seminar.
// This file contains the persona catalog types: personas are immutable,
// loaded once at startup from the embedded catalog, and never mutated.
package seminartypes

// Persona represents a named, promptable character configuration that the
// inference gateway impersonates. The ID is the unique catalog key; the
// system prompt encodes the persona's identity and voice.
type Persona struct {
	ID           string         `yaml:"id" json:"id"`
	DisplayName  string         `yaml:"name" json:"name"`
	Description  string         `yaml:"description" json:"description"`
	SystemPrompt string         `yaml:"system_prompt" json:"system_prompt"`
	Params       *PersonaParams `yaml:"params,omitempty" json:"params,omitempty"`
}

// PersonaCategory groups personas for display purposes only.
// The grouping is irrelevant to orchestration logic.
type PersonaCategory struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Personas []Persona `yaml:"personas" json:"personas"`
}

// PersonaParams holds per-persona completion parameters from the catalog.
// A zero-valued field means the persona has no preference and the
// orchestrator's default for the current phase applies.
type PersonaParams struct {
	Temperature float64 `yaml:"temperature" json:"temperature"`
	MaxTokens   int     `yaml:"max_tokens" json:"max_tokens"`
}
