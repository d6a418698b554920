package services

import (
	"fmt"
	"strings"

	"seminar/internal/data/embedded"
	"seminar/pkg/seminartypes"

	"gopkg.in/yaml.v3"
)

// personaCatalogFile mirrors the embedded YAML catalog layout.
type personaCatalogFile struct {
	Categories []seminartypes.PersonaCategory `yaml:"categories"`
}

// PersonaCatalogService provides persona catalog operations for Seminar.
// It loads the embedded YAML catalog once at initialization; personas are
// immutable afterwards. Lookup is by id; listing preserves catalog order.
type PersonaCatalogService struct {
	initialized bool
	categories  []seminartypes.PersonaCategory
	ordered     []seminartypes.Persona
	byID        map[string]seminartypes.Persona
}

// NewPersonaCatalogService creates a new PersonaCatalogService instance.
func NewPersonaCatalogService() *PersonaCatalogService {
	return &PersonaCatalogService{
		initialized: false,
	}
}

// Name returns the service name "persona_catalog" for registration.
func (p *PersonaCatalogService) Name() string {
	return "persona_catalog"
}

// Initialize loads and validates the embedded persona catalog.
func (p *PersonaCatalogService) Initialize() error {
	var file personaCatalogFile
	if err := yaml.Unmarshal(embedded.PersonaCatalogData, &file); err != nil {
		return fmt.Errorf("failed to parse persona catalog: %w", err)
	}

	p.categories = file.Categories
	p.byID = make(map[string]seminartypes.Persona)
	p.ordered = p.ordered[:0]

	for _, category := range file.Categories {
		for _, persona := range category.Personas {
			if persona.ID == "" || persona.DisplayName == "" {
				return fmt.Errorf("persona catalog entry missing id or name in category %q", category.ID)
			}
			key := strings.ToLower(persona.ID)
			if _, exists := p.byID[key]; exists {
				return fmt.Errorf("duplicate persona id %q in catalog", persona.ID)
			}
			p.byID[key] = persona
			p.ordered = append(p.ordered, persona)
		}
	}

	if len(p.ordered) == 0 {
		return fmt.Errorf("persona catalog is empty")
	}

	p.initialized = true
	return nil
}

// ListPersonas returns all personas in catalog iteration order.
func (p *PersonaCatalogService) ListPersonas() []seminartypes.Persona {
	if !p.initialized {
		return nil
	}

	out := make([]seminartypes.Persona, len(p.ordered))
	copy(out, p.ordered)
	return out
}

// PersonasByCategory returns the catalog grouped by category.
// The grouping is used for display only; orchestration ignores it.
func (p *PersonaCatalogService) PersonasByCategory() []seminartypes.PersonaCategory {
	if !p.initialized {
		return nil
	}

	out := make([]seminartypes.PersonaCategory, len(p.categories))
	copy(out, p.categories)
	return out
}

// GetPersona retrieves a persona by id (case-insensitive).
func (p *PersonaCatalogService) GetPersona(id string) (seminartypes.Persona, error) {
	if !p.initialized {
		return seminartypes.Persona{}, fmt.Errorf("persona catalog service not initialized")
	}

	persona, exists := p.byID[strings.ToLower(id)]
	if !exists {
		return seminartypes.Persona{}, fmt.Errorf("persona %q not found in catalog", id)
	}

	return persona, nil
}

// HasPersona reports whether the catalog contains the given id.
func (p *PersonaCatalogService) HasPersona(id string) bool {
	if !p.initialized {
		return false
	}
	_, exists := p.byID[strings.ToLower(id)]
	return exists
}

// DisplayName returns the display name for a persona id, falling back to the
// id itself when the persona is unknown.
func (p *PersonaCatalogService) DisplayName(id string) string {
	if persona, exists := p.byID[strings.ToLower(id)]; exists {
		return persona.DisplayName
	}
	return id
}
