package services

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"seminar/internal/logger"
	"seminar/pkg/seminartypes"
)

// personaPalette holds the foreground colors cycled across personas so each
// speaker keeps a stable color for the life of the conversation.
var personaPalette = []lipgloss.Color{
	lipgloss.Color("12"), // blue
	lipgloss.Color("10"), // green
	lipgloss.Color("13"), // magenta
	lipgloss.Color("11"), // yellow
	lipgloss.Color("14"), // cyan
	lipgloss.Color("9"),  // red
}

// RenderService styles transcript output for the terminal: colored persona
// name labels, dimmed system notices, and Glamour-rendered markdown bodies.
type RenderService struct {
	initialized  bool
	plain        bool
	renderer     *glamour.TermRenderer
	systemStyle  lipgloss.Style
	userStyle    lipgloss.Style
	personaIndex map[string]int
}

// NewRenderService creates a new RenderService instance.
func NewRenderService() *RenderService {
	return &RenderService{
		personaIndex: make(map[string]int),
	}
}

// Name returns the service name "render" for registration.
func (r *RenderService) Name() string {
	return "render"
}

// Initialize sets up the terminal renderer with auto-style detection.
// Terminals without color support fall back to plain output.
func (r *RenderService) Initialize() error {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	r.renderer = renderer
	r.plain = termenv.EnvColorProfile() == termenv.Ascii
	r.systemStyle = lipgloss.NewStyle().Faint(true).Italic(true)
	r.userStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	r.initialized = true

	logger.Debug("RenderService initialized", "plain", r.plain)
	return nil
}

// PersonaLabel returns the styled display label for a persona. Each persona
// is assigned the next palette color on first use.
func (r *RenderService) PersonaLabel(personaID, displayName string) string {
	if !r.initialized || r.plain {
		return displayName + ":"
	}

	idx, ok := r.personaIndex[personaID]
	if !ok {
		idx = len(r.personaIndex)
		r.personaIndex[personaID] = idx
	}

	style := lipgloss.NewStyle().Bold(true).Foreground(personaPalette[idx%len(personaPalette)])
	return style.Render(displayName + ":")
}

// UserLabel returns the styled label for the human participant.
func (r *RenderService) UserLabel() string {
	if !r.initialized || r.plain {
		return "You:"
	}
	return r.userStyle.Render("You:")
}

// SystemNotice styles a system transcript message.
func (r *RenderService) SystemNotice(text string) string {
	if !r.initialized || r.plain {
		return text
	}
	return r.systemStyle.Render(text)
}

// RenderMarkdown renders a completed message body as terminal markdown.
// Animation renders raw text character by character; markdown styling only
// applies once a message is fully revealed.
func (r *RenderService) RenderMarkdown(text string) (string, error) {
	if !r.initialized {
		return "", fmt.Errorf("render service not initialized")
	}
	if strings.TrimSpace(text) == "" {
		return "", nil
	}

	rendered, err := r.renderer.Render(text)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}
	return rendered, nil
}

// MessageLabel returns the appropriate styled label for a transcript message.
func (r *RenderService) MessageLabel(msg *seminartypes.Message, displayName string) string {
	switch msg.Kind {
	case seminartypes.KindUser:
		return r.UserLabel()
	case seminartypes.KindSystem:
		return ""
	default:
		return r.PersonaLabel(msg.AuthorID, displayName)
	}
}
