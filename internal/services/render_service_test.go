package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderService_Initialize(t *testing.T) {
	service := NewRenderService()
	assert.Equal(t, "render", service.Name())
	require.NoError(t, service.Initialize())
}

func TestRenderService_LabelsBeforeInitialize(t *testing.T) {
	service := NewRenderService()

	// uninitialized rendering degrades to plain labels
	assert.Equal(t, "Socrates:", service.PersonaLabel("socrates", "Socrates"))
	assert.Equal(t, "You:", service.UserLabel())
	assert.Equal(t, "done", service.SystemNotice("done"))
}

func TestRenderService_PersonaLabelStable(t *testing.T) {
	service := NewRenderService()
	require.NoError(t, service.Initialize())

	first := service.PersonaLabel("socrates", "Socrates")
	second := service.PersonaLabel("socrates", "Socrates")
	assert.Equal(t, first, second)
	assert.Contains(t, first, "Socrates")
}

func TestRenderService_RenderMarkdown(t *testing.T) {
	service := NewRenderService()
	require.NoError(t, service.Initialize())

	rendered, err := service.RenderMarkdown("**bold** claim")
	require.NoError(t, err)
	assert.Contains(t, rendered, "bold")

	// blank input renders to nothing rather than erroring
	rendered, err = service.RenderMarkdown("   ")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(rendered))
}

func TestRenderService_RenderMarkdownNotInitialized(t *testing.T) {
	service := NewRenderService()
	_, err := service.RenderMarkdown("hello")
	assert.Error(t, err)
}
