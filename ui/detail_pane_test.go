package ui

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderMarkdown(t *testing.T) {
	out, err := RenderMarkdown("# Heading\n\nSome **bold** text.", 60)
	require.NoError(t, err)
	text := plain(out)
	assert.Contains(t, text, "Heading")
	assert.Contains(t, text, "bold")
}

func TestDetailPane_Content(t *testing.T) {
	p := NewDetailPane()
	p.SetSize(50, 10)
	p.SetContent("mr:1:2", "g/p!2 Fix login", "the body")

	assert.Equal(t, "mr:1:2", p.Key())
	out := plain(p.String())
	assert.Contains(t, out, "g/p!2 Fix login")
	assert.Contains(t, out, "the body")
}

func TestDetailPane_EmptyDescription(t *testing.T) {
	p := NewDetailPane()
	p.SetSize(50, 10)
	p.SetContent("k", "title", "  \n")
	assert.Contains(t, plain(p.String()), "no description")
}
