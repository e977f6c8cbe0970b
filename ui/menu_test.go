package ui

import (
	"testing"

	"github.com/kastheco/glrhs/keys"
	"github.com/stretchr/testify/assert"
)

func TestMenu_DefaultHints(t *testing.T) {
	m := NewMenu()
	m.SetSize(160, 1)

	out := plain(m.String())
	assert.Contains(t, out, "tab next tab")
	assert.Contains(t, out, "n new issue")
	assert.Contains(t, out, "q quit")
	assert.NotContains(t, out, "connect account")
}

func TestMenu_StatesSwapHints(t *testing.T) {
	m := NewMenu()
	m.SetSize(160, 1)

	m.SetState(MenuDisconnected)
	assert.Contains(t, plain(m.String()), "C connect account")

	m.SetState(MenuForm)
	out := plain(m.String())
	assert.Contains(t, out, "enter submit")
	assert.Contains(t, out, "esc cancel")
	assert.NotContains(t, out, "quit")

	m.SetState(MenuHidden)
	assert.Contains(t, plain(m.String()), "ctrl+g toggle gitlab panel")
}

func TestMenu_KeydownClears(t *testing.T) {
	m := NewMenu()
	m.Keydown(keys.KeyRefresh)
	assert.Equal(t, keys.KeyRefresh, m.keyDown)

	m.ClearKeydown()
	assert.Equal(t, keys.KeyName(-1), m.keyDown)
}
