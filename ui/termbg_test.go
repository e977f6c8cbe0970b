package ui

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSetTermBg_EmitsAndRestores(t *testing.T) {
	var buf bytes.Buffer
	restore := setTermBg(&buf, string(ColorBase))
	assert.Equal(t, "\033]11;"+string(ColorBase)+"\033\\", buf.String())

	buf.Reset()
	restore()
	assert.Equal(t, "\033]111\033\\", buf.String())
}

func TestSetTermBg_EmptyColorIsNoop(t *testing.T) {
	var buf bytes.Buffer
	restore := setTermBg(&buf, "")
	restore()
	assert.Zero(t, buf.Len())
}

func TestFillBackground(t *testing.T) {
	assert.Equal(t, 5, strings.Count(FillBackground("a\nb", 6), "\n"))
	assert.Equal(t, "a\nb\nc", FillBackground("a\nb\nc", 2))
	assert.Equal(t, "x", FillBackground("x", 0))
}
