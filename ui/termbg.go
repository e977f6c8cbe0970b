package ui

import (
	"fmt"
	"io"
	"os"
)

// SetTerminalBackground emits OSC 11 so every ANSI reset falls back to the
// theme base colour. The returned func restores the terminal default with
// OSC 111. Nothing is written when NO_COLOR is set.
func SetTerminalBackground(hexColor string) func() {
	if os.Getenv("NO_COLOR") != "" {
		return func() {}
	}
	return setTermBg(os.Stdout, hexColor)
}

func setTermBg(w io.Writer, hexColor string) func() {
	if hexColor == "" {
		return func() {}
	}
	fmt.Fprintf(w, "\033]11;%s\033\\", hexColor)
	return func() {
		fmt.Fprint(w, "\033]111\033\\")
	}
}
