package main

import (
	"fmt"
	"io"
	"strings"
)

type colorMode string

const (
	colorModeAuto colorMode = "auto"
	colorModeOn   colorMode = "on"
	colorModeOff  colorMode = "off"
)

func readColorMode(value string) (colorMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return colorModeAuto, nil
	case "on":
		return colorModeOn, nil
	case "off":
		return colorModeOff, nil
	default:
		return "", fmt.Errorf("invalid --color value %q (expected auto|on|off)", value)
	}
}

// enabledFor reports whether output written to w should be colored.
func (m colorMode) enabledFor(w io.Writer) bool {
	switch m {
	case colorModeOn:
		return true
	case colorModeOff:
		return false
	default:
		return isTerminal(w)
	}
}
