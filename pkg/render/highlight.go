package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorMode controls whether output is colorized.
type ColorMode string

const (
	ColorAuto   ColorMode = "auto"
	ColorAlways ColorMode = "always"
	ColorNever  ColorMode = "never"
)

// ParseColorMode validates a --color value. Empty means auto.
func ParseColorMode(s string) (ColorMode, error) {
	switch ColorMode(s) {
	case "", ColorAuto:
		return ColorAuto, nil
	case ColorAlways, ColorNever:
		return ColorMode(s), nil
	default:
		return "", fmt.Errorf("invalid color mode %q (want auto, always or never)", s)
	}
}

// Highlighter renders projected values with syntax colors for the terminal
// behind out. Colors are dropped when the terminal has no color support.
type Highlighter struct {
	pal       *palette
	separator lipgloss.Style
}

// NewHighlighter creates a highlighter for the given output.
func NewHighlighter(out io.Writer, mode ColorMode) *Highlighter {
	r := lipgloss.NewRenderer(out)
	switch mode {
	case ColorAlways:
		if r.ColorProfile() == termenv.Ascii {
			r.SetColorProfile(termenv.ANSI256)
		}
	case ColorNever:
		r.SetColorProfile(termenv.Ascii)
	}

	h := &Highlighter{separator: r.NewStyle()}
	if r.ColorProfile() == termenv.Ascii {
		return h
	}
	h.separator = r.NewStyle().Foreground(lipgloss.Color("33"))
	h.pal = &palette{
		key:     r.NewStyle().Foreground(lipgloss.Color("39")).Bold(true),
		str:     r.NewStyle().Foreground(lipgloss.Color("42")),
		num:     r.NewStyle().Foreground(lipgloss.Color("214")),
		boolean: r.NewStyle().Foreground(lipgloss.Color("205")),
		null:    r.NewStyle().Foreground(lipgloss.Color("245")),
	}
	return h
}

// Colored reports whether the highlighter emits escape sequences.
func (h *Highlighter) Colored() bool { return h.pal != nil }

// Render is like the package-level Render with token colors applied.
// Bare strings are never colored.
func (h *Highlighter) Render(v any) (string, bool) {
	if h == nil {
		return Render(v)
	}
	return render(v, h.pal)
}

// Separator returns a rule of the given width.
func (h *Highlighter) Separator(width int) string {
	if width <= 0 {
		width = DefaultWidth
	}
	rule := strings.Repeat("=", width)
	if h == nil || h.pal == nil {
		return rule
	}
	return h.separator.Render(rule)
}
