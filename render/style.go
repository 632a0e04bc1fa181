package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/iw2rmb/postkit/internal/config"
)

// Style controls how sections are drawn.
type Style struct {
	Text   lipgloss.Style
	Bullet lipgloss.Style
	Card   lipgloss.Style
	Atom   lipgloss.Style

	// Markups maps a markup tag to the style applied on top of Text.
	// Unknown tags render unstyled.
	Markups map[string]lipgloss.Style

	// MaxCardWidth truncates card names to this many terminal cells.
	// Zero disables truncation.
	MaxCardWidth int
}

func DefaultStyle() Style {
	return Style{
		Text:   lipgloss.NewStyle(),
		Bullet: lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
		Card:   lipgloss.NewStyle().Reverse(true),
		Atom:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		Markups: map[string]lipgloss.Style{
			"b":  lipgloss.NewStyle().Bold(true),
			"em": lipgloss.NewStyle().Italic(true),
		},
	}
}

// NewStyle builds a Style for output written to w from the styles in cfg.
// cfg.Plain forces the ASCII color profile, which drops every escape
// sequence.
func NewStyle(w io.Writer, cfg config.Config) Style {
	r := lipgloss.NewRenderer(w)
	if cfg.Plain {
		r.SetColorProfile(termenv.Ascii)
	}

	st := Style{
		Text:    r.NewStyle(),
		Bullet:  r.NewStyle().Foreground(lipgloss.Color("240")),
		Card:    r.NewStyle().Reverse(true),
		Atom:    r.NewStyle().Foreground(lipgloss.Color("39")),
		Markups: make(map[string]lipgloss.Style, len(cfg.Styles)),
	}
	for tag, s := range cfg.Styles {
		st.Markups[tag] = markupStyle(r, s)
	}
	return st
}

// markupStyle sets only the enabled properties, so nested markups inherit
// the rest from the markups around them.
func markupStyle(r *lipgloss.Renderer, s config.Style) lipgloss.Style {
	ls := r.NewStyle()
	if s.Bold {
		ls = ls.Bold(true)
	}
	if s.Italic {
		ls = ls.Italic(true)
	}
	if s.Underline {
		ls = ls.Underline(true)
	}
	if s.Strikethrough {
		ls = ls.Strikethrough(true)
	}
	if s.Foreground != "" {
		ls = ls.Foreground(lipgloss.Color(s.Foreground))
	}
	return ls
}
