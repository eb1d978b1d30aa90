package ui

import (
	"fmt"

	"github.com/charmbracelet/glamour"
)

// MarkdownRenderer turns model markdown into terminal output.
type MarkdownRenderer interface {
	Render(markdown string) (string, error)
}

// GlamourRenderer renders markdown with glamour.
type GlamourRenderer struct {
	r *glamour.TermRenderer
}

// NewGlamourRenderer builds a renderer for the named glamour style.
// "auto" picks dark or light from the terminal background.
func NewGlamourRenderer(style string, wordWrap int) (*GlamourRenderer, error) {
	opts := []glamour.TermRendererOption{glamour.WithWordWrap(wordWrap)}
	if style == "auto" {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, fmt.Errorf("glamour renderer: %w", err)
	}
	return &GlamourRenderer{r: r}, nil
}

func (g *GlamourRenderer) Render(markdown string) (string, error) {
	return g.r.Render(markdown)
}
