package ui

import (
	"github.com/Cyclone1070/devassist/internal/config"
	"github.com/charmbracelet/lipgloss"
)

// Styles holds the lipgloss styles used by the console.
type Styles struct {
	Prompt lipgloss.Style
	Header lipgloss.Style
	Tool   lipgloss.Style
	Error  lipgloss.Style
	Status lipgloss.Style
}

// NewStyles builds styles from the configured ANSI color numbers.
func NewStyles(cfg config.UIConfig) Styles {
	return Styles{
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorPrompt)).Bold(true),
		Header: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorPrompt)).Bold(true),
		Tool:   lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorTool)),
		Error:  lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorError)).Bold(true),
		Status: lipgloss.NewStyle().Foreground(lipgloss.Color(cfg.ColorTool)),
	}
}
