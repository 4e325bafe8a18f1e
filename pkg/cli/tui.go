package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Theme defines the terminal color scheme.
type Theme struct {
	Primary lipgloss.Color
	Dim     lipgloss.Color
	Error   lipgloss.Color
}

// DefaultTheme is the default bright green theme.
var DefaultTheme = Theme{
	Primary: lipgloss.Color("#00ff9f"),
	Dim:     lipgloss.Color("#6e7681"),
	Error:   lipgloss.Color("#ff5f5f"),
}

// Styles holds all styles derived from a theme.
type Styles struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Border lipgloss.Style
	Help   lipgloss.Style
	Error  lipgloss.Style
}

// NewStyles creates styles from a theme.
func NewStyles(t Theme) Styles {
	return Styles{
		Title:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Label:  lipgloss.NewStyle().Bold(true).Foreground(t.Primary),
		Border: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(t.Primary).Padding(0, 1),
		Help:   lipgloss.NewStyle().Foreground(t.Dim),
		Error:  lipgloss.NewStyle().Bold(true).Foreground(t.Error),
	}
}

// Row is one labeled line of a Panel.
type Row struct {
	Key   string
	Value string
}

// Panel is a bordered key/value summary, e.g. a node run's outputs.
type Panel struct {
	Title  string
	Status string
	Rows   []Row

	// MaxWidth truncates values so a line fits; zero means no limit.
	MaxWidth int
}

// Paneler is implemented by results with a table rendering.
type Paneler interface {
	Panel() Panel
}

// Render renders the panel.
func (p Panel) Render(s Styles) string {
	keyWidth := 0
	for _, r := range p.Rows {
		keyWidth = max(keyWidth, lipgloss.Width(r.Key))
	}

	var lines []string
	if p.Title != "" {
		head := s.Title.Render(p.Title)
		if p.Status != "" {
			status := s.Help
			if isFailureStatus(p.Status) {
				status = s.Error
			}
			head += " " + status.Render("["+p.Status+"]")
		}
		lines = append(lines, head)
	}

	for _, r := range p.Rows {
		value := r.Value
		if value == "" {
			value = s.Help.Render("-")
		} else if p.MaxWidth > 0 {
			if limit := p.MaxWidth - keyWidth - 2; limit > 1 && lipgloss.Width(value) > limit {
				value = truncateString(value, limit-1) + "…"
			}
		}
		pad := strings.Repeat(" ", keyWidth-lipgloss.Width(r.Key))
		lines = append(lines, s.Label.Render(r.Key)+pad+"  "+value)
	}

	if len(lines) == 0 {
		lines = append(lines, s.Help.Render("(empty)"))
	}
	return s.Border.Render(strings.Join(lines, "\n"))
}

func isFailureStatus(status string) bool {
	switch strings.ToLower(status) {
	case "fail", "failed", "error", "timeout", "task_failed", "validation", "transport", "api", "decode":
		return true
	}
	return false
}

// truncateString safely truncates a string to the given width,
// handling multi-byte characters correctly.
func truncateString(s string, width int) string {
	if width <= 0 {
		return ""
	}
	runes := []rune(s)
	currentWidth := 0
	for i, r := range runes {
		w := lipgloss.Width(string(r))
		if currentWidth+w > width {
			return string(runes[:i])
		}
		currentWidth += w
	}
	return s
}
