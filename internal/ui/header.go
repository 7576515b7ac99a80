package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/five82/galley/internal/state"
)

// renderHeader renders the status bar.
func (m Model) renderHeader() string {
	theme := m.tintedTheme()
	styles := theme.Styles().WithBackground(theme.Surface)
	bg := NewBgStyle(theme.Surface)

	parts := []string{
		bg.Render("galley", styles.Logo),
		styles.StatusStyle(m.statusKey()).Render(strings.ToUpper(m.statusKey())),
	}
	if m.view.Kind == state.Loaded {
		parts = append(parts, bg.Render(fmt.Sprintf("%d recipes", len(m.view.Recipes)), styles.Text))
	}
	if !m.online {
		parts = append(parts, styles.StatusStyle("offline").Render("OFFLINE"))
	}
	if !m.view.LastUpdated.IsZero() {
		parts = append(parts, bg.Render("updated "+m.updatedAgo(), styles.MutedText))
	}
	parts = append(parts, bg.Render(m.theme.Name+" · "+m.algorithm.String(), styles.FaintText))

	return lipgloss.NewStyle().
		Background(lipgloss.Color(theme.Surface)).
		Foreground(lipgloss.Color(theme.Text)).
		Width(m.width).
		Render(bg.Join(parts, "  "))
}

func (m Model) updatedAgo() string {
	age := humanizeDuration(time.Since(m.view.LastUpdated))
	if age == "now" {
		return age
	}
	return age + " ago"
}

func (m Model) statusKey() string {
	switch {
	case m.view.Kind == state.Loading:
		return "loading"
	case m.view.Refreshing:
		return "refreshing"
	case m.view.Kind == state.FailedToLoad:
		return "failed"
	default:
		return "loaded"
	}
}

// renderCommandBar lists the short help bindings.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Background)
	bg := NewBgStyle(m.theme.Background)

	bindings := m.keys.ShortHelp()
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		parts = append(parts, bg.Render(h.Key, styles.WarningText)+bg.Spaces(1)+bg.Render(h.Desc, styles.MutedText))
	}
	return bg.FillLine(bg.Join(parts, "   "), m.width)
}
