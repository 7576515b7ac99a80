package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"

	"github.com/five82/galley/internal/imageloader"
	"github.com/five82/galley/internal/recipes"
)

func (m *Model) initDetailViewport() {
	m.detailViewport = viewport.New(maxInt(m.detailWidth()-2, 0), m.listHeight())
}

// refreshDetail rebuilds the detail pane content for the current selection
// and loader phase.
func (m *Model) refreshDetail() {
	width := m.detailWidth()
	if width == 0 {
		return
	}
	m.detailViewport.Width = width - 2
	m.detailViewport.Height = m.listHeight()
	m.detailViewport.SetContent(m.detailContent(width - 2))
}

func (m Model) detailContent(width int) string {
	theme := m.tintedTheme()
	styles := theme.Styles().WithBackground(theme.SurfaceAlt)
	bg := NewBgStyle(theme.SurfaceAlt)

	r, ok := m.selectedRecipe()
	if !ok {
		return bg.Render("Nothing selected", styles.FaintText)
	}

	var lines []string
	lines = append(lines, bg.Render(truncate(r.Title(), width), styles.Text.Bold(true)))
	if cuisine := strings.TrimSpace(r.Cuisine); cuisine != "" {
		lines = append(lines, bg.Render(cuisine, styles.AccentText))
	}
	for _, link := range r.Links() {
		label := bg.Render(padRight(link.Label, 8), styles.MutedText)
		lines = append(lines, label+bg.Render(truncateMiddle(link.URL, width-8), styles.InfoText))
	}
	lines = append(lines, "")

	previewRows := m.listHeight() - len(lines) - 1
	if previewRows > width/2 {
		previewRows = width / 2
	}
	lines = append(lines, m.renderPreview(r, width, previewRows, styles, bg))
	return strings.Join(lines, "\n")
}

func (m Model) renderPreview(r recipes.Recipe, width, rows int, styles Styles, bg BgStyle) string {
	if rows <= 0 {
		return ""
	}
	phase := m.loader.Phase()
	switch {
	case phase.IsSuccess():
		return m.preview.render(phase.Image, width, rows)
	case phase.IsFailure():
		msg := "Image unavailable: " + describeImageError(phase.Err)
		if !m.online {
			msg += " (will retry when back online)"
		}
		return bg.Render(truncate(msg, width), styles.WarningText)
	default:
		if strings.TrimSpace(r.PhotoURLLarge) == "" {
			return bg.Render("No photo", styles.FaintText)
		}
		return bg.Render("Loading photo...", styles.FaintText)
	}
}

func describeImageError(err error) string {
	var loadErr *imageloader.Error
	if !errors.As(err, &loadErr) {
		if err == nil {
			return "unknown error"
		}
		return err.Error()
	}
	switch loadErr.Kind {
	case imageloader.IncorrectStatusCode:
		return fmt.Sprintf("server returned %d", loadErr.StatusCode)
	case imageloader.IncorrectDataType:
		return "not an image"
	default:
		return "network error"
	}
}

func describeRecipesError(err error) string {
	var e *recipes.Error
	if !errors.As(err, &e) {
		if err == nil {
			return "Unknown error"
		}
		return err.Error()
	}
	switch e.Kind {
	case recipes.NetworkError:
		return "Could not reach the recipe service"
	case recipes.ServerError:
		return fmt.Sprintf("Recipe service returned HTTP %d", e.StatusCode)
	case recipes.DecodingError:
		return "Recipe data was malformed"
	case recipes.InvalidResponse:
		return "Recipe service sent an invalid response"
	case recipes.InvalidURL:
		return "Recipe service URL is invalid"
	default:
		return e.Error()
	}
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
