package ui

import (
	"math"
	"strings"

	"github.com/five82/galley/internal/bgcolor"
	"github.com/five82/galley/internal/recipes"
)

func (m Model) recipes() []recipes.Recipe {
	return m.view.Recipes
}

func (m Model) selectedRecipe() (recipes.Recipe, bool) {
	list := m.recipes()
	if m.selected < 0 || m.selected >= len(list) {
		return recipes.Recipe{}, false
	}
	return list[m.selected], true
}

func (m Model) listHeight() int {
	h := m.height - chromeRows
	if h < 1 {
		return 1
	}
	return h
}

func (m Model) listWidth() int {
	if m.width < LayoutCompactWidth {
		return m.width
	}
	return m.width * 45 / 100
}

func (m Model) detailWidth() int {
	if m.width < LayoutCompactWidth {
		return 0
	}
	return m.width - m.listWidth()
}

// moveSelection moves by delta rows and keeps the selection on screen.
func (m *Model) moveSelection(delta int) {
	m.setSelection(m.selected + delta)
}

func (m *Model) setSelection(idx int) {
	m.selected = clamp(idx, 0, len(m.recipes())-1)
	m.ensureVisible()
	m.syncSelection()
}

func (m *Model) ensureVisible() {
	height := m.listHeight()
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+height {
		m.offset = m.selected - height + 1
	}
	m.offset = clamp(m.offset, 0, len(m.recipes())-height)
}

// feedColors reports the visible row whose midpoint is nearest the middle of
// the list. The manager ignores it when it is too far from the centre.
func (m Model) feedColors() {
	if m.colors == nil {
		return
	}
	list := m.recipes()
	height := m.listHeight()
	viewport := float64(height) * rowPoints
	centre := viewport / 2

	best, bestDist := -1, math.Inf(1)
	for row := 0; row < height && m.offset+row < len(list); row++ {
		mid := (float64(row) + 0.5) * rowPoints
		if d := math.Abs(mid - centre); d < bestDist {
			best, bestDist = row, d
		}
	}
	if best < 0 {
		return
	}
	m.colors.Update(m.ctx, list[m.offset+best].PhotoURLSmall, bgcolor.Geometry{
		MidY:           (float64(best) + 0.5) * rowPoints,
		ViewportHeight: viewport,
	})
}

func (m Model) renderList(theme Theme, width, height int) string {
	styles := theme.Styles().WithBackground(theme.Surface)
	bg := NewBgStyle(theme.Surface)
	list := m.recipes()

	showCuisine := width >= LayoutCuisineWidth
	cuisineWidth := 0
	if showCuisine {
		cuisineWidth = 14
	}
	nameWidth := width - cuisineWidth - 3

	lines := make([]string, 0, height)
	for row := 0; row < height; row++ {
		idx := m.offset + row
		if idx >= len(list) {
			break
		}
		r := list[idx]
		name := padRight(truncate(r.Title(), nameWidth), nameWidth)
		cuisine := ""
		if showCuisine {
			cuisine = padRight(truncate(r.Cuisine, cuisineWidth), cuisineWidth)
		}
		if idx == m.selected {
			lines = append(lines, styles.Selected.Width(width).Render(" ▸ "+name+cuisine))
			continue
		}
		lines = append(lines, bg.FillLine(bg.Spaces(3)+bg.Render(name, styles.Text)+bg.Render(cuisine, styles.MutedText), width))
	}
	return bg.FillBlock(strings.Join(lines, "\n"), width, height)
}
