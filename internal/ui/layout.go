package ui

// Terminal width thresholds for responsive layouts.
const (
	// LayoutCompactWidth is the threshold below which the detail pane is
	// hidden.
	LayoutCompactWidth = 90

	// LayoutCuisineWidth is the minimum list width that shows the cuisine
	// column.
	LayoutCuisineWidth = 40
)

// Geometry fed to the background colour manager. Terminal rows are scaled to
// points so the manager's default proximity threshold keeps its meaning.
const (
	rowPoints = 20.0
)

// chromeRows is the header plus the command bar.
const chromeRows = 2
