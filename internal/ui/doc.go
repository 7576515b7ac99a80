// Package ui provides the galley terminal interface, built on Bubble Tea.
//
// # Layout
//
//	┌ header: logo, load status, recipe count, offline badge, theme ┐
//	├ command bar: short key help                                   ┤
//	│ recipe list             │ detail: photo preview, links        │
//	└─────────────────────────┴────────────────────────────────────┘
//
// Below LayoutCompactWidth columns the detail pane is hidden and the list
// takes the full width.
//
// # Data Flow
//
// The Model renders a state.ViewState from the recipes store and dispatches
// LoadRecipes and Refresh actions as commands. Store transitions, network
// reachability changes and work posted by the image loader and background
// colour manager all travel through one FIFO queue (uiScheduler) and are
// applied inside Update in the order they were produced.
//
// # Screen Services
//
// Each Model owns an imageloader.Loader for the selected recipe's large photo
// and a bgcolor.Manager fed with the geometry of the visible row nearest the
// middle of the list. That row's thumbnail tints the surface colours. Close cancels
// both and drops any pending updates.
//
// # Preferences
//
// Theme (T) and tint algorithm (c) changes are written to the prefs file
// immediately.
package ui
