// Package state holds the recipes screen's view store.
//
// # Overview
//
// RecipesStore is a unidirectional state container: the UI renders the
// current ViewState and dispatches Actions through Send. All transitions
// happen inside Send; nothing else writes the state.
//
// # States
//
//	Loading        initial state; shown while a non pull-to-refresh fetch runs
//	FailedToLoad   the last fetch failed; Err carries the recipes.Error
//	Loaded         the last fetch succeeded; Recipes may be empty
//
// # Actions
//
//	LoadRecipes{}                 Loading → fetch → Loaded | FailedToLoad
//	Refresh{PullToRefresh: false} Loading → fetch → Loaded | FailedToLoad
//	Refresh{PullToRefresh: true}  (list stays) → fetch → Loaded | FailedToLoad
//
// A pull-to-refresh never enters Loading, so the list on screen is not
// discarded during the gesture. The Refreshing flag is raised instead.
//
// # Overlapping Actions
//
// Actions are cancel-and-restart. Issuing an action cancels the context of
// the fetch started by the previous one and bumps a generation counter;
// results from an older generation are dropped. A double pull-to-refresh
// therefore issues two requests but only the second one lands.
//
// Cancelling the caller's context is not a failure: the state is left as it
// was (minus the Refreshing flag).
//
// # Concurrency
//
// Send may be called from any goroutine. Subscribers registered through the
// embedded viewstore.Core are invoked synchronously, in transition order,
// and must not call Send.
//
// # Usage Example
//
//	store := state.NewRecipesStore(client, logger)
//	unsubscribe := store.Subscribe(func(v state.ViewState) {
//		program.Send(viewStateMsg(v))
//	})
//	defer unsubscribe()
//
//	go store.Send(ctx, state.LoadRecipes{})
package state
