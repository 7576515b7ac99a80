// Package app is the composition root for galley.
//
// # Overview
//
// Run wires configuration, preferences, logging, the image cache, the
// reachability monitor, the recipe client and the recipes view store, then
// hands them to the UI and blocks until it exits.
//
//	┌──────────────┐
//	│   Run()      │
//	└──────┬───────┘
//	       ├─────> config.Load()           galley config + --base-url override
//	       ├─────> openLogFile()           slog text handler on log_file
//	       ├─────> prefs.Load()            theme, tint algorithm
//	       ├─────> openServices()          HTTP session, recipes.Client,
//	       │                               ristretto + badger cache
//	       ├─────> reachability.Monitor    TCP probe of probe_address
//	       ├─────> state.NewRecipesStore()
//	       └─────> ui.Run()                blocks
//
// # Headless Commands
//
//   - List: fetch the recipes and print id, cuisine, name and thumbnail URL,
//     tab separated, sorted by cuisine.
//   - Prefetch: download every photo that is not already cached, with
//     bounded concurrency (errgroup) and a request rate limit. A photo is
//     only cached if it decodes. Failed downloads are counted and logged.
//   - PurgeCache: drop every cached image from both tiers.
//
// Headless commands log to the stderr writer they are given; the TUI logs
// to the configured file because it owns the terminal.
//
// # Error Handling
//
// Configuration, cache and client setup failures are returned from every
// entry point. Recipe fetch failures are returned from List and Prefetch
// and shown in the UI by Run.
package app
