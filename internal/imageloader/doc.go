// Package imageloader loads, decodes and caches remote images for display.
//
// # Phases
//
// Each Loader owns one Phase:
//
//	Empty     nothing requested yet, or reset for a new URL
//	Success   decoded Image available
//	Failure   Err is an *Error (TransportError, IncorrectStatusCode,
//	          IncorrectDataType)
//
// Phase changes are delivered through the Scheduler, which in the TUI posts
// them into the Bubble Tea program. Fetch goroutines never touch the phase
// directly.
//
// # Loading
//
// Load consults the response cache first; a cached body that decodes skips
// the network. Otherwise one fetch per URL is started, and further Load calls
// for that URL are ignored until it finishes. A successful body is written
// back to the cache.
//
// Switching to a different URL is the caller's job: Reset, then Load. Results
// for a URL that is no longer current are discarded.
//
// # Cancellation
//
// Cancel aborts outstanding fetches and bumps a generation counter. Anything
// produced under an older generation, including closures already queued on
// the Scheduler, is dropped, so no phase change is observed after Cancel
// returns.
//
// # Observers
//
// Observers see LoadStarted on the calling goroutine and PhaseChanged on the
// Scheduler. ReconnectRetry is the stock observer: it remembers the last
// request and reissues it when reachability reports a reconnect while the
// loader is failed.
package imageloader
