// Package recipes provides the recipe model and the client for the recipe
// API.
//
// # Endpoint
//
// The client issues a single GET to <base_url>/recipes through a
// session.Session and expects the envelope
//
//	{"recipes": [{"uuid": "...", "cuisine": "...", "name": "...",
//	  "photo_url_large": "...", "photo_url_small": "...",
//	  "source_url": "..." | null, "youtube_url": "..." | null}]}
//
// uuid, cuisine, name and both photo URLs are required strings and uuid must
// parse. source_url and youtube_url may be absent or null, which decodes to a
// nil link. One malformed element fails the whole list. An empty list is a
// success.
//
// # Errors
//
// Every failure from FetchRecipes is an *Error carrying an ErrorKind:
//
//	InvalidURL       the endpoint could not be built
//	InvalidResponse  the response was not HTTP (for example a file URL)
//	ServerError      status outside 200-299; StatusCode is set
//	DecodingError    the body is not a valid envelope
//	NetworkError     the transport failed, including cancellation
//
// Use errors.Is with &Error{Kind: k} or KindOf to branch on the kind.
//
// # Testing
//
// FetchRecipes is exposed through the Fetcher interface so view stores can
// be driven by hand-written fakes.
package recipes
