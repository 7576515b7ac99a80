// Package config handles loading and parsing galley's configuration file.
//
// # Configuration Discovery
//
// The Load function follows this resolution order:
//
//  1. If a path is explicitly provided, use it
//  2. Otherwise, use ~/.config/galley/config.toml (default)
//  3. If the config file doesn't exist, fall back to Default()
//  4. If the file exists but fields are missing/empty, use defaults
//
// # Default Values
//
//   - Endpoint: https://d3jbb8n5wk0qxi.cloudfront.net (recipes at /recipes)
//   - Image cache: ~/.cache/galley/images, 10 MB memory / 1 GB disk
//   - Request timeout: 15s
//   - Reachability probe: TCP dial to the endpoint host every 5s
//   - Log file: ~/.local/state/galley/galley.log at info level
//   - Cache key rewriting strips the AWS presigned-URL query parameters
//
// # Configuration Fields
//
//	base_url               recipe service root
//	cache_dir              badger directory for the disk image cache
//	memory_capacity        bytes held by the in-memory image cache
//	disk_capacity          bytes held on disk before the cache is emptied
//	request_timeout        per-request HTTP timeout (Go duration)
//	probe_address          host:port dialled to detect connectivity
//	probe_interval         how often the probe runs (Go duration)
//	log_file               where the TUI writes its log
//	log_level              debug, info, warn or error
//	cache_key_strip_query  query parameters ignored when keying the cache
//
// probe_address defaults to the base_url host with the scheme's port. An
// explicit empty cache_key_strip_query list turns key rewriting off.
//
// # Path Expansion
//
// Paths starting with ~ are expanded to the user's home directory and made
// absolute.
//
// # Error Handling
//
// Load returns errors for:
//   - File permission or read errors (not "file not found")
//   - TOML parsing errors
//   - Unparsable or non-positive durations, negative capacities and unknown
//     log levels
package config
