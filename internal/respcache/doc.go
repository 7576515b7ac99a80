// Package respcache caches HTTP response bodies keyed by URL.
//
// A Cache sits in front of a Store and passes every URL through an optional
// KeyFunc before touching storage. StripQuery builds the common case: URLs
// that differ only by signed or cache-busting query parameters map to one
// entry.
//
// Two Store implementations ship here. MemoryStore is a ristretto cache whose
// cost is the entry size in bytes. DiskStore is a badger database with a byte
// ceiling; when the ceiling is reached the tier is emptied before the next
// write. Tiered combines them, reading memory first and promoting disk hits.
package respcache
