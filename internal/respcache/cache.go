package respcache

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"
)

// Entry is a cached response body with the metadata needed to replay it.
type Entry struct {
	Body        []byte
	StatusCode  int
	ContentType string
	StoredAt    time.Time
}

// KeyFunc rewrites a request URL into its cache key URL. Returning nil keeps
// the original URL.
type KeyFunc func(*url.URL) *url.URL

// Cache is a URL-keyed response cache that runs every lookup, save and
// removal through a KeyFunc first, so URLs that differ only in volatile
// parts share one entry.
type Cache struct {
	store  Store
	keyFn  KeyFunc
	logger *slog.Logger
	now    func() time.Time
}

// New wraps store. A nil keyFn leaves URLs unchanged.
func New(store Store, keyFn KeyFunc, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{store: store, keyFn: keyFn, logger: logger, now: time.Now}
}

// Key returns the storage key used for u.
func (c *Cache) Key(u *url.URL) string {
	if u == nil {
		return ""
	}
	if c.keyFn != nil {
		if converted := c.keyFn(u); converted != nil {
			return converted.String()
		}
	}
	return u.String()
}

// Lookup returns the entry stored for u.
func (c *Cache) Lookup(u *url.URL) (Entry, bool) {
	if c == nil || u == nil {
		return Entry{}, false
	}
	key := c.Key(u)
	raw, ok := c.store.Get(key)
	if !ok {
		return Entry{}, false
	}
	entry, err := decodeEntry(raw)
	if err != nil {
		c.logger.Warn("dropping unreadable cache entry", "key", key, "error", err)
		c.store.Delete(key)
		return Entry{}, false
	}
	return entry, true
}

// Save stores entry for u. A zero StoredAt is stamped with the current time.
func (c *Cache) Save(u *url.URL, entry Entry) {
	if c == nil || u == nil {
		return
	}
	if entry.StoredAt.IsZero() {
		entry.StoredAt = c.now()
	}
	raw, err := encodeEntry(entry)
	if err != nil {
		c.logger.Warn("cache entry encode failed", "url", u.String(), "error", err)
		return
	}
	c.store.Set(c.Key(u), raw)
}

// Remove deletes the entry for u.
func (c *Cache) Remove(u *url.URL) {
	if c == nil || u == nil {
		return
	}
	c.store.Delete(c.Key(u))
}

// Purge removes every entry.
func (c *Cache) Purge() error {
	return c.store.Purge()
}

// Close releases the underlying store.
func (c *Cache) Close() error {
	return c.store.Close()
}

// StripQuery returns a KeyFunc that drops the named query parameters. URLs
// carrying none of them are left alone.
func StripQuery(names ...string) KeyFunc {
	if len(names) == 0 {
		return nil
	}
	return func(u *url.URL) *url.URL {
		query := u.Query()
		changed := false
		for _, name := range names {
			if query.Has(name) {
				query.Del(name)
				changed = true
			}
		}
		if !changed {
			return nil
		}
		out := *u
		out.RawQuery = query.Encode()
		return &out
	}
}

type entryHeader struct {
	StatusCode  int       `json:"status"`
	ContentType string    `json:"content_type,omitempty"`
	StoredAt    time.Time `json:"stored_at"`
}

// Encoded layout: uint32 header length, JSON header, raw body.
func encodeEntry(e Entry) ([]byte, error) {
	header, err := json.Marshal(entryHeader{
		StatusCode:  e.StatusCode,
		ContentType: e.ContentType,
		StoredAt:    e.StoredAt,
	})
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4, 4+len(header)+len(e.Body))
	binary.BigEndian.PutUint32(out, uint32(len(header)))
	out = append(out, header...)
	out = append(out, e.Body...)
	return out, nil
}

var errShortEntry = errors.New("cache entry truncated")

func decodeEntry(raw []byte) (Entry, error) {
	if len(raw) < 4 {
		return Entry{}, errShortEntry
	}
	n := int(binary.BigEndian.Uint32(raw))
	if len(raw) < 4+n {
		return Entry{}, errShortEntry
	}
	var header entryHeader
	if err := json.Unmarshal(raw[4:4+n], &header); err != nil {
		return Entry{}, fmt.Errorf("decode entry header: %w", err)
	}
	body := make([]byte, len(raw)-4-n)
	copy(body, raw[4+n:])
	return Entry{
		Body:        body,
		StatusCode:  header.StatusCode,
		ContentType: header.ContentType,
		StoredAt:    header.StoredAt,
	}, nil
}
