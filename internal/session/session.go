// Package session wraps net/http behind a one-shot fetch interface and
// pairs it with the recipe API base URL.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

// Session performs a single GET against a URL and returns the raw body with
// its response metadata. *HTTPSession implements it; tests supply fakes.
type Session interface {
	Fetch(ctx context.Context, u *url.URL) (Response, error)
}

// Ensure HTTPSession implements Session at compile time.
var _ Session = (*HTTPSession)(nil)

// Response is the body and metadata of a completed fetch.
type Response struct {
	Body       []byte
	StatusCode int // zero for non-HTTP (file) responses
	Header     http.Header
	URL        *url.URL
}

// IsHTTP reports whether the response came from an HTTP exchange.
func (r Response) IsHTTP() bool {
	return r.StatusCode != 0
}

// OK reports whether the response carries a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}

// ContentType returns the Content-Type header, if any.
func (r Response) ContentType() string {
	if r.Header == nil {
		return ""
	}
	return r.Header.Get("Content-Type")
}

const (
	// Version is reported in the User-Agent header.
	Version = "0.1"

	defaultUserAgent = "galley/" + Version
	defaultTimeout   = 15 * time.Second
	maxBodyBytes     = 32 << 20
)

// ErrBodyTooLarge is returned when a response body exceeds the session limit.
var ErrBodyTooLarge = errors.New("response body too large")

// HTTPSession fetches http(s) URLs with net/http and file URLs from disk.
type HTTPSession struct {
	http      *http.Client
	userAgent string
}

// NewHTTPSession builds a session whose requests time out after timeout.
// A non-positive timeout uses the default.
func NewHTTPSession(timeout time.Duration) *HTTPSession {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPSession{
		http: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}
}

// Fetch implements Session.
func (s *HTTPSession) Fetch(ctx context.Context, u *url.URL) (Response, error) {
	if s == nil {
		return Response{}, fmt.Errorf("session is nil")
	}
	if u == nil {
		return Response{}, fmt.Errorf("url is nil")
	}
	if u.Scheme == "file" {
		return fetchFile(u)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Response{}, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.http.Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := readLimited(resp.Body)
	if err != nil {
		return Response{}, fmt.Errorf("read response: %w", err)
	}
	return Response{
		Body:       body,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		URL:        u,
	}, nil
}

func fetchFile(u *url.URL) (Response, error) {
	file, err := os.Open(u.Path)
	if err != nil {
		return Response{}, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	body, err := readLimited(file)
	if err != nil {
		return Response{}, fmt.Errorf("read file: %w", err)
	}
	return Response{Body: body, URL: u}, nil
}

func readLimited(r io.Reader) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxBodyBytes+1))
	if err != nil {
		return nil, err
	}
	if len(body) > maxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	return body, nil
}

// Configuration pairs the recipe API base URL with the session used to reach it.
type Configuration struct {
	BaseURL *url.URL
	Session Session
}

// NewConfiguration normalises baseURL and pairs it with sess. A nil session
// falls back to an HTTPSession with the default timeout.
func NewConfiguration(baseURL string, sess Session) (Configuration, error) {
	base, err := ParseBaseURL(baseURL)
	if err != nil {
		return Configuration{}, err
	}
	if sess == nil {
		sess = NewHTTPSession(0)
	}
	return Configuration{BaseURL: base, Session: sess}, nil
}

// ParseBaseURL parses an endpoint, defaulting the scheme to https and
// dropping any query or fragment.
func ParseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, fmt.Errorf("base url is empty")
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" && u.Scheme != "file" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
