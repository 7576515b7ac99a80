package recipes

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/five82/galley/internal/session"
)

// Fetcher loads the recipe list. *Client implements it; the view store and
// tests depend only on this interface.
type Fetcher interface {
	FetchRecipes(ctx context.Context) ([]Recipe, error)
}

// Ensure Client implements Fetcher at compile time.
var _ Fetcher = (*Client)(nil)

const recipesPath = "recipes"

// Client talks to the recipe API.
type Client struct {
	baseURL *url.URL
	session session.Session
}

// NewClient builds a Client from a service configuration.
func NewClient(cfg session.Configuration) (*Client, error) {
	if cfg.BaseURL == nil {
		return nil, &Error{Kind: InvalidURL, Err: fmt.Errorf("base url is nil")}
	}
	sess := cfg.Session
	if sess == nil {
		sess = session.NewHTTPSession(0)
	}
	return &Client{baseURL: cfg.BaseURL, session: sess}, nil
}

// Endpoint returns the absolute URL of the recipe list.
func (c *Client) Endpoint() *url.URL {
	return c.baseURL.JoinPath(recipesPath)
}

// FetchRecipes retrieves the recipe list. Every failure is an *Error.
func (c *Client) FetchRecipes(ctx context.Context) ([]Recipe, error) {
	if c == nil {
		return nil, &Error{Kind: InvalidURL, Err: fmt.Errorf("client is nil")}
	}

	resp, err := c.session.Fetch(ctx, c.Endpoint())
	if err != nil {
		return nil, &Error{Kind: NetworkError, Err: err}
	}
	if !resp.IsHTTP() {
		return nil, &Error{Kind: InvalidResponse}
	}
	if !resp.OK() {
		return nil, &Error{Kind: ServerError, StatusCode: resp.StatusCode}
	}

	list, err := DecodeList(resp.Body)
	if err != nil {
		return nil, &Error{Kind: DecodingError, Err: err}
	}
	return list, nil
}

// DecodeList decodes a /recipes envelope. A malformed element fails the
// whole batch.
func DecodeList(data []byte) ([]Recipe, error) {
	var raw struct {
		Recipes *[]Recipe `json:"recipes"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if raw.Recipes == nil {
		return nil, fmt.Errorf("decode response: missing recipes")
	}
	list := *raw.Recipes
	if list == nil {
		list = []Recipe{}
	}
	return list, nil
}
