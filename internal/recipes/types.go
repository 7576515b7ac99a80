package recipes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Recipe mirrors a single element of the /recipes payload.
type Recipe struct {
	ID            uuid.UUID
	Cuisine       string
	Name          string
	PhotoURLLarge string
	PhotoURLSmall string
	SourceURL     *string
	YoutubeURL    *string
}

// ListResponse mirrors /recipes.
type ListResponse struct {
	Recipes []Recipe `json:"recipes"`
}

type wireRecipe struct {
	UUID          string  `json:"uuid"`
	Cuisine       string  `json:"cuisine"`
	Name          string  `json:"name"`
	PhotoURLLarge string  `json:"photo_url_large"`
	PhotoURLSmall string  `json:"photo_url_small"`
	SourceURL     *string `json:"source_url"`
	YoutubeURL    *string `json:"youtube_url"`
}

var requiredFields = []string{"uuid", "cuisine", "name", "photo_url_large", "photo_url_small"}

// MarshalJSON writes every field, using null for absent optional links.
func (r Recipe) MarshalJSON() ([]byte, error) {
	return json.Marshal(wireRecipe{
		UUID:          r.ID.String(),
		Cuisine:       r.Cuisine,
		Name:          r.Name,
		PhotoURLLarge: r.PhotoURLLarge,
		PhotoURLSmall: r.PhotoURLSmall,
		SourceURL:     r.SourceURL,
		YoutubeURL:    r.YoutubeURL,
	})
}

// UnmarshalJSON decodes a recipe strictly: required fields must be present
// strings and uuid must parse. Optional links that are missing, null, or not
// strings decode to nil.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("recipe is null")
	}

	required := make(map[string]string, len(requiredFields))
	for _, name := range requiredFields {
		raw, ok := fields[name]
		if !ok {
			return fmt.Errorf("recipe missing field %q", name)
		}
		var value string
		if err := json.Unmarshal(raw, &value); err != nil || isNull(raw) {
			return fmt.Errorf("recipe field %q must be a string", name)
		}
		required[name] = value
	}

	id, err := uuid.Parse(required["uuid"])
	if err != nil {
		return fmt.Errorf("recipe field %q: %w", "uuid", err)
	}

	*r = Recipe{
		ID:            id,
		Cuisine:       required["cuisine"],
		Name:          required["name"],
		PhotoURLLarge: required["photo_url_large"],
		PhotoURLSmall: required["photo_url_small"],
		SourceURL:     optionalString(fields["source_url"]),
		YoutubeURL:    optionalString(fields["youtube_url"]),
	}
	return nil
}

func optionalString(raw json.RawMessage) *string {
	if len(raw) == 0 || isNull(raw) {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return nil
	}
	return &value
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// Title returns the display name, falling back to the id when blank.
func (r Recipe) Title() string {
	if name := strings.TrimSpace(r.Name); name != "" {
		return name
	}
	return r.ID.String()
}

// Link is a labelled optional URL attached to a recipe.
type Link struct {
	Label string
	URL   string
}

// Links returns the optional links that are present.
func (r Recipe) Links() []Link {
	var links []Link
	if r.SourceURL != nil && strings.TrimSpace(*r.SourceURL) != "" {
		links = append(links, Link{Label: "Source", URL: *r.SourceURL})
	}
	if r.YoutubeURL != nil && strings.TrimSpace(*r.YoutubeURL) != "" {
		links = append(links, Link{Label: "YouTube", URL: *r.YoutubeURL})
	}
	return links
}

// Equal reports whether two recipes carry identical fields.
func (r Recipe) Equal(other Recipe) bool {
	return r.ID == other.ID &&
		r.Cuisine == other.Cuisine &&
		r.Name == other.Name &&
		r.PhotoURLLarge == other.PhotoURLLarge &&
		r.PhotoURLSmall == other.PhotoURLSmall &&
		equalOptional(r.SourceURL, other.SourceURL) &&
		equalOptional(r.YoutubeURL, other.YoutubeURL)
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SortByCuisine returns a copy ordered by cuisine then name.
func SortByCuisine(list []Recipe) []Recipe {
	out := make([]Recipe, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		ci, cj := strings.ToLower(out[i].Cuisine), strings.ToLower(out[j].Cuisine)
		if ci != cj {
			return ci < cj
		}
		return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
	})
	return out
}
