package recipes

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func strPtr(s string) *string { return &s }

func TestRecipe_EncodeDecodeKeepsPresentFields(t *testing.T) {
	list, err := DecodeList([]byte(sampleEnvelope))
	if err != nil {
		t.Fatalf("DecodeList returned error: %v", err)
	}

	for _, original := range list {
		encoded, err := json.Marshal(original)
		if err != nil {
			t.Fatalf("Marshal returned error: %v", err)
		}
		var decoded Recipe
		if err := json.Unmarshal(encoded, &decoded); err != nil {
			t.Fatalf("Unmarshal returned error: %v", err)
		}
		if !decoded.Equal(original) {
			t.Fatalf("round trip changed recipe:\n got %#v\nwant %#v", decoded, original)
		}
	}
}

func TestRecipe_MarshalUsesWireNames(t *testing.T) {
	r := Recipe{
		ID:            uuid.MustParse("123e4567-e89b-12d3-a456-426614174000"),
		Cuisine:       "British",
		Name:          "Bakewell Tart",
		PhotoURLLarge: "https://example.com/l.jpg",
		PhotoURLSmall: "https://example.com/s.jpg",
	}
	encoded, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	got := string(encoded)
	for _, want := range []string{`"uuid":"123e4567-e89b-12d3-a456-426614174000"`, `"photo_url_large"`, `"source_url":null`, `"youtube_url":null`} {
		if !strings.Contains(got, want) {
			t.Fatalf("encoded = %s, want it to contain %s", got, want)
		}
	}
}

func TestRecipe_MalformedOptionalFieldsAreTolerated(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{
		"uuid": "123e4567-e89b-12d3-a456-426614174000",
		"name": "Kvass", "cuisine": "Russian",
		"photo_url_large": "l", "photo_url_small": "s",
		"source_url": 12, "youtube_url": null
	}`), &r)
	if err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if r.SourceURL != nil || r.YoutubeURL != nil {
		t.Fatalf("optional fields = %v %v, want nil", r.SourceURL, r.YoutubeURL)
	}
}

func TestRecipe_NullRequiredFieldFails(t *testing.T) {
	var r Recipe
	err := json.Unmarshal([]byte(`{
		"uuid": "123e4567-e89b-12d3-a456-426614174000",
		"name": null, "cuisine": "Russian",
		"photo_url_large": "l", "photo_url_small": "s"
	}`), &r)
	if err == nil {
		t.Fatalf("Unmarshal returned nil error, want error for null name")
	}
}

func TestRecipe_LinksAndTitle(t *testing.T) {
	r := Recipe{ID: uuid.New(), SourceURL: strPtr("https://src"), YoutubeURL: strPtr("  ")}
	links := r.Links()
	if len(links) != 1 || links[0].Label != "Source" {
		t.Fatalf("Links = %#v, want only Source", links)
	}
	if r.Title() != r.ID.String() {
		t.Fatalf("Title = %q, want id fallback", r.Title())
	}
	r.Name = " Pho "
	if r.Title() != "Pho" {
		t.Fatalf("Title = %q, want Pho", r.Title())
	}
}

func TestSortByCuisine_DoesNotMutateInput(t *testing.T) {
	in := []Recipe{
		{Cuisine: "Malaysian", Name: "Apam"},
		{Cuisine: "british", Name: "Tart"},
		{Cuisine: "British", Name: "Crumble"},
	}
	out := SortByCuisine(in)
	if out[0].Name != "Crumble" || out[1].Name != "Tart" || out[2].Name != "Apam" {
		t.Fatalf("SortByCuisine order = %v", []string{out[0].Name, out[1].Name, out[2].Name})
	}
	if in[0].Name != "Apam" {
		t.Fatalf("input was mutated")
	}
}

func TestDecodeList_TrailingData(t *testing.T) {
	if _, err := DecodeList([]byte("{\"recipes\": []}\n  \n")); err != nil {
		t.Fatalf("trailing whitespace rejected: %v", err)
	}
	if _, err := DecodeList([]byte(`{"recipes": []}garbage`)); err == nil {
		t.Fatal("trailing garbage accepted")
	}
}
