package app

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/five82/galley/internal/recipes"
)

// recipeServer serves /recipes plus the photos it references. Photo URLs
// carry a signature that changes with every listing.
type recipeServer struct {
	*httptest.Server

	mu        sync.Mutex
	signature int
	hits      map[string]int
	png       []byte
}

func newRecipeServer(t *testing.T) *recipeServer {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	s := &recipeServer{hits: map[string]int{}, png: buf.Bytes()}
	mux := http.NewServeMux()
	mux.HandleFunc("/recipes", s.handleRecipes)
	mux.HandleFunc("/photos/", s.handlePhoto)
	s.Server = httptest.NewServer(mux)
	t.Cleanup(s.Close)
	return s
}

func (s *recipeServer) handleRecipes(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.signature++
	sig := s.signature
	s.mu.Unlock()

	photo := func(name string) string {
		return fmt.Sprintf("%s/photos/%s.png?X-Amz-Signature=sig%d", s.URL, name, sig)
	}
	body := map[string]any{"recipes": []map[string]any{
		{
			"uuid": uuid.NewString(), "cuisine": "Malaysian", "name": "Nasi Lemak",
			"photo_url_large": photo("nasi-large"), "photo_url_small": photo("nasi-small"),
		},
		{
			"uuid": uuid.NewString(), "cuisine": "British", "name": "Bakewell Tart",
			"photo_url_large": photo("tart-large"), "photo_url_small": photo("missing"),
		},
	}}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}

func (s *recipeServer) handlePhoto(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.hits[r.URL.Path]++
	s.mu.Unlock()
	if strings.Contains(r.URL.Path, "missing") {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	_, _ = w.Write(s.png)
}

func (s *recipeServer) photoHits(path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits[path]
}

func writeConfig(t *testing.T, baseURL string) Options {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := fmt.Sprintf(`base_url = %q
cache_dir = %q
log_file = %q
`, baseURL, filepath.Join(dir, "cache"), filepath.Join(dir, "galley.log"))
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return Options{ConfigPath: path, PrefsPath: filepath.Join(dir, "prefs.toml")}
}

func TestListPrintsRecipesByCuisine(t *testing.T) {
	srv := newRecipeServer(t)
	opts := writeConfig(t, srv.URL)

	var out bytes.Buffer
	if err := List(context.Background(), opts, &out, io.Discard); err != nil {
		t.Fatalf("List: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2:\n%s", len(lines), out.String())
	}
	first := strings.Split(lines[0], "\t")
	if len(first) != 4 || first[1] != "British" || first[2] != "Bakewell Tart" {
		t.Fatalf("first line = %q", lines[0])
	}
	if _, err := uuid.Parse(first[0]); err != nil {
		t.Fatalf("first column is not a uuid: %q", first[0])
	}
}

func TestListReportsServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()
	opts := writeConfig(t, srv.URL)

	err := List(context.Background(), opts, io.Discard, io.Discard)
	if recipes.KindOf(err) != recipes.ServerError {
		t.Fatalf("List error = %v, want server error", err)
	}
}

func TestBaseURLFlagOverridesConfig(t *testing.T) {
	srv := newRecipeServer(t)
	opts := writeConfig(t, "https://unused.invalid")
	opts.BaseURL = srv.URL

	var out bytes.Buffer
	if err := List(context.Background(), opts, &out, io.Discard); err != nil {
		t.Fatalf("List: %v", err)
	}
	if !strings.Contains(out.String(), "Nasi Lemak") {
		t.Fatalf("override ignored:\n%s", out.String())
	}
}

func TestPrefetchSkipsCachedPhotos(t *testing.T) {
	srv := newRecipeServer(t)
	opts := writeConfig(t, srv.URL)
	ctx := context.Background()

	stats, err := Prefetch(ctx, opts, PrefetchOptions{Concurrency: 2, Rate: 100}, io.Discard)
	if err != nil {
		t.Fatalf("first Prefetch: %v", err)
	}
	if stats.Fetched != 3 || stats.Failed != 1 || stats.Cached != 0 {
		t.Fatalf("first run stats = %+v", stats)
	}

	// The second listing re-signs every URL; the cache key ignores it.
	stats, err = Prefetch(ctx, opts, PrefetchOptions{Concurrency: 2, Rate: 100}, io.Discard)
	if err != nil {
		t.Fatalf("second Prefetch: %v", err)
	}
	if stats.Cached != 3 || stats.Fetched != 0 || stats.Failed != 1 {
		t.Fatalf("second run stats = %+v", stats)
	}
	if hits := srv.photoHits("/photos/nasi-large.png"); hits != 1 {
		t.Fatalf("nasi-large fetched %d times, want 1", hits)
	}
	if hits := srv.photoHits("/photos/missing.png"); hits != 2 {
		t.Fatalf("failures should not be cached; missing fetched %d times", hits)
	}
}

func TestPurgeCacheForcesRefetch(t *testing.T) {
	srv := newRecipeServer(t)
	opts := writeConfig(t, srv.URL)
	ctx := context.Background()

	if _, err := Prefetch(ctx, opts, PrefetchOptions{Rate: 100}, io.Discard); err != nil {
		t.Fatalf("Prefetch: %v", err)
	}
	if err := PurgeCache(opts, io.Discard); err != nil {
		t.Fatalf("PurgeCache: %v", err)
	}
	stats, err := Prefetch(ctx, opts, PrefetchOptions{Rate: 100}, io.Discard)
	if err != nil {
		t.Fatalf("Prefetch after purge: %v", err)
	}
	if stats.Fetched != 3 || stats.Cached != 0 {
		t.Fatalf("stats after purge = %+v", stats)
	}
}

func TestPrefetchStopsOnCancel(t *testing.T) {
	srv := newRecipeServer(t)
	opts := writeConfig(t, srv.URL)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Prefetch(ctx, opts, PrefetchOptions{}, io.Discard); err == nil {
		t.Fatal("expected an error from a cancelled prefetch")
	}
}

func TestPhotoURLsDedupesAndOrdersSmallFirst(t *testing.T) {
	list := []recipes.Recipe{
		{PhotoURLSmall: "https://x/a-small", PhotoURLLarge: "https://x/a-large"},
		{PhotoURLSmall: "https://x/a-small", PhotoURLLarge: " "},
		{PhotoURLSmall: "not a url", PhotoURLLarge: "https://x/b-large"},
	}
	got := photoURLs(list)
	want := []string{"https://x/a-small", "https://x/a-large", "https://x/b-large"}
	if len(got) != len(want) {
		t.Fatalf("got %d urls, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("url[%d] = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestOpenLogFileCreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	opts := writeConfig(t, "https://example.com")
	cfg, err := loadConfig(opts)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	cfg.LogFile = filepath.Join(dir, "nested", "galley.log")

	logger, closeLog, err := openLogFile(cfg)
	if err != nil {
		t.Fatalf("openLogFile: %v", err)
	}
	logger.Info("hello", "k", "v")
	closeLog()

	data, err := os.ReadFile(cfg.LogFile)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	if !strings.Contains(string(data), "msg=hello") {
		t.Fatalf("log missing entry: %q", data)
	}
}
