package fetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alaamer12/DevCurator/internal/cache"
	"github.com/alaamer12/DevCurator/internal/post"
)

func TestLoadSources(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sources.yaml")
	doc := `devto:
  tags: [go, webdev]
feeds:
  - name: freeCodeCamp
    url: https://www.freecodecamp.org/news/rss/
  - name: CSS-Tricks
    url: https://css-tricks.com/feed/
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadSources(path)
	if err != nil {
		t.Fatalf("LoadSources: %v", err)
	}
	if len(cfg.Devto.Tags) != 2 || cfg.Devto.Tags[0] != "go" {
		t.Errorf("Devto.Tags = %v, want [go webdev]", cfg.Devto.Tags)
	}
	if len(cfg.Feeds) != 2 || cfg.Feeds[1].Name != "CSS-Tricks" {
		t.Errorf("Feeds = %v, want two named feeds", cfg.Feeds)
	}

	sources := BuildSources(cfg, testOptions())
	if len(sources) != 3 {
		t.Errorf("BuildSources produced %d sources, want 3 (dev.to + 2 feeds)", len(sources))
	}
}

func TestLoadSourcesMissingFile(t *testing.T) {
	if _, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing sources file")
	}
}

type stubSource struct {
	name  string
	posts []post.Post
	err   error
	calls int
}

func (s *stubSource) Name() string { return s.name }

func (s *stubSource) Fetch(ctx context.Context) ([]post.Post, error) {
	s.calls++
	return s.posts, s.err
}

func TestAllCombinesSourcesAndSkipsFailures(t *testing.T) {
	good := &stubSource{
		name:  "good",
		posts: []post.Post{{URL: "https://example.com/a"}, {URL: "https://example.com/b"}},
	}
	bad := &stubSource{name: "bad", err: errors.New("upstream down")}

	got := All(context.Background(), []Source{good, bad}, 2, cache.New(), 0)
	if len(got) != 2 {
		t.Errorf("All returned %d posts, want 2 (failed source skipped)", len(got))
	}
}

func TestAllReusesCachedResults(t *testing.T) {
	src := &stubSource{
		name:  "cached",
		posts: []post.Post{{URL: "https://example.com/a"}},
	}
	feedCache := cache.New()

	All(context.Background(), []Source{src}, 1, feedCache, time.Minute)
	All(context.Background(), []Source{src}, 1, feedCache, time.Minute)

	if src.calls != 1 {
		t.Errorf("source fetched %d times, want 1 (second run served from cache)", src.calls)
	}
}
