package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alaamer12/DevCurator/internal/post"
)

func samplePosts() []post.Post {
	return []post.Post{
		{
			Title:              "Intro to Go",
			Description:        "Getting started.",
			URL:                "https://example.com/a",
			Author:             "alice",
			PublishedAt:        time.Date(2026, 8, 20, 10, 0, 0, 0, time.UTC),
			Tags:               []string{"go"},
			ReadingTimeMinutes: 5,
			Source:             "Dev.to",
		},
		{
			Title:  "CSS Grid",
			URL:    "https://example.com/b",
			Author: "carol",
			Source: "CSS-Tricks",
		},
	}
}

func TestSavePostsWritesSnapshotAndLatest(t *testing.T) {
	dir := t.TempDir()
	a, err := New(dir)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := a.SavePosts("Stack Overflow", samplePosts()); err != nil {
		t.Fatalf("SavePosts: %v", err)
	}

	sourceDir := filepath.Join(dir, "stack-overflow")
	entries, err := os.ReadDir(sourceDir)
	if err != nil {
		t.Fatalf("source directory missing: %v", err)
	}
	// One timestamped snapshot plus latest.json.
	if len(entries) != 2 {
		t.Errorf("source directory has %d entries, want 2", len(entries))
	}

	got, err := a.LatestPosts("Stack Overflow")
	if err != nil {
		t.Fatalf("LatestPosts: %v", err)
	}
	if len(got) != 2 || got[0].URL != "https://example.com/a" {
		t.Errorf("LatestPosts = %v, want the saved batch", got)
	}
}

func TestLatestPostsMissingSource(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := a.LatestPosts("never-fetched")
	if err != nil {
		t.Fatalf("LatestPosts: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("LatestPosts = %v, want empty for unknown source", got)
	}
}

func TestAppendFilteredAccumulates(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	batch := samplePosts()
	if err := a.AppendFiltered(batch[:1]); err != nil {
		t.Fatalf("AppendFiltered: %v", err)
	}
	if err := a.AppendFiltered(batch[1:]); err != nil {
		t.Fatalf("AppendFiltered: %v", err)
	}

	got, err := a.FilteredPosts()
	if err != nil {
		t.Fatalf("FilteredPosts: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("FilteredPosts has %d entries, want 2 accumulated", len(got))
	}
}

func TestFindPost(t *testing.T) {
	a, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := a.AppendFiltered(samplePosts()); err != nil {
		t.Fatalf("AppendFiltered: %v", err)
	}

	p, ok := a.FindPost("https://example.com/b")
	if !ok {
		t.Fatal("FindPost did not find an archived url")
	}
	if p.Author != "carol" {
		t.Errorf("FindPost returned %+v, want carol's post", p)
	}

	if _, ok := a.FindPost("https://example.com/missing"); ok {
		t.Error("FindPost returned ok for unknown url")
	}
}
