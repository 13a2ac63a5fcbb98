package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alaamer12/DevCurator/internal/retry"
)

func testOptions() Options {
	return Options{
		MaxPosts: 10,
		Timeout:  5 * time.Second,
		Retry:    retry.Config{MaxAttempts: 1, Delay: time.Millisecond},
	}
}

func TestDevtoSourceFetch(t *testing.T) {
	payload := `[
		{
			"title": "Intro to Go",
			"description": "Getting started with Go.",
			"url": "https://dev.to/alice/intro-to-go",
			"published_at": "2026-08-20T10:00:00Z",
			"tag_list": ["Go", "beginners", "go"],
			"reading_time_minutes": 7,
			"public_reactions_count": 42,
			"comments_count": 5,
			"user": {"username": "alice", "name": "Alice"}
		},
		{
			"title": "No identity",
			"description": "Post without a url is dropped.",
			"url": "",
			"user": {"username": "bob", "name": "Bob"}
		}
	]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("tag"); got != "go" {
			t.Errorf("tag param = %q, want go", got)
		}
		if got := r.URL.Query().Get("per_page"); got != "10" {
			t.Errorf("per_page param = %q, want 10", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	src := NewDevtoSource("go", testOptions())
	src.baseURL = srv.URL

	posts, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1 (url-less entry dropped)", len(posts))
	}

	p := posts[0]
	if p.Author != "alice" {
		t.Errorf("Author = %q, want alice", p.Author)
	}
	if p.Source != "Dev.to" {
		t.Errorf("Source = %q, want Dev.to", p.Source)
	}
	if len(p.Tags) != 2 {
		t.Errorf("Tags = %v, want lowercased and deduplicated to 2 entries", p.Tags)
	}
	if p.ReadingTimeMinutes != 7 {
		t.Errorf("ReadingTimeMinutes = %d, want 7", p.ReadingTimeMinutes)
	}
	if !p.HasPublishDate() {
		t.Error("publish date not parsed")
	}
	if p.ReactionsCount != 42 || p.CommentsCount != 5 {
		t.Errorf("counts = %d/%d, want 42/5", p.ReactionsCount, p.CommentsCount)
	}
}

func TestDevtoSourceFetchBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := NewDevtoSource("go", testOptions())
	src.baseURL = srv.URL

	if _, err := src.Fetch(context.Background()); err == nil {
		t.Error("expected error for 500 response")
	}
}

func TestDevtoSourceFetchMalformedDateLeavesZeroTime(t *testing.T) {
	payload := `[{
		"title": "Bad date",
		"url": "https://dev.to/alice/bad-date",
		"published_at": "not a date",
		"user": {"username": "alice"}
	}]`

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(payload))
	}))
	defer srv.Close()

	src := NewDevtoSource("go", testOptions())
	src.baseURL = srv.URL

	posts, err := src.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].HasPublishDate() {
		t.Error("malformed date should leave the zero publish time")
	}
}
