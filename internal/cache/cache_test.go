package cache

import (
	"testing"
	"time"

	"github.com/alaamer12/DevCurator/internal/post"
)

func TestSetGet(t *testing.T) {
	c := New()
	posts := []post.Post{{Title: "Intro to Go", URL: "https://example.com/a"}}

	c.Set("Dev.to", posts, time.Minute)

	got, ok := c.Get("Dev.to")
	if !ok {
		t.Fatal("expected cache hit")
	}
	if len(got) != 1 || got[0].URL != "https://example.com/a" {
		t.Errorf("Get = %v, want cached batch", got)
	}
}

func TestGetMiss(t *testing.T) {
	c := New()
	if _, ok := c.Get("never-set"); ok {
		t.Error("expected cache miss for unknown key")
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New()
	c.Set("Dev.to", []post.Post{{URL: "https://example.com/a"}}, time.Nanosecond)

	time.Sleep(5 * time.Millisecond)

	if _, ok := c.Get("Dev.to"); ok {
		t.Error("expected miss for expired entry")
	}
}

func TestZeroTTLDisablesCaching(t *testing.T) {
	c := New()
	c.Set("Dev.to", []post.Post{{URL: "https://example.com/a"}}, 0)

	if _, ok := c.Get("Dev.to"); ok {
		t.Error("zero TTL should not cache")
	}
}
