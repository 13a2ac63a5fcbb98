package fetch

import (
	"strings"
	"testing"

	"github.com/mmcdole/gofeed"
)

func TestEstimateReadingTimeFromMarker(t *testing.T) {
	cases := []struct {
		content string
		want    int
	}{
		{"An article. 8 min read. More text.", 8},
		{"Takes about 12 minutes read in total", 12},
		{"3min read", 3},
	}

	for _, tc := range cases {
		if got := estimateReadingTime(tc.content); got != tc.want {
			t.Errorf("estimateReadingTime(%q) = %d, want %d", tc.content, got, tc.want)
		}
	}
}

func TestEstimateReadingTimeFromWordCount(t *testing.T) {
	// 400 words at 200 wpm is 2 minutes.
	content := strings.Repeat("word ", 400)
	if got := estimateReadingTime(content); got != 2 {
		t.Errorf("estimateReadingTime = %d, want 2", got)
	}

	// Short content never drops below one minute.
	if got := estimateReadingTime("just a few words"); got != 1 {
		t.Errorf("estimateReadingTime = %d, want minimum 1", got)
	}
}

func TestStripHTML(t *testing.T) {
	in := "<p>Hello <b>world</b></p>\n<p>Second   paragraph</p>"
	if got, want := stripHTML(in), "Hello world Second paragraph"; got != want {
		t.Errorf("stripHTML = %q, want %q", got, want)
	}

	if got := stripHTML(""); got != "" {
		t.Errorf("stripHTML of empty input = %q, want empty", got)
	}
}

func TestItemAuthorFallsBackToUnknown(t *testing.T) {
	if got := itemAuthor(&gofeed.Item{}); got != "Unknown" {
		t.Errorf("itemAuthor = %q, want Unknown", got)
	}

	item := &gofeed.Item{Author: &gofeed.Person{Name: "Carol"}}
	if got := itemAuthor(item); got != "Carol" {
		t.Errorf("itemAuthor = %q, want Carol", got)
	}
}

func TestFeedSourceNormalizeItem(t *testing.T) {
	src := NewFeedSource("freeCodeCamp", "https://example.com/rss", testOptions())

	item := &gofeed.Item{
		Title:       "Learn CSS Grid",
		Description: "<p>A guide to <em>grid</em> layout.</p>",
		Link:        "https://example.com/css-grid",
		Categories:  []string{"CSS", "WebDev", "css"},
		Author:      &gofeed.Person{Name: "Carol"},
	}

	p := src.normalizeItem(item)
	if p.Description != "A guide to grid layout." {
		t.Errorf("Description = %q, want HTML stripped", p.Description)
	}
	if p.Source != "freeCodeCamp" {
		t.Errorf("Source = %q, want freeCodeCamp", p.Source)
	}
	if len(p.Tags) != 2 {
		t.Errorf("Tags = %v, want 2 normalized entries", p.Tags)
	}
	if p.ReadingTimeMinutes < 1 {
		t.Errorf("ReadingTimeMinutes = %d, want ≥ 1", p.ReadingTimeMinutes)
	}
	if p.HasPublishDate() {
		t.Error("publish date should be zero when the feed has none")
	}
}
