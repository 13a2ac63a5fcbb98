package post

import (
	"strings"
	"time"
)

// Post is the canonical article record shared by the fetch, personalization
// and storage layers. URL is the stable identity key for all history and
// dedup operations.
type Post struct {
	Title              string    `json:"title"`
	Description        string    `json:"description"`
	URL                string    `json:"url"`
	Author             string    `json:"author"`
	PublishedAt        time.Time `json:"published_at"`
	Tags               []string  `json:"tags"`
	ReadingTimeMinutes int       `json:"reading_time_minutes"`
	Source             string    `json:"source"`
	ReactionsCount     int       `json:"public_reactions_count"`
	CommentsCount      int       `json:"comments_count"`
}

// HasPublishDate reports whether the publish time is known. Fetchers leave
// the zero value when the upstream date was missing or unparseable, and the
// scorer then skips age decay instead of penalizing the post.
func (p Post) HasPublishDate() bool {
	return !p.PublishedAt.IsZero()
}

// HasTag reports whether the post carries the given tag (case-insensitive).
func (p Post) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

// NormalizeTags lowercases and trims tags, dropping empties and duplicates.
func NormalizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
