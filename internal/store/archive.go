// Package store archives fetched and filtered posts as JSON documents the
// display layer reads back. The personalization history lives elsewhere;
// this is the lookup for full post records.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/alaamer12/DevCurator/internal/post"
)

const filteredFileName = "filtered_posts.json"

// Archive persists post batches under a save directory: one subdirectory per
// source with timestamped snapshots plus latest.json, and a cumulative
// filtered_posts.json.
type Archive struct {
	dir string
}

func New(dir string) (*Archive, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}
	return &Archive{dir: dir}, nil
}

// SavePosts writes a timestamped snapshot for the source and refreshes its
// latest.json.
func (a *Archive) SavePosts(source string, posts []post.Post) error {
	if len(posts) == 0 {
		return nil
	}

	sourceDir := filepath.Join(a.dir, slugify(source))
	if err := os.MkdirAll(sourceDir, 0755); err != nil {
		return fmt.Errorf("failed to create source directory: %w", err)
	}

	data, err := json.MarshalIndent(posts, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal posts: %w", err)
	}

	stamp := time.Now().UTC().Format("20060102_150405")
	snapshot := filepath.Join(sourceDir, fmt.Sprintf("posts_%s.json", stamp))
	if err := os.WriteFile(snapshot, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}

	latest := filepath.Join(sourceDir, "latest.json")
	if err := os.WriteFile(latest, data, 0644); err != nil {
		return fmt.Errorf("failed to write latest.json: %w", err)
	}
	return nil
}

// LatestPosts reads the most recent snapshot for the source. A missing file
// yields an empty slice.
func (a *Archive) LatestPosts(source string) ([]post.Post, error) {
	return readPosts(filepath.Join(a.dir, slugify(source), "latest.json"))
}

// AppendFiltered adds the batch to the cumulative filtered document.
func (a *Archive) AppendFiltered(posts []post.Post) error {
	if len(posts) == 0 {
		return nil
	}

	existing, err := a.FilteredPosts()
	if err != nil {
		return err
	}

	combined := append(existing, posts...)
	data, err := json.MarshalIndent(combined, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal filtered posts: %w", err)
	}
	if err := os.WriteFile(filepath.Join(a.dir, filteredFileName), data, 0644); err != nil {
		return fmt.Errorf("failed to write filtered posts: %w", err)
	}
	return nil
}

// FilteredPosts reads the cumulative filtered document.
func (a *Archive) FilteredPosts() ([]post.Post, error) {
	return readPosts(filepath.Join(a.dir, filteredFileName))
}

// FindPost looks up the full record for a url among the filtered posts.
// History keeps urls only; this resolves them back to posts.
func (a *Archive) FindPost(url string) (post.Post, bool) {
	posts, err := a.FilteredPosts()
	if err != nil {
		return post.Post{}, false
	}
	for _, p := range posts {
		if p.URL == url {
			return p, true
		}
	}
	return post.Post{}, false
}

func readPosts(path string) ([]post.Post, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var posts []post.Post
	if err := json.Unmarshal(data, &posts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}
	return posts, nil
}

func slugify(source string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(source), " ", "-"))
}
