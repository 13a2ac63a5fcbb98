package personalize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/alaamer12/DevCurator/internal/logger"
)

// History is the durable record of past interactions, keyed by post URL.
// Seen maps url to the RFC3339 UTC timestamp of first sighting and only ever
// grows; the three sets hold the user's explicit actions. A url is never in
// Liked and Dismissed at the same time.
type History struct {
	Seen      map[string]string
	Liked     map[string]struct{}
	Dismissed map[string]struct{}
	ReadLater map[string]struct{}
}

func newHistory() *History {
	return &History{
		Seen:      make(map[string]string),
		Liked:     make(map[string]struct{}),
		Dismissed: make(map[string]struct{}),
		ReadLater: make(map[string]struct{}),
	}
}

// historyFile is the on-disk shape: the sets are serialized as sorted lists
// and collapsed back into sets on read, so duplicates introduced by earlier
// buggy writes disappear on the next load.
type historyFile struct {
	SeenPosts      map[string]string `json:"seen_posts"`
	LikedPosts     []string          `json:"liked_posts"`
	DismissedPosts []string          `json:"dismissed_posts"`
	ReadLater      []string          `json:"read_later"`
}

// loadHistory reads the history document from dir. It is total: a missing or
// corrupt file degrades to an empty history with a logged warning, never an
// error.
func loadHistory(dir string) *History {
	path := filepath.Join(dir, historyFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read post history, starting empty", "path", path, "error", err)
		}
		return newHistory()
	}
	if len(data) == 0 {
		return newHistory()
	}

	var file historyFile
	if err := json.Unmarshal(data, &file); err != nil {
		logger.Warn("post history is corrupt, starting empty", "path", path, "error", err)
		return newHistory()
	}

	h := newHistory()
	for url, ts := range file.SeenPosts {
		h.Seen[url] = ts
	}
	for _, url := range file.LikedPosts {
		h.Liked[url] = struct{}{}
	}
	for _, url := range file.DismissedPosts {
		h.Dismissed[url] = struct{}{}
	}
	for _, url := range file.ReadLater {
		h.ReadLater[url] = struct{}{}
	}
	return h
}

// saveHistory rewrites the whole history document. The write goes through a
// temp file and rename so an interrupted run cannot truncate the store.
func saveHistory(dir string, h *History) error {
	file := historyFile{
		SeenPosts:      h.Seen,
		LikedPosts:     setToList(h.Liked),
		DismissedPosts: setToList(h.Dismissed),
		ReadLater:      setToList(h.ReadLater),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal post history: %w", err)
	}

	return writeFileAtomic(filepath.Join(dir, historyFileName), data)
}

func setToList(set map[string]struct{}) []string {
	list := make([]string, 0, len(set))
	for url := range set {
		list = append(list, url)
	}
	sort.Strings(list)
	return list
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
