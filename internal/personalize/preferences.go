package personalize

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/alaamer12/DevCurator/internal/logger"
)

// Preferences holds the user's filtering and scoring rules. Authors and
// sources match exactly; tags match case-insensitively.
type Preferences struct {
	FavoriteTags        []string `json:"favorite_tags"`
	BlockedTags         []string `json:"blocked_tags"`
	FavoriteAuthors     []string `json:"favorite_authors"`
	BlockedAuthors      []string `json:"blocked_authors"`
	PreferredSources    []string `json:"preferred_sources"`
	MinReadingTime      int      `json:"min_reading_time"`
	MaxReadingTime      int      `json:"max_reading_time"`
	SimilarityThreshold float64  `json:"similarity_threshold"`
}

func defaultPreferences() Preferences {
	return Preferences{
		FavoriteTags:        []string{},
		BlockedTags:         []string{},
		FavoriteAuthors:     []string{},
		BlockedAuthors:      []string{},
		PreferredSources:    []string{},
		MinReadingTime:      0,
		MaxReadingTime:      60,
		SimilarityThreshold: 0.85,
	}
}

// PreferencesUpdate is a partial preferences edit: nil fields keep their
// current value.
type PreferencesUpdate struct {
	FavoriteTags        *[]string
	BlockedTags         *[]string
	FavoriteAuthors     *[]string
	BlockedAuthors      *[]string
	PreferredSources    *[]string
	MinReadingTime      *int
	MaxReadingTime      *int
	SimilarityThreshold *float64
}

func (p *Preferences) apply(u PreferencesUpdate) {
	if u.FavoriteTags != nil {
		p.FavoriteTags = *u.FavoriteTags
	}
	if u.BlockedTags != nil {
		p.BlockedTags = *u.BlockedTags
	}
	if u.FavoriteAuthors != nil {
		p.FavoriteAuthors = *u.FavoriteAuthors
	}
	if u.BlockedAuthors != nil {
		p.BlockedAuthors = *u.BlockedAuthors
	}
	if u.PreferredSources != nil {
		p.PreferredSources = *u.PreferredSources
	}
	if u.MinReadingTime != nil {
		p.MinReadingTime = *u.MinReadingTime
	}
	if u.MaxReadingTime != nil {
		p.MaxReadingTime = *u.MaxReadingTime
	}
	if u.SimilarityThreshold != nil {
		p.SimilarityThreshold = *u.SimilarityThreshold
	}
}

// loadPreferences reads the preferences document from dir, falling back to
// defaults when the file is missing or corrupt.
func loadPreferences(dir string) Preferences {
	path := filepath.Join(dir, preferencesFileName)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("could not read preferences, using defaults", "path", path, "error", err)
		}
		return defaultPreferences()
	}
	if len(data) == 0 {
		return defaultPreferences()
	}

	prefs := defaultPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		logger.Warn("preferences file is corrupt, using defaults", "path", path, "error", err)
		return defaultPreferences()
	}
	return prefs
}

func savePreferences(dir string, prefs Preferences) error {
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preferences: %w", err)
	}
	return writeFileAtomic(filepath.Join(dir, preferencesFileName), data)
}
