// Package personalize filters fetched posts against the user's history and
// preferences, scores the survivors and keeps the interaction history
// durable. It is the single owner of the history and preferences documents
// in the save directory; callers run one filter cycle at a time.
package personalize

import (
	"fmt"
	"math"
	"os"
	"sort"
	"time"

	"github.com/alaamer12/DevCurator/internal/logger"
	"github.com/alaamer12/DevCurator/internal/metrics"
	"github.com/alaamer12/DevCurator/internal/post"
	"github.com/alaamer12/DevCurator/internal/similarity"
)

const (
	historyFileName     = "post_history.json"
	preferencesFileName = "user_preferences.json"

	// Looser joint threshold: paraphrased duplicates where title and
	// description both agree moderately.
	jointSimilarityThreshold = 0.7
)

// Engine composes dedup, preference filtering, scoring and history
// persistence into the filter pipeline. Not safe for concurrent use; the
// fetch layer may be parallel but hands results over as a single batch.
type Engine struct {
	dir     string
	history *History
	prefs   Preferences
}

// New creates an engine backed by the given save directory, loading any
// existing history and preferences. Missing or corrupt state degrades to
// empty defaults.
func New(saveDir string) (*Engine, error) {
	if err := os.MkdirAll(saveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create save directory: %w", err)
	}

	return &Engine{
		dir:     saveDir,
		history: loadHistory(saveDir),
		prefs:   loadPreferences(saveDir),
	}, nil
}

// FilterPosts runs one fetch-filter cycle over the batch: exact intra-batch
// URL dedup, preference filtering, fuzzy dedup, scoring and a stable sort by
// descending relevance. Admitted posts are recorded as seen and the history
// is persisted before returning, even when nothing was admitted.
func (e *Engine) FilterPosts(posts []post.Post) []post.Post {
	accepted := make([]post.Post, 0, len(posts))
	seenInBatch := make(map[string]struct{}, len(posts))

	for _, p := range posts {
		metrics.Global.IncrementPostsProcessed()

		if p.URL == "" {
			logger.Warn("skipping post without url", "title", p.Title)
			continue
		}
		if _, dup := seenInBatch[p.URL]; dup {
			metrics.Global.IncrementDuplicatesFiltered()
			continue
		}
		if !e.admit(p, accepted) {
			continue
		}

		seenInBatch[p.URL] = struct{}{}
		e.history.Seen[p.URL] = time.Now().UTC().Format(time.RFC3339)
		accepted = append(accepted, p)
		metrics.Global.IncrementPostsAdmitted()
	}

	ranked := e.rank(accepted)

	if err := saveHistory(e.dir, e.history); err != nil {
		logger.Error("failed to persist post history", "error", err)
	}

	return ranked
}

// admit applies the preference rules in order, short-circuiting on the first
// failure.
func (e *Engine) admit(p post.Post, accepted []post.Post) bool {
	if _, dismissed := e.history.Dismissed[p.URL]; dismissed {
		return false
	}
	if p.ReadingTimeMinutes < e.prefs.MinReadingTime || p.ReadingTimeMinutes > e.prefs.MaxReadingTime {
		return false
	}
	if containsString(e.prefs.BlockedAuthors, p.Author) {
		return false
	}
	for _, tag := range e.prefs.BlockedTags {
		if p.HasTag(tag) {
			return false
		}
	}
	if e.isDuplicate(p, accepted) {
		metrics.Global.IncrementDuplicatesFiltered()
		return false
	}
	return true
}

// isDuplicate reports whether the candidate repeats history or a post
// already accepted in this pass. URL match against history is the fast path;
// otherwise candidates are compared pairwise against the accepted batch,
// same-author pairs only. Quadratic in batch size, which is fine at the low
// hundreds of posts a cycle produces.
func (e *Engine) isDuplicate(candidate post.Post, accepted []post.Post) bool {
	if _, seen := e.history.Seen[candidate.URL]; seen {
		return true
	}

	for _, p := range accepted {
		if p.Author != candidate.Author {
			continue
		}

		titleSim := similarity.Ratio(p.Title, candidate.Title)
		if titleSim > e.prefs.SimilarityThreshold {
			return true
		}
		if titleSim > jointSimilarityThreshold &&
			similarity.Ratio(p.Description, candidate.Description) > jointSimilarityThreshold {
			return true
		}
	}
	return false
}

// Score computes the relevance of a post under the current preferences.
// Base 1.0, boosted multiplicatively for favorite authors, matching favorite
// tags and preferred sources, then decayed linearly with age down to a floor
// of 0.5 at 30 days. Posts without a publish date skip the decay.
func (e *Engine) Score(p post.Post) float64 {
	score := 1.0

	if containsString(e.prefs.FavoriteAuthors, p.Author) {
		score *= 1.5
	}

	matching := 0
	for _, tag := range e.prefs.FavoriteTags {
		if p.HasTag(tag) {
			matching++
		}
	}
	if matching > 0 {
		score *= 1 + 0.2*float64(matching)
	}

	if containsString(e.prefs.PreferredSources, p.Source) {
		score *= 1.3
	}

	if p.HasPublishDate() {
		// Floor, not truncate: a future-dated post has a negative day
		// count and earns a small boost rather than clamping at zero.
		ageDays := math.Floor(time.Now().UTC().Sub(p.PublishedAt.UTC()).Hours() / 24)
		factor := 1 - ageDays/30
		if factor < 0.5 {
			factor = 0.5
		}
		score *= factor
	}

	return score
}

// rank returns the batch ordered by descending score, ties keeping batch
// order. If scoring panics the batch comes back in its original order; a
// degraded ordering is better than losing the cycle.
func (e *Engine) rank(accepted []post.Post) (ranked []post.Post) {
	ranked = accepted
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("post scoring failed, keeping original order", "panic", r)
			ranked = accepted
		}
	}()

	scores := make([]float64, len(accepted))
	for i, p := range accepted {
		scores[i] = e.Score(p)
	}

	sorted := make([]post.Post, len(accepted))
	order := make([]int, len(accepted))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	for i, idx := range order {
		sorted[i] = accepted[idx]
	}
	return sorted
}

// Like marks a url as liked, clearing any dismissal. Idempotent.
func (e *Engine) Like(url string) {
	if url == "" {
		return
	}
	e.history.Liked[url] = struct{}{}
	delete(e.history.Dismissed, url)
	e.persistHistory()
}

// Unlike removes a url from the liked set. A no-op for never-liked urls.
func (e *Engine) Unlike(url string) {
	if url == "" {
		return
	}
	delete(e.history.Liked, url)
	e.persistHistory()
}

// Dismiss marks a url as dismissed, clearing any like. Dismissed posts are
// never re-admitted by FilterPosts.
func (e *Engine) Dismiss(url string) {
	if url == "" {
		return
	}
	e.history.Dismissed[url] = struct{}{}
	delete(e.history.Liked, url)
	e.persistHistory()
}

// Undismiss removes a url from the dismissed set.
func (e *Engine) Undismiss(url string) {
	if url == "" {
		return
	}
	delete(e.history.Dismissed, url)
	e.persistHistory()
}

// SaveForLater adds a url to the reading list. Independent of like/dismiss
// state.
func (e *Engine) SaveForLater(url string) {
	if url == "" {
		return
	}
	e.history.ReadLater[url] = struct{}{}
	e.persistHistory()
}

// RemoveFromReadLater drops a url from the reading list.
func (e *Engine) RemoveFromReadLater(url string) {
	if url == "" {
		return
	}
	delete(e.history.ReadLater, url)
	e.persistHistory()
}

// IsLiked reports whether the url is in the liked set.
func (e *Engine) IsLiked(url string) bool {
	_, ok := e.history.Liked[url]
	return ok
}

// IsDismissed reports whether the url is in the dismissed set.
func (e *Engine) IsDismissed(url string) bool {
	_, ok := e.history.Dismissed[url]
	return ok
}

// IsSaved reports whether the url is on the reading list.
func (e *Engine) IsSaved(url string) bool {
	_, ok := e.history.ReadLater[url]
	return ok
}

// LikedURLs returns the liked urls, sorted. History values are urls, not
// post records; the archive is the lookup for full posts.
func (e *Engine) LikedURLs() []string {
	return setToList(e.history.Liked)
}

// ReadingList returns the read-later urls, sorted.
func (e *Engine) ReadingList() []string {
	return setToList(e.history.ReadLater)
}

// SeenCount returns how many urls the engine has ever admitted.
func (e *Engine) SeenCount() int {
	return len(e.history.Seen)
}

// Preferences returns a copy of the current preferences.
func (e *Engine) Preferences() Preferences {
	return e.prefs
}

// UpdatePreferences merges the non-nil fields of the update into the current
// preferences and persists them.
func (e *Engine) UpdatePreferences(u PreferencesUpdate) error {
	e.prefs.apply(u)
	if err := savePreferences(e.dir, e.prefs); err != nil {
		return fmt.Errorf("failed to persist preferences: %w", err)
	}
	return nil
}

func (e *Engine) persistHistory() {
	if err := saveHistory(e.dir, e.history); err != nil {
		logger.Error("failed to persist post history", "error", err)
	}
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
