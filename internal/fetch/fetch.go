// Package fetch retrieves posts from the configured sources (the dev.to API
// and a set of RSS feeds) and normalizes them into the canonical post shape.
package fetch

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"

	"github.com/alaamer12/DevCurator/internal/cache"
	"github.com/alaamer12/DevCurator/internal/logger"
	"github.com/alaamer12/DevCurator/internal/metrics"
	"github.com/alaamer12/DevCurator/internal/post"
	"github.com/alaamer12/DevCurator/internal/ratelimit"
	"github.com/alaamer12/DevCurator/internal/retry"
)

// SourcesConfig is the YAML source list structure:
//
//	devto:
//	  tags: [go, webdev]
//	feeds:
//	  - name: freeCodeCamp
//	    url: https://www.freecodecamp.org/news/rss/
type SourcesConfig struct {
	Devto struct {
		Tags []string `yaml:"tags"`
	} `yaml:"devto"`
	Feeds []FeedConfig `yaml:"feeds"`
}

type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// LoadSources reads the source list from a YAML file.
func LoadSources(path string) (*SourcesConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg SourcesConfig
	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse sources config: %w", err)
	}
	return &cfg, nil
}

// Source produces canonical posts from one upstream.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]post.Post, error)
}

// Options carries the shared fetch policy: post cap, timeouts, retry,
// request pacing and the daily budget.
type Options struct {
	MaxPosts int
	Timeout  time.Duration
	Retry    retry.Config
	Limiter  *rate.Limiter
	Budget   *ratelimit.SourceBudget
}

// BuildSources turns the config into fetchable sources. Dev.to only accepts
// one tag per query, so the first configured tag is used.
func BuildSources(cfg *SourcesConfig, opts Options) []Source {
	var sources []Source

	if len(cfg.Devto.Tags) > 0 {
		sources = append(sources, NewDevtoSource(cfg.Devto.Tags[0], opts))
	}
	for _, feed := range cfg.Feeds {
		sources = append(sources, NewFeedSource(feed.Name, feed.URL, opts))
	}
	return sources
}

// All fetches every source concurrently and returns the combined batch.
// Per-source failures are logged and skipped; a cycle never fails because
// one upstream is down. Results land in the feed cache so runs inside the
// TTL window reuse them.
func All(ctx context.Context, sources []Source, concurrency int, feedCache *cache.FeedCache, ttl time.Duration) []post.Post {
	var (
		mu  sync.Mutex
		all []post.Post
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for _, src := range sources {
		src := src
		g.Go(func() error {
			if cached, ok := feedCache.Get(src.Name()); ok {
				logger.Debug("using cached posts", "source", src.Name(), "count", len(cached))
				mu.Lock()
				all = append(all, cached...)
				mu.Unlock()
				return nil
			}

			posts, err := src.Fetch(ctx)
			if err != nil {
				logger.Error("failed to fetch source", "source", src.Name(), "error", err)
				metrics.Global.IncrementFetchErrors()
				return nil
			}

			logger.Info("fetched posts", "source", src.Name(), "count", len(posts))
			metrics.Global.AddPostsFetched(len(posts))
			feedCache.Set(src.Name(), posts, ttl)

			mu.Lock()
			all = append(all, posts...)
			mu.Unlock()
			return nil
		})
	}

	// Fetch errors are swallowed per source, so this only reflects context
	// cancellation.
	if err := g.Wait(); err != nil {
		logger.Warn("fetch canceled", "error", err)
	}

	return all
}
