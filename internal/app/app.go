// Package app wires the fetch, personalization and storage layers into the
// fetch-filter cycle.
package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"golang.org/x/time/rate"

	"github.com/alaamer12/DevCurator/internal/cache"
	"github.com/alaamer12/DevCurator/internal/config"
	"github.com/alaamer12/DevCurator/internal/fetch"
	"github.com/alaamer12/DevCurator/internal/logger"
	"github.com/alaamer12/DevCurator/internal/metrics"
	"github.com/alaamer12/DevCurator/internal/personalize"
	"github.com/alaamer12/DevCurator/internal/post"
	"github.com/alaamer12/DevCurator/internal/ratelimit"
	"github.com/alaamer12/DevCurator/internal/retry"
	"github.com/alaamer12/DevCurator/internal/store"
)

// App holds the long-lived pieces of the pipeline. The feed cache and the
// request budget survive across scheduled cycles.
type App struct {
	cfg       *config.Config
	sources   []fetch.Source
	feedCache *cache.FeedCache
	budget    *ratelimit.SourceBudget
	engine    *personalize.Engine
	archive   *store.Archive
}

func New(cfg *config.Config) (*App, error) {
	sourcesCfg, err := fetch.LoadSources(cfg.SourcesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources config: %w", err)
	}

	budget := ratelimit.NewSourceBudget(cfg.DailyFetchBudget, 0)
	opts := fetch.Options{
		MaxPosts: cfg.MaxPostsPerSource,
		Timeout:  cfg.RequestTimeout,
		Retry: retry.Config{
			MaxAttempts: cfg.RetryAttempts,
			Delay:       cfg.RetryDelay,
			Backoff:     true,
		},
		// One upstream request every half second across all sources.
		Limiter: rate.NewLimiter(rate.Every(500*time.Millisecond), 3),
		Budget:  budget,
	}

	sources := fetch.BuildSources(sourcesCfg, opts)
	if len(sources) == 0 {
		return nil, fmt.Errorf("no sources configured in %s", cfg.SourcesConfigPath)
	}

	engine, err := personalize.New(cfg.SaveDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create personalization engine: %w", err)
	}

	archive, err := store.New(cfg.SaveDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}

	return &App{
		cfg:       cfg,
		sources:   sources,
		feedCache: cache.New(),
		budget:    budget,
		engine:    engine,
		archive:   archive,
	}, nil
}

// Engine exposes the personalization engine for interaction marking and
// membership queries by an embedding UI.
func (a *App) Engine() *personalize.Engine {
	return a.engine
}

// Archive exposes the post archive for display-layer reads.
func (a *App) Archive() *store.Archive {
	return a.archive
}

// RunCycle performs one fetch-filter cycle: fetch all sources, archive the
// raw batches, run the batch through the personalization engine and archive
// the admitted posts. Fetch failures degrade to fewer posts, never an error.
func (a *App) RunCycle(ctx context.Context) error {
	startTime := time.Now()
	defer func() {
		metrics.Global.RecordCycleTime(time.Since(startTime))
		metrics.Global.SetLastRun()
	}()

	logger.Info("starting fetch cycle", "sources", len(a.sources))

	allPosts := fetch.All(ctx, a.sources, a.cfg.FetchConcurrency, a.feedCache, a.cfg.FeedCacheTTL)
	logger.Info("fetched posts", "total", len(allPosts))

	counts, total := a.budget.Stats()
	metrics.Global.SetSourceRequests(counts, total)

	for source, posts := range groupBySource(allPosts) {
		if err := a.archive.SavePosts(source, posts); err != nil {
			logger.Error("failed to archive source posts", "source", source, "error", err)
		}
	}

	filtered := a.engine.FilterPosts(allPosts)
	logger.Info("filtered posts", "admitted", len(filtered), "seen_total", a.engine.SeenCount())

	if err := a.archive.AppendFiltered(filtered); err != nil {
		logger.Error("failed to archive filtered posts", "error", err)
	}

	printSummary(filtered)
	return ctx.Err()
}

func groupBySource(posts []post.Post) map[string][]post.Post {
	grouped := make(map[string][]post.Post)
	for _, p := range posts {
		grouped[p.Source] = append(grouped[p.Source], p)
	}
	return grouped
}

// printSummary writes a short table of the top admitted posts to stdout.
func printSummary(posts []post.Post) {
	if len(posts) == 0 {
		fmt.Println("No new posts after filtering.")
		return
	}

	fmt.Printf("Admitted %d posts:\n", len(posts))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "TITLE\tAUTHOR\tSOURCE\tREAD")
	limit := 10
	if len(posts) < limit {
		limit = len(posts)
	}
	for _, p := range posts[:limit] {
		title := p.Title
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d min\n", title, p.Author, p.Source, p.ReadingTimeMinutes)
	}
	w.Flush()
}
