package fetch

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"github.com/alaamer12/DevCurator/internal/post"
	"github.com/alaamer12/DevCurator/internal/retry"
)

var (
	readTimePattern = regexp.MustCompile(`(?i)(\d+)\s*min(ute)?s?\s*read`)
	wordPattern     = regexp.MustCompile(`\w+`)
)

// FeedSource fetches posts from one RSS/Atom feed.
type FeedSource struct {
	name   string
	url    string
	opts   Options
	parser *gofeed.Parser
}

func NewFeedSource(name, url string, opts Options) *FeedSource {
	return &FeedSource{
		name:   name,
		url:    url,
		opts:   opts,
		parser: gofeed.NewParser(),
	}
}

func (s *FeedSource) Name() string {
	return s.name
}

func (s *FeedSource) Fetch(ctx context.Context) ([]post.Post, error) {
	if s.opts.Budget != nil && !s.opts.Budget.Allow(s.name) {
		return nil, fmt.Errorf("daily request budget exhausted")
	}
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var feed *gofeed.Feed
	err := retry.Do(ctx, s.opts.Retry, func() error {
		fetchCtx := ctx
		if s.opts.Timeout > 0 {
			var cancel context.CancelFunc
			fetchCtx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
			defer cancel()
		}

		var parseErr error
		feed, parseErr = s.parser.ParseURLWithContext(s.url, fetchCtx)
		if parseErr != nil {
			return fmt.Errorf("failed to parse feed: %w", parseErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.opts.Budget != nil {
		s.opts.Budget.Record(s.name)
	}

	items := feed.Items
	if s.opts.MaxPosts > 0 && len(items) > s.opts.MaxPosts {
		items = items[:s.opts.MaxPosts]
	}

	posts := make([]post.Post, 0, len(items))
	for _, item := range items {
		if item.Link == "" {
			continue
		}
		posts = append(posts, s.normalizeItem(item))
	}
	return posts, nil
}

// normalizeItem maps a feed entry onto the canonical post shape.
func (s *FeedSource) normalizeItem(item *gofeed.Item) post.Post {
	content := item.Content
	if content == "" {
		content = item.Description
	}
	content = stripHTML(content)

	p := post.Post{
		Title:              item.Title,
		Description:        stripHTML(item.Description),
		URL:                item.Link,
		Author:             itemAuthor(item),
		Tags:               post.NormalizeTags(item.Categories),
		ReadingTimeMinutes: estimateReadingTime(content),
		Source:             s.name,
	}

	if item.PublishedParsed != nil {
		p.PublishedAt = item.PublishedParsed.UTC()
	} else if item.Published != "" {
		if ts, err := dateparse.ParseAny(item.Published); err == nil {
			p.PublishedAt = ts.UTC()
		}
	}

	return p
}

func itemAuthor(item *gofeed.Item) string {
	for _, a := range item.Authors {
		if a != nil && a.Name != "" {
			return a.Name
		}
	}
	if item.Author != nil && item.Author.Name != "" {
		return item.Author.Name
	}
	return "Unknown"
}

// estimateReadingTime prefers an explicit "N min read" marker in the content
// and otherwise estimates from word count at 200 words per minute.
func estimateReadingTime(content string) int {
	if m := readTimePattern.FindStringSubmatch(content); m != nil {
		if minutes, err := strconv.Atoi(m[1]); err == nil && minutes > 0 {
			return minutes
		}
	}

	words := len(wordPattern.FindAllString(content, -1))
	minutes := (words + 100) / 200 // round to nearest
	if minutes < 1 {
		minutes = 1
	}
	return minutes
}

// stripHTML reduces feed HTML to plain text with collapsed whitespace.
func stripHTML(html string) string {
	if html == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(html)
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
