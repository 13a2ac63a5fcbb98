package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/araddon/dateparse"

	"github.com/alaamer12/DevCurator/internal/post"
	"github.com/alaamer12/DevCurator/internal/retry"
)

const devtoArticlesURL = "https://dev.to/api/articles"

// DevtoSource fetches articles from the dev.to REST API for a single tag.
type DevtoSource struct {
	tag     string
	opts    Options
	baseURL string
	client  *http.Client
}

func NewDevtoSource(tag string, opts Options) *DevtoSource {
	return &DevtoSource{
		tag:     tag,
		opts:    opts,
		baseURL: devtoArticlesURL,
		client: &http.Client{
			Timeout: opts.Timeout,
		},
	}
}

func (s *DevtoSource) Name() string {
	return "Dev.to"
}

// devtoArticle is the subset of the dev.to article payload we consume.
type devtoArticle struct {
	Title                string   `json:"title"`
	Description          string   `json:"description"`
	URL                  string   `json:"url"`
	PublishedAt          string   `json:"published_at"`
	TagList              []string `json:"tag_list"`
	ReadingTimeMinutes   int      `json:"reading_time_minutes"`
	PublicReactionsCount int      `json:"public_reactions_count"`
	CommentsCount        int      `json:"comments_count"`
	User                 struct {
		Username string `json:"username"`
		Name     string `json:"name"`
	} `json:"user"`
}

func (s *DevtoSource) Fetch(ctx context.Context) ([]post.Post, error) {
	if s.opts.Budget != nil && !s.opts.Budget.Allow(s.Name()) {
		return nil, fmt.Errorf("daily request budget exhausted")
	}
	if s.opts.Limiter != nil {
		if err := s.opts.Limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	params := url.Values{}
	params.Set("per_page", strconv.Itoa(s.opts.MaxPosts))
	params.Set("tag", s.tag)
	reqURL := s.baseURL + "?" + params.Encode()

	var articles []devtoArticle
	err := retry.Do(ctx, s.opts.Retry, func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return err
		}
		req.Header.Set("Accept", "application/json")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("unexpected status %d", resp.StatusCode)
		}

		articles = articles[:0]
		if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if s.opts.Budget != nil {
		s.opts.Budget.Record(s.Name())
	}

	posts := make([]post.Post, 0, len(articles))
	for _, a := range articles {
		if a.URL == "" {
			continue
		}

		p := post.Post{
			Title:              a.Title,
			Description:        a.Description,
			URL:                a.URL,
			Author:             a.User.Username,
			Tags:               post.NormalizeTags(a.TagList),
			ReadingTimeMinutes: a.ReadingTimeMinutes,
			Source:             s.Name(),
			ReactionsCount:     a.PublicReactionsCount,
			CommentsCount:      a.CommentsCount,
		}
		// Zero time stays when the date is absent or malformed; the scorer
		// then skips age decay.
		if a.PublishedAt != "" {
			if ts, err := dateparse.ParseAny(a.PublishedAt); err == nil {
				p.PublishedAt = ts.UTC()
			}
		}
		posts = append(posts, p)
	}
	return posts, nil
}
