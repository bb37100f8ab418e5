package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mmcdole/gofeed"

	"trendscribe/internal/models"
)

const (
	trendUserAgent    = "trendscribe-bot/1.0"
	trendFetchTimeout = 15 * time.Second
	redditPostLimit   = 25
)

// TrendSource fetches trend items for a business type from one upstream.
// A source failing is normal operation; the aggregation treats it as an
// empty contribution.
type TrendSource interface {
	Name() string
	Fetch(ctx context.Context, businessType string) ([]models.TrendItem, error)
}

// newSource builds a fetcher from a registry entry. Unknown types yield
// nil and are skipped.
func newSource(cfg models.TrendSourceConfig, limiter *FetchLimiter) TrendSource {
	switch cfg.Type {
	case "reddit":
		return &RedditSource{name: cfg.Name, subreddit: cfg.Subreddit, limiter: limiter}
	case "rss":
		return &RSSSource{name: cfg.Name, url: cfg.URL, parser: gofeed.NewParser(), limiter: limiter}
	default:
		return nil
	}
}

// RedditSource pulls hot posts from a subreddit's public JSON listing.
type RedditSource struct {
	name      string
	subreddit string
	limiter   *FetchLimiter
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				CreatedUTC float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

func (s *RedditSource) Name() string { return s.name }

func (s *RedditSource) Fetch(ctx context.Context, businessType string) ([]models.TrendItem, error) {
	ctx, cancel := context.WithTimeout(ctx, trendFetchTimeout)
	defer cancel()

	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, "www.reddit.com"); err != nil {
			return nil, err
		}
	}

	listURL := fmt.Sprintf("https://www.reddit.com/r/%s/hot.json?limit=%d",
		url.PathEscape(s.subreddit), redditPostLimit)

	req, err := http.NewRequestWithContext(ctx, "GET", listURL, nil)
	if err != nil {
		return nil, err
	}
	// Reddit rejects default Go user agents
	req.Header.Set("User-Agent", trendUserAgent)

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch r/%s: %w", s.subreddit, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("reddit returned status %d: %s", resp.StatusCode, body)
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to parse reddit listing: %w", err)
	}

	items := make([]models.TrendItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		items = append(items, models.TrendItem{
			Title:   child.Data.Title,
			Summary: child.Data.Selftext,
			PubDate: time.Unix(int64(child.Data.CreatedUTC), 0).UTC(),
			Source:  s.name,
		})
	}
	return items, nil
}

// RSSSource pulls items from an RSS/Atom feed.
type RSSSource struct {
	name    string
	url     string
	parser  *gofeed.Parser
	limiter *FetchLimiter
}

func (s *RSSSource) Name() string { return s.name }

func (s *RSSSource) Fetch(ctx context.Context, businessType string) ([]models.TrendItem, error) {
	ctx, cancel := context.WithTimeout(ctx, trendFetchTimeout)
	defer cancel()

	if s.limiter != nil {
		host := s.url
		if parsed, err := url.Parse(s.url); err == nil {
			host = parsed.Host
		}
		if err := s.limiter.Wait(ctx, host); err != nil {
			return nil, err
		}
	}

	feed, err := s.parser.ParseURLWithContext(s.url, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed %s: %w", s.name, err)
	}

	items := make([]models.TrendItem, 0, len(feed.Items))
	for _, item := range feed.Items {
		// Missing dates stay zero and sort as oldest
		var pub time.Time
		if item.PublishedParsed != nil {
			pub = *item.PublishedParsed
		} else if item.UpdatedParsed != nil {
			pub = *item.UpdatedParsed
		}

		items = append(items, models.TrendItem{
			Title:   item.Title,
			Summary: item.Description,
			PubDate: pub,
			Source:  s.name,
		})
	}
	return items, nil
}
