package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"redwatch/internal/model"
)

// RedditClient fetches new posts for a subreddit via the JSON listing API.
type RedditClient struct {
	client    HTTPClient
	limit     int
	userAgent string
}

// NewRedditClient creates a RedditClient with the given HTTP client. The
// limit bounds the page size per fetch (Reddit caps listings at 100).
func NewRedditClient(client HTTPClient, limit int, userAgent string) *RedditClient {
	return &RedditClient{
		client:    client,
		limit:     limit,
		userAgent: userAgent,
	}
}

// listing mirrors the subset of Reddit's listing payload the engine needs.
type listing struct {
	Data struct {
		Children []struct {
			Data struct {
				ID         string  `json:"id"`
				Title      string  `json:"title"`
				Selftext   string  `json:"selftext"`
				Permalink  string  `json:"permalink"`
				Subreddit  string  `json:"subreddit"`
				Author     string  `json:"author"`
				CreatedUTC float64 `json:"created_utc"`
				Score      int     `json:"score"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// Fetch downloads the newest posts of a subreddit and maps them to items.
func (c *RedditClient) Fetch(ctx context.Context, channel string) ([]model.Item, error) {
	url := fmt.Sprintf("%s/r/%s/new.json?limit=%d", baseURL, channel, c.limit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	var page listing
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("parse listing: %w", err)
	}

	items := make([]model.Item, 0, len(page.Data.Children))
	for _, child := range page.Data.Children {
		post := child.Data
		items = append(items, model.Item{
			ID:        post.ID,
			Title:     post.Title,
			Body:      post.Selftext,
			Channel:   post.Subreddit,
			Source:    baseURL + post.Permalink,
			Author:    post.Author,
			Score:     post.Score,
			CreatedAt: time.Unix(int64(post.CreatedUTC), 0).UTC(),
		})
	}
	return items, nil
}
