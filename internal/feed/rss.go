package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"redwatch/internal/model"
)

// RSSSource fetches new posts for a subreddit via the Atom endpoint.
// It serves deployments where the JSON listing API is unavailable; post
// scores are not present in the feed and are reported as zero.
type RSSSource struct {
	client    HTTPClient
	userAgent string
}

// NewRSSSource creates an RSSSource with the given HTTP client.
func NewRSSSource(client HTTPClient, userAgent string) *RSSSource {
	return &RSSSource{
		client:    client,
		userAgent: userAgent,
	}
}

// Fetch downloads and parses the subreddit's Atom feed.
func (s *RSSSource) Fetch(ctx context.Context, channel string) ([]model.Item, error) {
	url := fmt.Sprintf("%s/r/%s/new.rss", baseURL, channel)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.userAgent)

	resp, err := s.client.Do(req)
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

	parsed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := make([]model.Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		items = append(items, model.Item{
			ID:        itemID(entry),
			Title:     entry.Title,
			Body:      entry.Content,
			Channel:   itemChannel(entry, channel),
			Source:    entry.Link,
			Author:    itemAuthor(entry),
			CreatedAt: itemPublished(entry),
		})
	}
	return items, nil
}

// itemID returns the post id for a feed entry. Reddit Atom entry ids carry
// a thing prefix ("t3_abc123") that the JSON listing omits, so it is
// stripped to keep the dedup key identical across both sources.
func itemID(entry *gofeed.Item) string {
	id := entry.GUID
	if i := strings.IndexByte(id, '_'); i >= 0 {
		id = id[i+1:]
	}
	return id
}

// itemChannel resolves the entry's subreddit from its category, falling
// back to the requested channel. The aggregate r/all feed carries entries
// from many subreddits.
func itemChannel(entry *gofeed.Item, requested string) string {
	if len(entry.Categories) > 0 && entry.Categories[0] != "" {
		return entry.Categories[0]
	}
	return requested
}

func itemAuthor(entry *gofeed.Item) string {
	if entry.Author == nil {
		return ""
	}
	return strings.TrimPrefix(entry.Author.Name, "/u/")
}

func itemPublished(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	return time.Time{}
}
