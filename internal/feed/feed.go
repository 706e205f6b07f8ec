// Package feed retrieves new items from Reddit, either through the JSON
// listing API or through the RSS/Atom endpoints.
package feed

import (
	"context"
	"net/http"

	"redwatch/internal/model"
)

// Source fetches a bounded page of the newest items for one channel.
// A channel is a subreddit name; the "all" channel maps to r/all.
type Source interface {
	Fetch(ctx context.Context, channel string) ([]model.Item, error)
}

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

const baseURL = "https://www.reddit.com"

// maxBodySize caps how much of a feed response is read.
const maxBodySize = 5 * 1024 * 1024
