package feed

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"redwatch/internal/model"
)

func TestRSSSourceFetch(t *testing.T) {
	body := loadFixture(t, "../../testdata/sample.atom")
	transport := &mockTransport{body: body, statusCode: 200}

	s := NewRSSSource(transport, "redwatch-test/1.0")
	items, err := s.Fetch(context.Background(), "devops")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}

	want := []model.Item{
		{
			ID:        "1abc123",
			Title:     "Kubernetes 1.32 Released",
			Body:      "Sidecar containers are now stable.",
			Channel:   "devops",
			Source:    "https://www.reddit.com/r/devops/comments/1abc123/kubernetes_132_released/",
			Author:    "clusteradmin",
			CreatedAt: time.Date(2025, 8, 29, 21, 20, 0, 0, time.UTC),
		},
		{
			ID:        "1abc127",
			Title:     "Cutting CI costs with spot instances",
			Body:      "We moved our CI to spot instances.",
			Channel:   "devops",
			Source:    "https://www.reddit.com/r/devops/comments/1abc127/ci_spot_instances/",
			Author:    "founder42",
			CreatedAt: time.Date(2025, 8, 29, 21, 21, 0, 0, time.UTC),
		},
	}
	if diff := cmp.Diff(want, items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}

	wantURL := "https://www.reddit.com/r/devops/new.rss"
	if diff := cmp.Diff(wantURL, transport.lastURL); diff != "" {
		t.Errorf("request URL mismatch (-want +got):\n%s", diff)
	}
}

func TestRSSSourceErrors(t *testing.T) {
	tests := []struct {
		name      string
		transport *mockTransport
	}{
		{name: "http error status", transport: &mockTransport{body: "gone", statusCode: 404}},
		{name: "network error", transport: &mockTransport{err: io.ErrUnexpectedEOF}},
		{name: "invalid xml", transport: &mockTransport{body: "not xml at all", statusCode: 200}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewRSSSource(tt.transport, "redwatch-test/1.0")
			if _, err := s.Fetch(context.Background(), "devops"); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}
