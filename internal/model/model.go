// Package model defines the domain types used across the application.
package model

import (
	"strings"
	"time"
)

// Rule represents a user's watch request: notify the contact when an item
// containing one of the keywords appears, optionally restricted to channels.
type Rule struct {
	ID        string
	Keywords  []string
	Channels  []string
	Contact   string
	Active    bool
	CreatedAt time.Time
}

// WatchesChannel reports whether the rule applies to items from the given
// channel. An empty channel list means the rule watches all channels.
func (r Rule) WatchesChannel(channel string) bool {
	if len(r.Channels) == 0 {
		return true
	}
	for _, c := range r.Channels {
		if strings.EqualFold(c, channel) {
			return true
		}
	}
	return false
}

// Item is one unit of content observed from the feed.
type Item struct {
	ID        string
	Title     string
	Body      string
	Channel   string
	Source    string
	Author    string
	Score     int
	CreatedAt time.Time
}

// Match records that one rule matched one item on one keyword.
// Matches are append-only; once recorded they are never mutated.
type Match struct {
	ID        int64
	RuleID    string
	Keyword   string
	Contact   string
	Item      Item
	CreatedAt time.Time
}

// ScanResult is the outcome of one scan cycle.
type ScanResult struct {
	NewMatches int
	Matches    []Match
}
