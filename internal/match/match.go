// Package match implements the rule evaluation engine.
package match

import (
	"sort"
	"strings"

	"redwatch/internal/model"
)

// ChannelAll is the sentinel channel polled for rules that watch all
// channels. It maps to Reddit's r/all aggregate listing.
const ChannelAll = "all"

// Channels returns the distinct set of channel names that must be polled to
// cover the given rules. A rule with no channel restriction contributes
// ChannelAll. The result is sorted so logs and tests are reproducible.
// Inactive rules contribute nothing; an empty rule set yields an empty
// result, which callers must treat as "nothing to fetch".
func Channels(rules []model.Rule) []string {
	set := make(map[string]struct{})
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if len(r.Channels) == 0 {
			set[ChannelAll] = struct{}{}
			continue
		}
		for _, c := range r.Channels {
			set[strings.ToLower(c)] = struct{}{}
		}
	}

	channels := make([]string, 0, len(set))
	for c := range set {
		channels = append(channels, c)
	}
	sort.Strings(channels)
	return channels
}

// Evaluate checks one item against every rule and returns the resulting
// matches. It is a pure function with no side effects.
//
// The item's title and body are lowercased and concatenated once. For each
// active rule whose channel restriction admits the item, keywords are
// scanned in declared order; the first keyword found as a substring
// produces exactly one match and ends the scan for that rule, so a rule
// contributes at most one match per item even when several of its keywords
// occur.
func Evaluate(item model.Item, rules []model.Rule) []model.Match {
	text := strings.ToLower(item.Title + " " + item.Body)

	var matches []model.Match
	for _, rule := range rules {
		if !rule.Active {
			continue
		}
		if !rule.WatchesChannel(item.Channel) {
			continue
		}
		for _, keyword := range rule.Keywords {
			if strings.Contains(text, strings.ToLower(keyword)) {
				matches = append(matches, model.Match{
					RuleID:  rule.ID,
					Keyword: keyword,
					Contact: rule.Contact,
					Item:    item,
				})
				break
			}
		}
	}
	return matches
}
