// Package notify delivers newly recorded matches to their recipients.
package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"redwatch/internal/model"
)

// Sender delivers one match notification. Delivery is best-effort: a failed
// send never affects the recorded match.
type Sender interface {
	Send(ctx context.Context, m model.Match) error
}

// LogSender is the hand-off point for email delivery. Actual email sending
// is not implemented; the match and its contact address are logged instead.
type LogSender struct {
	log *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(log *slog.Logger) *LogSender {
	return &LogSender{log: log}
}

// Send logs the match that would be emailed to the contact.
func (s *LogSender) Send(_ context.Context, m model.Match) error {
	s.log.Info("match notification",
		"contact", m.Contact,
		"rule_id", m.RuleID,
		"keyword", m.Keyword,
		"item_id", m.Item.ID,
		"channel", m.Item.Channel,
		"title", m.Item.Title)
	return nil
}

// FormatMatch formats a match as a notification message.
func FormatMatch(m model.Match) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[r/%s] keyword %q\n\n", m.Item.Channel, m.Keyword)
	b.WriteString(m.Item.Title)
	if body := excerpt(m.Item.Body, 300); body != "" {
		b.WriteString("\n\n")
		b.WriteString(body)
	}
	if m.Item.Source != "" {
		b.WriteString("\n\n")
		b.WriteString(m.Item.Source)
	}
	return b.String()
}

func excerpt(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
