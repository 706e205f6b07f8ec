package config

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

var configEnvKeys = []string{
	"DATABASE_PATH", "LOG_LEVEL", "LISTEN_ADDR", "FEED_FORMAT", "FEED_LIMIT",
	"FEED_USER_AGENT", "FETCH_TIMEOUT_SECONDS", "FETCH_WORKERS",
	"SCAN_INTERVAL_MINUTES", "TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID",
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		want    *Config
		wantErr bool
	}{
		{
			name: "defaults applied",
			env:  map[string]string{},
			want: &Config{
				DatabasePath:        "./data/redwatch.db",
				LogLevel:            "info",
				ListenAddr:          ":8080",
				FeedFormat:          "json",
				FeedLimit:           100,
				FeedUserAgent:       "redwatch/1.0",
				FetchTimeoutSeconds: 30,
				FetchWorkers:        4,
				ScanIntervalMinutes: 0,
			},
		},
		{
			name: "all values set",
			env: map[string]string{
				"DATABASE_PATH":         "/tmp/watch.db",
				"LOG_LEVEL":             "debug",
				"LISTEN_ADDR":           ":9090",
				"FEED_FORMAT":           "rss",
				"FEED_LIMIT":            "25",
				"FEED_USER_AGENT":       "custom/2.0",
				"FETCH_TIMEOUT_SECONDS": "10",
				"FETCH_WORKERS":         "2",
				"SCAN_INTERVAL_MINUTES": "15",
				"TELEGRAM_BOT_TOKEN":    "tok",
				"TELEGRAM_CHAT_ID":      "12345",
			},
			want: &Config{
				DatabasePath:        "/tmp/watch.db",
				LogLevel:            "debug",
				ListenAddr:          ":9090",
				FeedFormat:          "rss",
				FeedLimit:           25,
				FeedUserAgent:       "custom/2.0",
				FetchTimeoutSeconds: 10,
				FetchWorkers:        2,
				ScanIntervalMinutes: 15,
				TelegramBotToken:    "tok",
				TelegramChatID:      12345,
			},
		},
		{
			name:    "unknown feed format",
			env:     map[string]string{"FEED_FORMAT": "atomish"},
			wantErr: true,
		},
		{
			name:    "feed limit over cap",
			env:     map[string]string{"FEED_LIMIT": "500"},
			wantErr: true,
		},
		{
			name:    "non-numeric workers",
			env:     map[string]string{"FETCH_WORKERS": "many"},
			wantErr: true,
		},
		{
			name:    "invalid chat id",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok", "TELEGRAM_CHAT_ID": "abc"},
			wantErr: true,
		},
		{
			name:    "token without chat id",
			env:     map[string]string{"TELEGRAM_BOT_TOKEN": "tok"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, key := range configEnvKeys {
				t.Setenv(key, "")
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := Load()
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Load() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
