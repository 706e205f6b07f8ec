package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"redwatch/internal/engine"
	"redwatch/internal/model"
	"redwatch/internal/storage"
)

// Scanner triggers one scan cycle.
type Scanner interface {
	Scan(ctx context.Context) (*model.ScanResult, error)
}

// Handler serves the HTTP endpoints.
type Handler struct {
	store   storage.Storage
	scanner Scanner
	log     *slog.Logger
}

// NewHandler creates a Handler.
func NewHandler(store storage.Storage, scanner Scanner, log *slog.Logger) *Handler {
	return &Handler{store: store, scanner: scanner, log: log}
}

type createAlertRequest struct {
	Keywords []string `json:"keywords"`
	Channels []string `json:"channels"`
	Contact  string   `json:"contact"`
}

type alertResponse struct {
	ID        string    `json:"id"`
	Keywords  []string  `json:"keywords"`
	Channels  []string  `json:"channels"`
	Contact   string    `json:"contact"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

type matchResponse struct {
	ID        int64     `json:"id"`
	RuleID    string    `json:"rule_id"`
	Keyword   string    `json:"keyword"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`

	ItemID        string    `json:"item_id"`
	ItemTitle     string    `json:"item_title"`
	ItemBody      string    `json:"item_body"`
	ItemChannel   string    `json:"item_channel"`
	ItemSource    string    `json:"item_source"`
	ItemAuthor    string    `json:"item_author"`
	ItemScore     int       `json:"item_score"`
	ItemCreatedAt time.Time `json:"item_created_at"`
}

// CreateAlert registers a new watch rule. Keywords are lowercased at the
// boundary so the matching engine works on normalized values.
func (h *Handler) CreateAlert(c *gin.Context) {
	var req createAlertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	keywords := make([]string, 0, len(req.Keywords))
	for _, k := range req.Keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywords = append(keywords, k)
		}
	}
	if len(keywords) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "keywords are required"})
		return
	}
	if strings.TrimSpace(req.Contact) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "contact is required"})
		return
	}

	channels := make([]string, 0, len(req.Channels))
	for _, ch := range req.Channels {
		ch = strings.TrimSpace(ch)
		if ch != "" {
			channels = append(channels, ch)
		}
	}

	rule := model.Rule{
		ID:       uuid.NewString(),
		Keywords: keywords,
		Channels: channels,
		Contact:  strings.TrimSpace(req.Contact),
		Active:   true,
	}
	if err := h.store.CreateRule(c.Request.Context(), &rule); err != nil {
		h.log.Error("create rule", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create alert"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "alert created",
		"alert":   toAlertResponse(rule),
	})
}

// ListAlerts returns all registered rules.
func (h *Handler) ListAlerts(c *gin.Context) {
	rules, err := h.store.ListRules(c.Request.Context())
	if err != nil {
		h.log.Error("list rules", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list alerts"})
		return
	}

	alerts := make([]alertResponse, 0, len(rules))
	for _, r := range rules {
		alerts = append(alerts, toAlertResponse(r))
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": len(alerts)})
}

// DeactivateAlert clears a rule's active flag so the engine stops
// considering it.
func (h *Handler) DeactivateAlert(c *gin.Context) {
	id := c.Param("id")
	err := h.store.DeactivateRule(c.Request.Context(), id)
	if errors.Is(err, storage.ErrRuleNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "alert not found"})
		return
	}
	if err != nil {
		h.log.Error("deactivate rule", "id", id, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to deactivate alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "alert deactivated"})
}

// RunScan triggers one scan cycle.
func (h *Handler) RunScan(c *gin.Context) {
	result, err := h.scanner.Scan(c.Request.Context())
	if errors.Is(err, engine.ErrScanInProgress) {
		c.JSON(http.StatusConflict, gin.H{"error": "scan already in progress"})
		return
	}
	if err != nil {
		h.log.Error("scan", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "scan failed"})
		return
	}

	matches := make([]matchResponse, 0, len(result.Matches))
	for _, m := range result.Matches {
		matches = append(matches, toMatchResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "scan complete",
		"new_matches": result.NewMatches,
		"matches":     matches,
	})
}

// ListMatches returns the match history, newest first.
func (h *Handler) ListMatches(c *gin.Context) {
	history, err := h.store.ListMatches(c.Request.Context())
	if err != nil {
		h.log.Error("list matches", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list matches"})
		return
	}

	matches := make([]matchResponse, 0, len(history))
	for _, m := range history {
		matches = append(matches, toMatchResponse(m))
	}
	c.JSON(http.StatusOK, gin.H{"matches": matches, "total": len(matches)})
}

// GetHealth is the liveness endpoint.
func (h *Handler) GetHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}

func toAlertResponse(r model.Rule) alertResponse {
	return alertResponse{
		ID:        r.ID,
		Keywords:  r.Keywords,
		Channels:  r.Channels,
		Contact:   r.Contact,
		Active:    r.Active,
		CreatedAt: r.CreatedAt,
	}
}

func toMatchResponse(m model.Match) matchResponse {
	return matchResponse{
		ID:            m.ID,
		RuleID:        m.RuleID,
		Keyword:       m.Keyword,
		Contact:       m.Contact,
		CreatedAt:     m.CreatedAt,
		ItemID:        m.Item.ID,
		ItemTitle:     m.Item.Title,
		ItemBody:      m.Item.Body,
		ItemChannel:   m.Item.Channel,
		ItemSource:    m.Item.Source,
		ItemAuthor:    m.Item.Author,
		ItemScore:     m.Item.Score,
		ItemCreatedAt: m.Item.CreatedAt,
	}
}
