package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver registration.

	"redwatch/internal/model"
	"redwatch/migrations"
)

const timeLayout = "2006-01-02T15:04:05Z"

// SQLite implements Storage backed by a SQLite database.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens a SQLite database at dsn and runs pending migrations.
func NewSQLite(dsn string) (*SQLite, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if err := migrations.Run(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Close closes the underlying database connection.
func (s *SQLite) Close() error {
	return s.db.Close()
}

// CreateRule inserts a new rule and populates its CreatedAt.
func (s *SQLite) CreateRule(ctx context.Context, rule *model.Rule) error {
	keywords, err := json.Marshal(rule.Keywords)
	if err != nil {
		return fmt.Errorf("encode keywords: %w", err)
	}
	channels, err := json.Marshal(rule.Channels)
	if err != nil {
		return fmt.Errorf("encode channels: %w", err)
	}

	now := time.Now().UTC().Format(timeLayout)
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO rules (id, keywords, channels, contact, is_active, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		rule.ID, string(keywords), string(channels), rule.Contact, boolToInt(rule.Active), now,
	)
	if err != nil {
		return fmt.Errorf("insert rule: %w", err)
	}
	rule.CreatedAt, _ = time.Parse(timeLayout, now)
	return nil
}

// GetRule returns a single rule by its ID.
func (s *SQLite) GetRule(ctx context.Context, id string) (*model.Rule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, keywords, channels, contact, is_active, created_at
		 FROM rules WHERE id = ?`, id,
	)
	rule, err := scanRule(row)
	if err == sql.ErrNoRows {
		return nil, ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rule, nil
}

// ListRules returns all rules, oldest first.
func (s *SQLite) ListRules(ctx context.Context) ([]model.Rule, error) {
	return s.queryRules(ctx,
		`SELECT id, keywords, channels, contact, is_active, created_at
		 FROM rules ORDER BY created_at, id`)
}

// ListActiveRules returns only rules with the active flag set, oldest first.
func (s *SQLite) ListActiveRules(ctx context.Context) ([]model.Rule, error) {
	return s.queryRules(ctx,
		`SELECT id, keywords, channels, contact, is_active, created_at
		 FROM rules WHERE is_active = 1 ORDER BY created_at, id`)
}

// DeactivateRule clears the active flag on a rule.
func (s *SQLite) DeactivateRule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE rules SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deactivate rule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrRuleNotFound
	}
	return nil
}

// AppendMatches records new matches in a single transaction. The matches
// must be durable when this returns nil; a failure here is fatal to the
// scan cycle that produced them.
func (s *SQLite) AppendMatches(ctx context.Context, matches []model.Match) error {
	if len(matches) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC().Format(timeLayout)
	for i := range matches {
		m := &matches[i]
		res, err := tx.ExecContext(ctx,
			`INSERT INTO matches (rule_id, keyword, contact, item_id, item_title, item_body,
			                      item_channel, item_source, item_author, item_score,
			                      item_created_at, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			m.RuleID, m.Keyword, m.Contact, m.Item.ID, m.Item.Title, m.Item.Body,
			m.Item.Channel, m.Item.Source, m.Item.Author, m.Item.Score,
			m.Item.CreatedAt.UTC().Format(timeLayout), now,
		)
		if err != nil {
			return fmt.Errorf("insert match: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("last insert id: %w", err)
		}
		m.ID = id
		m.CreatedAt, _ = time.Parse(timeLayout, now)
	}
	return tx.Commit()
}

// ListMatches returns the full match history, newest first.
func (s *SQLite) ListMatches(ctx context.Context) ([]model.Match, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, rule_id, keyword, contact, item_id, item_title, item_body,
		        item_channel, item_source, item_author, item_score,
		        item_created_at, created_at
		 FROM matches ORDER BY id DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("query matches: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var matches []model.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// SeenItemIDs returns the ids of all items present in the match history.
// The seen registry is derived from recorded matches only: items fetched
// but never matched are not retained.
func (s *SQLite) SeenItemIDs(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT item_id FROM matches`)
	if err != nil {
		return nil, fmt.Errorf("query seen items: %w", err)
	}
	defer func() { _ = rows.Close() }()

	seen := make(map[string]struct{})
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan item id: %w", err)
		}
		seen[id] = struct{}{}
	}
	return seen, rows.Err()
}

func (s *SQLite) queryRules(ctx context.Context, query string) ([]model.Rule, error) {
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query rules: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var rules []model.Rule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRule(row scannable) (model.Rule, error) {
	var r model.Rule
	var keywords, channels, createdStr string
	var isActive int
	err := row.Scan(&r.ID, &keywords, &channels, &r.Contact, &isActive, &createdStr)
	if err == sql.ErrNoRows {
		return r, err
	}
	if err != nil {
		return r, fmt.Errorf("scan rule: %w", err)
	}
	if err := json.Unmarshal([]byte(keywords), &r.Keywords); err != nil {
		return r, fmt.Errorf("decode keywords: %w", err)
	}
	if err := json.Unmarshal([]byte(channels), &r.Channels); err != nil {
		return r, fmt.Errorf("decode channels: %w", err)
	}
	r.Active = isActive == 1
	r.CreatedAt, _ = time.Parse(timeLayout, createdStr)
	return r, nil
}

func scanMatch(row scannable) (model.Match, error) {
	var m model.Match
	var itemCreated, created string
	err := row.Scan(&m.ID, &m.RuleID, &m.Keyword, &m.Contact,
		&m.Item.ID, &m.Item.Title, &m.Item.Body, &m.Item.Channel,
		&m.Item.Source, &m.Item.Author, &m.Item.Score, &itemCreated, &created)
	if err != nil {
		return m, fmt.Errorf("scan match: %w", err)
	}
	m.Item.CreatedAt, _ = time.Parse(timeLayout, itemCreated)
	m.CreatedAt, _ = time.Parse(timeLayout, created)
	return m, nil
}
