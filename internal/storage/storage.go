// Package storage defines the persistence interface and its implementations.
package storage

import (
	"context"
	"errors"

	"redwatch/internal/model"
)

// ErrRuleNotFound is returned when a rule lookup finds no row.
var ErrRuleNotFound = errors.New("rule not found")

// Storage is the interface for all persistence operations.
type Storage interface {
	CreateRule(ctx context.Context, rule *model.Rule) error
	GetRule(ctx context.Context, id string) (*model.Rule, error)
	ListRules(ctx context.Context) ([]model.Rule, error)
	ListActiveRules(ctx context.Context) ([]model.Rule, error)
	DeactivateRule(ctx context.Context, id string) error

	AppendMatches(ctx context.Context, matches []model.Match) error
	ListMatches(ctx context.Context) ([]model.Match, error)
	SeenItemIDs(ctx context.Context) (map[string]struct{}, error)

	Close() error
}
