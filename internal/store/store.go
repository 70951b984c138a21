// Package store persists completed research runs so repeat requests for
// the same search profile can be served from cache.
package store

import (
	"context"
	"time"
)

// CachedResult is one completed run keyed by search-profile hash.
type CachedResult struct {
	ID          string    `json:"id"`
	ProfileHash string    `json:"profile_hash"`
	Payload     []byte    `json:"payload"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// Store defines the persistence interface for the research pipeline.
type Store interface {
	// GetCachedResult returns the newest unexpired result for the hash,
	// or nil when there is none.
	GetCachedResult(ctx context.Context, profileHash string) (*CachedResult, error)
	SetCachedResult(ctx context.Context, profileHash string, payload []byte, ttl time.Duration) error
	DeleteExpired(ctx context.Context) (int, error)

	Migrate(ctx context.Context) error
	Close() error
}
