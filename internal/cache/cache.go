// Package cache holds the query cache shared by catalog lookups and library
// listings.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/goccy/go-json"
)

// Store is a byte-oriented key/value cache with prefix invalidation.
type Store interface {
	// Get returns the cached value and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value for ttl; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// InvalidatePrefix removes every key starting with prefix.
	InvalidatePrefix(ctx context.Context, prefix string) error
}

// GetJSON decodes a cached value into out. A miss or an undecodable entry
// reports false.
func GetJSON(ctx context.Context, s Store, key string, out any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, nil
	}
	return true, nil
}

// SetJSON encodes value and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	return s.Set(ctx, key, raw, ttl)
}

// Key templates.
const (
	catalogSearchKey = "catalog:%s:search:%s"
	libraryPrefix    = "library:%s:%s:"
)

func CatalogSearchKey(provider, query string) string {
	return fmt.Sprintf(catalogSearchKey, provider, query)
}

// LibraryPrefix covers every cached key of one user's list of the given kind.
func LibraryPrefix(userID, kind string) string {
	return fmt.Sprintf(libraryPrefix, userID, kind)
}

// LibraryKey addresses the cached listing of one user's list.
func LibraryKey(userID, kind string) string {
	return LibraryPrefix(userID, kind) + "list"
}
