package common

import "time"

// CacheInterface defines the contract for cache implementations. Only
// read-only projections (announcement feeds, badge catalogs) may be
// cached; counters and XP are always read fresh from the store.
type CacheInterface interface {
	Set(key string, value interface{}, duration time.Duration)

	// Get returns the value and true if found, nil and false otherwise.
	Get(key string) (interface{}, bool)

	Delete(key string)

	// GetOrSet retrieves a value, or loads and stores it on a miss.
	GetOrSet(key string, duration time.Duration, loader func() (any, error)) (interface{}, error)

	// Close closes any underlying connections.
	Close() error
}
