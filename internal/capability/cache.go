package capability

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"voxmate/internal/logging"
)

// TranslatorCache holds at most one live translator. A request for the same
// language pair reuses the handle; a different pair discards it and creates
// a replacement. Concurrent requests for the same pair share a single
// creation. A pair that resolves to unavailable is not cached, so a model
// installed later can still be picked up.
type TranslatorCache struct {
	factory      TranslatorFactory
	readyTimeout time.Duration
	pollInterval time.Duration

	group      singleflight.Group
	mu         sync.RWMutex
	source     string
	target     string
	translator Translator
}

// NewTranslatorCache wraps factory with single-handle caching. Zero durations
// fall back to the default polling bounds.
func NewTranslatorCache(factory TranslatorFactory, readyTimeout, pollInterval time.Duration) *TranslatorCache {
	return &TranslatorCache{
		factory:      factory,
		readyTimeout: readyTimeout,
		pollInterval: pollInterval,
	}
}

// Get returns the translator for the pair, creating it on first use or when
// the pair differs from the held handle's. monitor, when non-nil, receives
// download progress during creation.
func (c *TranslatorCache) Get(ctx context.Context, source, target string, monitor DownloadProgress) (Translator, error) {
	if t, ok := c.held(source, target); ok {
		return t, nil
	}

	key := source + "\x00" + target
	result, err, _ := c.group.Do(key, func() (interface{}, error) {
		if t, ok := c.held(source, target); ok {
			return t, nil
		}

		err := WaitUntilReady(ctx, func(ctx context.Context) (Availability, error) {
			return c.factory.Availability(ctx, source, target)
		}, c.readyTimeout, c.pollInterval)
		if err != nil {
			return nil, fmt.Errorf("translator %s -> %s: %w", source, target, err)
		}

		t, err := c.factory.Create(ctx, source, target, monitor)
		if err != nil {
			return nil, fmt.Errorf("translator %s -> %s: %w", source, target, err)
		}

		c.mu.Lock()
		if c.translator != nil {
			logging.Capability("discarding translator %s -> %s", c.source, c.target)
		}
		c.source, c.target, c.translator = source, target, t
		c.mu.Unlock()
		logging.Capability("cached translator %s -> %s", source, target)
		return t, nil
	})
	if err != nil {
		return nil, err
	}
	return result.(Translator), nil
}

func (c *TranslatorCache) held(source, target string) (Translator, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.translator != nil && c.source == source && c.target == target {
		return c.translator, true
	}
	return nil, false
}

// Len reports whether a handle is held: 0 or 1.
func (c *TranslatorCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.translator == nil {
		return 0
	}
	return 1
}
