// Package positions maps athletes to fantasy-eligible positions through a
// lazily loaded, explicitly invalidated cache.
package positions

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
	"github.com/okian/hoopsrank/pkg/metrics"
)

// Unknown is shown for athletes with no known positions.
const Unknown = "N/A"

var nbaToFantasy = map[string][]string{ //nolint:gochecknoglobals // fixed mapping
	"Guard":          {"PG", "SG"},
	"Forward-Guard":  {"SG", "SF"},
	"Guard-Forward":  {"SG", "SF"},
	"Forward":        {"SF", "PF"},
	"Center-Forward": {"PF", "C"},
	"Forward-Center": {"PF", "C"},
	"Center":         {"C"},
}

var slotOrder = []string{"PG", "SG", "SF", "PF", "C"} //nolint:gochecknoglobals // lineup order

// compareSlots orders lineup slots guard to center; other labels follow by name.
func compareSlots(a, b string) int {
	ia, ib := slices.Index(slotOrder, a), slices.Index(slotOrder, b)
	switch {
	case ia >= 0 && ib >= 0:
		return ia - ib
	case ia >= 0:
		return -1
	case ib >= 0:
		return 1
	}
	return strings.Compare(a, b)
}

// FromNBA maps a provider position such as "Guard-Forward" to fantasy slots.
func FromNBA(position string) ([]string, bool) {
	slots, ok := nbaToFantasy[strings.TrimSpace(position)]
	return slices.Clone(slots), ok
}

// Loader reads the full athlete to positions map.
type Loader interface {
	LoadPositions(ctx context.Context) (map[model.AthleteID][]string, error)
}

// LoaderFunc adapts a function to Loader.
type LoaderFunc func(ctx context.Context) (map[model.AthleteID][]string, error)

// LoadPositions calls f.
func (f LoaderFunc) LoadPositions(ctx context.Context) (map[model.AthleteID][]string, error) {
	return f(ctx)
}

// Cache is a read-through cache over a Loader. The first lookup loads the
// whole map; Invalidate drops it so the next lookup reloads. A failed load is
// remembered the same way, so the loader is not retried until Invalidate or
// Reload.
type Cache struct {
	loader Loader
	logger logger.Logger

	mu      sync.RWMutex
	data    map[model.AthleteID][]string
	loadErr error
	loaded  bool
	loads   int
}

// Option configures a Cache.
type Option func(*Cache)

// WithLogger sets the logger that reports load failures.
func WithLogger(l logger.Logger) Option {
	return func(c *Cache) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewCache creates an empty cache.
func NewCache(loader Loader, opts ...Option) *Cache {
	c := &Cache{loader: loader, logger: logger.Nop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the positions of id in lineup order, de-duplicated.
func (c *Cache) Get(ctx context.Context, id model.AthleteID) ([]string, error) {
	c.mu.RLock()
	if c.loaded {
		p, err := c.data[id], c.loadErr
		c.mu.RUnlock()
		if err != nil {
			return nil, err
		}
		return slices.Clone(p), nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		_ = c.loadLocked(ctx)
	}
	if c.loadErr != nil {
		return nil, c.loadErr
	}
	return slices.Clone(c.data[id]), nil
}

// Label returns the positions joined for display, or Unknown.
func (c *Cache) Label(ctx context.Context, id model.AthleteID) string {
	p, err := c.Get(ctx, id)
	if err != nil || len(p) == 0 {
		return Unknown
	}
	return strings.Join(p, ", ")
}

// Invalidate drops the cached map.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.loadErr = nil
	c.loaded = false
}

// Reload replaces the cached map immediately.
func (c *Cache) Reload(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loadLocked(ctx)
}

// Loads reports how many times the loader has been called.
func (c *Cache) Loads() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loads
}

func (c *Cache) loadLocked(ctx context.Context) error {
	c.loads++
	raw, err := c.loader.LoadPositions(ctx)
	c.loaded = true
	if err != nil {
		c.data = nil
		c.loadErr = fmt.Errorf("load positions: %w", err)
		c.logger.Warn(ctx, "positions unavailable until invalidated", logger.Error(err))
		metrics.RecordDataQuality("positions_unavailable")
		return c.loadErr
	}
	data := make(map[model.AthleteID][]string, len(raw))
	for id, p := range raw {
		sorted := slices.Clone(p)
		slices.SortFunc(sorted, compareSlots)
		data[id] = slices.Compact(sorted)
	}
	c.data = data
	c.loadErr = nil
	return nil
}
