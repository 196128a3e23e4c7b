// Package dedupe drops repeated (athlete, game) box scores from the feed.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
)

// Key identifies one athlete's box score for one game.
type Key struct {
	AthleteID model.AthleteID
	GameID    string
}

// KeyOf returns the dedupe key of a row.
func KeyOf(r *model.AthleteGameRow) Key {
	return Key{AthleteID: r.AthleteID, GameID: r.GameID}
}

// Deduper records seen keys.
type Deduper interface {
	// SeenAndRecord reports whether k was already seen and records it if not.
	SeenAndRecord(ctx context.Context, k Key) bool

	// Unrecord forgets k so a later row with the same key is accepted.
	Unrecord(ctx context.Context, k Key)

	Size() int64
}

// inMemoryDeduper keeps keys in a map. When maxSize > 0 the oldest key is
// evicted once the limit is reached.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[Key]struct{}
	order   []Key // insertion order, bounded mode only
	maxSize int
	size    atomic.Int64
}

// NewInMemoryDeduper creates an unbounded deduper unless WithMaxSize is set.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{}
	for _, opt := range opts {
		opt(d)
	}
	d.seen = make(map[Key]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, k Key) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[k]; ok {
		return true
	}
	if d.maxSize > 0 {
		for len(d.seen) >= d.maxSize && len(d.order) > 0 {
			d.evictOldest()
		}
		d.order = append(d.order, k)
	}
	d.seen[k] = struct{}{}
	d.size.Add(1)
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, k Key) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[k]; !ok {
		return
	}
	delete(d.seen, k)
	d.size.Add(-1)
	if d.maxSize > 0 {
		for i, o := range d.order {
			if o == k {
				d.order = append(d.order[:i], d.order[i+1:]...)
				break
			}
		}
	}
}

// evictOldest must be called with d.mu held.
func (d *inMemoryDeduper) evictOldest() {
	oldest := d.order[0]
	d.order = d.order[1:]
	if _, ok := d.seen[oldest]; ok {
		delete(d.seen, oldest)
		d.size.Add(-1)
	}
}

func (d *inMemoryDeduper) Size() int64 { return d.size.Load() }

// Rows returns rows with repeated keys removed, keeping the first occurrence,
// and the number of rows dropped. Each drop is logged as a warning.
func Rows(ctx context.Context, rows []model.AthleteGameRow, d Deduper, log logger.Logger) ([]model.AthleteGameRow, int) {
	kept := make([]model.AthleteGameRow, 0, len(rows))
	dropped := 0
	for i := range rows {
		k := KeyOf(&rows[i])
		if d.SeenAndRecord(ctx, k) {
			dropped++
			log.Warn(ctx, "dropping duplicate box score",
				logger.Int64("athlete_id", int64(k.AthleteID)),
				logger.String("game_id", k.GameID))
			continue
		}
		kept = append(kept, rows[i])
	}
	return kept, dropped
}
