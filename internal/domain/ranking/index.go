// Package ranking keeps athletes ordered by one rating column.
package ranking

import (
	"cmp"
	"iter"
	"math"
	"sync"

	"github.com/okian/hoopsrank/internal/domain/model"
)

// Treap ordered by (present, value, athlete id). "less" means ranks earlier,
// so an in-order walk yields the table from first to last row. Athletes
// without a value always sort after those with one, in either direction.

// Key is the sort value of one athlete. Present is false for rows with no
// value, such as an unscheduled week.
type Key struct {
	Value   float64
	Present bool
}

// Entry is one ranked athlete. Rank is 1-based.
type Entry struct {
	Rank      int
	AthleteID model.AthleteID
	Key       Key
}

type node struct {
	id    model.AthleteID
	key   Key
	prio  uint64
	left  *node
	right *node
	size  int
}

func nsize(n *node) int {
	if n == nil {
		return 0
	}
	return n.size
}

func fix(n *node) {
	if n != nil {
		n.size = 1 + nsize(n.left) + nsize(n.right)
	}
}

func rotateRight(y *node) *node {
	x := y.left
	y.left = x.right
	x.right = y
	fix(y)
	fix(x)
	return x
}

func rotateLeft(x *node) *node {
	y := x.right
	x.right = y.left
	y.left = x
	fix(x)
	fix(y)
	return y
}

// priority scrambles the athlete id with splitmix64 so the tree shape is
// balanced in expectation and the same for every run.
func priority(id model.AthleteID) uint64 {
	z := uint64(id) + 0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Index is an order-statistic treap over athletes. It is safe for
// concurrent use.
type Index struct {
	desc bool

	mu   sync.RWMutex
	root *node
	byID map[model.AthleteID]Key
}

// New creates an empty index. desc puts the highest value first.
func New(desc bool) *Index {
	return &Index{desc: desc, byID: make(map[model.AthleteID]Key)}
}

// compare orders (a, aID) against (b, bID); negative ranks a earlier.
func (x *Index) compare(a Key, aID model.AthleteID, b Key, bID model.AthleteID) int {
	if a.Present != b.Present {
		if a.Present {
			return -1
		}
		return 1
	}
	if a.Present {
		c := cmp.Compare(a.Value, b.Value)
		if x.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(aID, bID)
}

func (x *Index) insert(n *node, id model.AthleteID, k Key) *node {
	if n == nil {
		return &node{id: id, key: k, prio: priority(id), size: 1}
	}
	if x.compare(k, id, n.key, n.id) < 0 {
		n.left = x.insert(n.left, id, k)
		if n.left.prio > n.prio {
			n = rotateRight(n)
		}
	} else {
		n.right = x.insert(n.right, id, k)
		if n.right.prio > n.prio {
			n = rotateLeft(n)
		}
	}
	fix(n)
	return n
}

func (x *Index) remove(n *node, id model.AthleteID, k Key) *node {
	if n == nil {
		return nil
	}
	switch c := x.compare(k, id, n.key, n.id); {
	case c == 0:
		if n.left == nil {
			return n.right
		}
		if n.right == nil {
			return n.left
		}
		if n.left.prio > n.right.prio {
			n = rotateRight(n)
			n.right = x.remove(n.right, id, k)
		} else {
			n = rotateLeft(n)
			n.left = x.remove(n.left, id, k)
		}
	case c < 0:
		n.left = x.remove(n.left, id, k)
	default:
		n.right = x.remove(n.right, id, k)
	}
	fix(n)
	return n
}

// Upsert places the athlete at k, replacing any earlier key. NaN values
// are stored as absent.
func (x *Index) Upsert(id model.AthleteID, k Key) {
	if math.IsNaN(k.Value) {
		k = Key{}
	}
	if !k.Present {
		k.Value = 0
	}
	x.mu.Lock()
	defer x.mu.Unlock()
	if old, ok := x.byID[id]; ok {
		if old == k {
			return
		}
		x.root = x.remove(x.root, id, old)
	}
	x.byID[id] = k
	x.root = x.insert(x.root, id, k)
}

// Remove drops the athlete and reports whether it was present.
func (x *Index) Remove(id model.AthleteID) bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	k, ok := x.byID[id]
	if !ok {
		return false
	}
	x.root = x.remove(x.root, id, k)
	delete(x.byID, id)
	return true
}

// Rank returns the athlete's position in O(log n).
func (x *Index) Rank(id model.AthleteID) (Entry, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()
	k, ok := x.byID[id]
	if !ok {
		return Entry{}, ErrNotFound
	}
	before := 0
	for n := x.root; n != nil; {
		switch c := x.compare(k, id, n.key, n.id); {
		case c < 0:
			n = n.left
		case c > 0:
			before += nsize(n.left) + 1
			n = n.right
		default:
			return Entry{Rank: before + nsize(n.left) + 1, AthleteID: id, Key: k}, nil
		}
	}
	return Entry{}, ErrNotFound
}

// TopN returns the first n entries in rank order.
func (x *Index) TopN(n int) ([]Entry, error) {
	if n < 1 {
		return nil, ErrInvalidLimit
	}
	x.mu.RLock()
	defer x.mu.RUnlock()
	out := make([]Entry, 0, min(n, nsize(x.root)))
	collect(x.root, n, &out)
	return out, nil
}

func collect(n *node, limit int, out *[]Entry) {
	if n == nil || len(*out) >= limit {
		return
	}
	collect(n.left, limit, out)
	if len(*out) < limit {
		*out = append(*out, Entry{Rank: len(*out) + 1, AthleteID: n.id, Key: n.key})
	}
	collect(n.right, limit, out)
}

// All yields every entry in rank order. The index is read-locked until the
// iteration ends.
func (x *Index) All() iter.Seq[Entry] {
	return func(yield func(Entry) bool) {
		x.mu.RLock()
		defer x.mu.RUnlock()
		rank := 0
		var walk func(n *node) bool
		walk = func(n *node) bool {
			if n == nil {
				return true
			}
			if !walk(n.left) {
				return false
			}
			rank++
			if !yield(Entry{Rank: rank, AthleteID: n.id, Key: n.key}) {
				return false
			}
			return walk(n.right)
		}
		walk(x.root)
	}
}

// Count returns the number of athletes.
func (x *Index) Count() int {
	x.mu.RLock()
	defer x.mu.RUnlock()
	return len(x.byID)
}
