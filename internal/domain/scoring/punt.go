package scoring

import (
	"iter"
	"slices"
	"strings"
)

// MaxPuntSize is the largest number of categories a punt variant excludes.
const MaxPuntSize = 2

const puntKeyPrefix = "PUNT_"

// PuntSet is a set of excluded categories, kept sorted by name.
type PuntSet struct {
	excluded []Category
}

// NewPuntSet builds a set from cats in any order. Duplicates collapse.
func NewPuntSet(cats ...Category) PuntSet {
	ex := slices.Clone(cats)
	slices.Sort(ex)
	return PuntSet{excluded: slices.Compact(ex)}
}

// Excluded returns the punted categories sorted by name.
func (p PuntSet) Excluded() []Category { return slices.Clone(p.excluded) }

// Len is the number of punted categories.
func (p PuntSet) Len() int { return len(p.excluded) }

// Contains reports whether c is punted.
func (p PuntSet) Contains(c Category) bool {
	_, found := slices.BinarySearch(p.excluded, c)
	return found
}

// Key is the stable identifier of the variant, e.g. "PUNT_AST_TOV".
func (p PuntSet) Key() string {
	names := make([]string, len(p.excluded))
	for i, c := range p.excluded {
		names[i] = string(c)
	}
	return puntKeyPrefix + strings.Join(names, "_")
}

func (p PuntSet) String() string { return p.Key() }

// Remaining returns the categories of all that are not punted, in their
// original order.
func (p PuntSet) Remaining(all []Category) []Category {
	out := make([]Category, 0, len(all))
	for _, c := range all {
		if !p.Contains(c) {
			out = append(out, c)
		}
	}
	return out
}

// ParsePuntKey is the inverse of PuntSet.Key.
func ParsePuntKey(key string) (PuntSet, error) {
	rest, ok := strings.CutPrefix(key, puntKeyPrefix)
	if !ok || rest == "" {
		return PuntSet{}, ErrUnknownCategory
	}
	var cats []Category
	for _, name := range strings.Split(rest, "_") {
		c, err := ParseCategory(name)
		if err != nil {
			return PuntSet{}, err
		}
		cats = append(cats, c)
	}
	return NewPuntSet(cats...), nil
}

// CombinationsOfSize lazily yields every k-subset of cats. The sequence can
// be ranged over any number of times.
func CombinationsOfSize(cats []Category, k int) iter.Seq[PuntSet] {
	pool := slices.Clone(cats)
	return func(yield func(PuntSet) bool) {
		if k <= 0 || k > len(pool) {
			return
		}
		idx := make([]int, k)
		for i := range idx {
			idx[i] = i
		}
		picked := make([]Category, k)
		for {
			for i, j := range idx {
				picked[i] = pool[j]
			}
			if !yield(NewPuntSet(picked...)) {
				return
			}
			// advance to the next combination in lexicographic index order
			i := k - 1
			for i >= 0 && idx[i] == len(pool)-k+i {
				i--
			}
			if i < 0 {
				return
			}
			idx[i]++
			for j := i + 1; j < k; j++ {
				idx[j] = idx[j-1] + 1
			}
		}
	}
}

// Combinations yields every subset of cats of size 1 through maxSize,
// smaller subsets first.
func Combinations(cats []Category, maxSize int) iter.Seq[PuntSet] {
	return func(yield func(PuntSet) bool) {
		for k := 1; k <= maxSize; k++ {
			for set := range CombinationsOfSize(cats, k) {
				if !yield(set) {
					return
				}
			}
		}
	}
}
