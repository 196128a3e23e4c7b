package scoring

import (
	"fmt"
	"slices"
	"strings"

	"github.com/okian/hoopsrank/internal/domain/model"
)

// Category is a ratable fantasy category.
type Category string

// Ratable categories. FG and FT are the net shooting categories.
const (
	CategoryFG   Category = "FG"
	CategoryFT   Category = "FT"
	CategoryFG3M Category = "FG3M"
	CategoryPTS  Category = "PTS"
	CategoryREB  Category = "REB"
	CategoryAST  Category = "AST"
	CategorySTL  Category = "STL"
	CategoryBLK  Category = "BLK"
	CategoryTOV  Category = "TOV"
)

var allCategories = []Category{ //nolint:gochecknoglobals // fixed category order
	CategoryFG, CategoryFT, CategoryFG3M, CategoryPTS, CategoryREB,
	CategoryAST, CategorySTL, CategoryBLK, CategoryTOV,
}

// DefaultCategories returns every ratable category in display order.
func DefaultCategories() []Category {
	return slices.Clone(allCategories)
}

// ParseCategory resolves a configured name. "FG%" and "FT%" are accepted as
// aliases of the net shooting categories.
func ParseCategory(name string) (Category, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	n = strings.TrimSuffix(n, "_RT")
	switch n {
	case "FG%", "FGN":
		return CategoryFG, nil
	case "FT%", "FTN":
		return CategoryFT, nil
	}
	for _, c := range allCategories {
		if string(c) == n {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// inverted reports whether fewer is better for the category.
func (c Category) inverted() bool { return c == CategoryTOV }

// perGame extracts the per-game (or per-profile mean) value a category is
// built from, before any series-level shift or normalization.
func (c Category) perGame(s model.StatLine) float64 {
	switch c {
	case CategoryFG:
		return netShooting(s.Get(model.StatFGM), s.Get(model.StatFGA))
	case CategoryFT:
		return netShooting(s.Get(model.StatFTM), s.Get(model.StatFTA))
	case CategoryFG3M:
		return s.Get(model.StatFG3M)
	case CategoryPTS:
		return s.Get(model.StatPTS)
	case CategoryREB:
		return s.Get(model.StatREB)
	case CategoryAST:
		return s.Get(model.StatAST)
	case CategorySTL:
		return s.Get(model.StatSTL)
	case CategoryBLK:
		return s.Get(model.StatBLK)
	case CategoryTOV:
		return s.Get(model.StatTOV)
	default:
		return 0
	}
}

// netShooting rewards makes and penalises misses one for one.
func netShooting(made, attempted float64) float64 {
	return made - (attempted - made)
}

func (c Category) netShooting() bool { return c == CategoryFG || c == CategoryFT }

// Rate turns profile means into the category's rating series.
func (c Category) Rate(profiles []model.AthleteProfile) []float64 {
	raw := make([]float64, len(profiles))
	for i := range profiles {
		raw[i] = c.perGame(profiles[i].Mean)
	}
	if c.netShooting() {
		raw = shiftToZero(raw)
	}
	rated := Normalize(raw)
	if c.inverted() {
		rated = invert(rated)
	}
	return rated
}

// ParseCategories resolves names in order, returning the known categories and
// the names that matched none.
func ParseCategories(names []string) ([]Category, []string) {
	var (
		known   []Category
		unknown []string
	)
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			unknown = append(unknown, n)
			continue
		}
		known = append(known, c)
	}
	return known, unknown
}
