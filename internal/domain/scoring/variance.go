package scoring

import (
	"maps"
	"slices"

	"github.com/okian/hoopsrank/internal/domain/model"
)

type moments struct {
	n          float64
	sum, sumSq []float64
}

// Variance sums, per category, the population variance of each athlete's
// per-game values. Net shooting categories use the unshifted per-game net.
// Athletes are summed in id order so the totals are reproducible.
func Variance(rows []model.AthleteGameRow, cats []Category) map[Category]float64 {
	per := make(map[model.AthleteID]*moments)
	for i := range rows {
		m := per[rows[i].AthleteID]
		if m == nil {
			m = &moments{sum: make([]float64, len(cats)), sumSq: make([]float64, len(cats))}
			per[rows[i].AthleteID] = m
		}
		m.n++
		for j, c := range cats {
			v := c.perGame(rows[i].Stats)
			m.sum[j] += v
			m.sumSq[j] += v * v
		}
	}

	ids := slices.Sorted(maps.Keys(per))
	out := make(map[Category]float64, len(cats))
	for j, c := range cats {
		total := 0.0
		for _, id := range ids {
			m := per[id]
			mean := m.sum[j] / m.n
			if v := m.sumSq[j]/m.n - mean*mean; v > 0 {
				total += v
			}
		}
		out[c] = total
	}
	return out
}
