// Package blend aggregates box scores into season profiles and blends a
// prior season into the current one.
package blend

import (
	"cmp"
	"context"
	"slices"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
)

// DefaultSeasonGames is the length of an NBA regular season.
const DefaultSeasonGames = 82

// Aggregate averages each athlete's rows into one profile. Names and teams
// come from the roster; athletes missing from it fall back to the team of
// their first row and an empty name.
func Aggregate(rows []model.AthleteGameRow, roster []model.RosterEntry, teams *model.Teams) []model.AthleteProfile {
	byID := make(map[model.AthleteID]model.RosterEntry, len(roster))
	for _, e := range roster {
		byID[e.AthleteID] = e
	}

	type acc struct {
		profile model.AthleteProfile
		sum     model.StatLine
	}
	accs := make(map[model.AthleteID]*acc)
	for i := range rows {
		r := &rows[i]
		a := accs[r.AthleteID]
		if a == nil {
			a = &acc{profile: model.AthleteProfile{AthleteID: r.AthleteID}}
			if e, ok := byID[r.AthleteID]; ok {
				a.profile.Name = e.Name
				a.profile.TeamID = e.TeamID
			}
			if a.profile.TeamID == 0 {
				if t, ok := teams.ByAbbr(r.TeamAbbreviation()); ok {
					a.profile.TeamID = t.ID
				}
			}
			accs[r.AthleteID] = a
		}
		a.profile.Games++
		for s := range r.Stats {
			a.sum[s] += r.Stats[s]
		}
	}

	out := make([]model.AthleteProfile, 0, len(accs))
	for _, a := range accs {
		for s := range a.sum {
			a.profile.Mean[s] = a.sum[s] / float64(a.profile.Games)
		}
		out = append(out, a.profile)
	}
	slices.SortFunc(out, byAthleteID)
	return out
}

func byAthleteID(a, b model.AthleteProfile) int { return cmp.Compare(a.AthleteID, b.AthleteID) }

// Blender merges prior and current season profiles.
type Blender struct {
	seasonGames int
	logger      logger.Logger
}

// Option applies a configuration option to the Blender.
type Option func(*Blender)

// WithSeasonGames sets the regular season length.
func WithSeasonGames(n int) Option {
	return func(b *Blender) {
		if n > 0 {
			b.seasonGames = n
		}
	}
}

// WithLogger sets the blender logger.
func WithLogger(l logger.Logger) Option {
	return func(b *Blender) {
		if l != nil {
			b.logger = l
		}
	}
}

// NewBlender creates a Blender for an 82 game season.
func NewBlender(opts ...Option) *Blender {
	b := &Blender{seasonGames: DefaultSeasonGames, logger: logger.Nop()}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Weight is the share given to the prior season for a team that has played
// gamesPlayed current-season games.
func (b *Blender) Weight(gamesPlayed int) float64 {
	if gamesPlayed <= 0 {
		return 1
	}
	return max(0, float64(b.seasonGames-gamesPlayed)/float64(b.seasonGames))
}

// Blend combines both seasons per athlete. The weight is driven by the games
// the athlete's current team has played, not by the athlete's own games.
// Athletes present in only one season keep that profile unchanged.
func (b *Blender) Blend(ctx context.Context, prior, current []model.AthleteProfile, teamGames map[model.TeamID]int) []model.AthleteProfile {
	priorByID := make(map[model.AthleteID]model.AthleteProfile, len(prior))
	for _, p := range prior {
		priorByID[p.AthleteID] = p
	}

	out := make([]model.AthleteProfile, 0, len(prior)+len(current))
	blended := 0
	for _, cur := range current {
		old, ok := priorByID[cur.AthleteID]
		if !ok {
			out = append(out, cur)
			continue
		}
		delete(priorByID, cur.AthleteID)
		w := b.Weight(teamGames[cur.TeamID])
		merged := cur
		merged.Games = old.Games + cur.Games
		for s := range merged.Mean {
			merged.Mean[s] = w*old.Mean[s] + (1-w)*cur.Mean[s]
		}
		out = append(out, merged)
		blended++
	}
	for _, p := range priorByID {
		out = append(out, p)
	}
	slices.SortFunc(out, byAthleteID)

	b.logger.Debug(ctx, "blended seasons",
		logger.Int("prior", len(prior)),
		logger.Int("current", len(current)),
		logger.Int("blended", blended))
	return out
}
