// Package availability scores how often athletes play relative to their team.
package availability

import (
	"context"

	"github.com/okian/hoopsrank/internal/domain/model"
	"github.com/okian/hoopsrank/pkg/logger"
)

// Result holds the scores of one run.
type Result struct {
	// Scores maps every roster athlete, and every athlete with rows, to a
	// value in [0, 1].
	Scores map[model.AthleteID]float64
	// TeamGames counts distinct games per team.
	TeamGames map[model.TeamID]int
	// AthleteGames counts distinct games per athlete.
	AthleteGames map[model.AthleteID]int
	// Unmapped counts rows whose team abbreviation matched no team.
	Unmapped int
}

// Scorer computes availability scores.
type Scorer struct {
	teams  *model.Teams
	logger logger.Logger
}

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithLogger sets the scorer logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Scorer) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewScorer creates a scorer resolving abbreviations through teams.
func NewScorer(teams *model.Teams, opts ...Option) *Scorer {
	s := &Scorer{teams: teams, logger: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Score computes availability from one season of rows. An athlete's team is
// the roster team, or the team of their first row when the roster has none.
func (s *Scorer) Score(ctx context.Context, rows []model.AthleteGameRow, roster []model.RosterEntry) Result {
	res := Result{
		Scores:       make(map[model.AthleteID]float64, len(roster)),
		TeamGames:    make(map[model.TeamID]int),
		AthleteGames: make(map[model.AthleteID]int),
	}

	teamGames := make(map[model.TeamID]map[string]struct{})
	athleteGames := make(map[model.AthleteID]map[string]struct{})
	firstTeam := make(map[model.AthleteID]model.TeamID)
	unmapped := make(map[string]struct{})

	for i := range rows {
		r := &rows[i]
		if athleteGames[r.AthleteID] == nil {
			athleteGames[r.AthleteID] = make(map[string]struct{})
		}
		athleteGames[r.AthleteID][r.GameID] = struct{}{}

		abbr := r.TeamAbbreviation()
		team, ok := s.teams.ByAbbr(abbr)
		if !ok {
			res.Unmapped++
			if _, seen := unmapped[abbr]; !seen {
				unmapped[abbr] = struct{}{}
				s.logger.Warn(ctx, "unmapped team abbreviation", logger.String("abbreviation", abbr),
					logger.String("matchup", r.Matchup))
			}
			continue
		}
		if teamGames[team.ID] == nil {
			teamGames[team.ID] = make(map[string]struct{})
		}
		teamGames[team.ID][r.GameID] = struct{}{}
		if _, ok := firstTeam[r.AthleteID]; !ok {
			firstTeam[r.AthleteID] = team.ID
		}
	}

	for team, games := range teamGames {
		res.TeamGames[team] = len(games)
	}
	for id, games := range athleteGames {
		res.AthleteGames[id] = len(games)
	}

	teamOf := make(map[model.AthleteID]model.TeamID, len(roster)+len(firstTeam))
	for id, team := range firstTeam {
		teamOf[id] = team
	}
	for _, e := range roster {
		if e.TeamID != 0 {
			teamOf[e.AthleteID] = e.TeamID
		} else if _, ok := teamOf[e.AthleteID]; !ok {
			teamOf[e.AthleteID] = 0
		}
	}

	for id, team := range teamOf {
		res.Scores[id] = ratio(res.AthleteGames[id], res.TeamGames[team])
	}
	for id := range res.AthleteGames {
		if _, ok := res.Scores[id]; !ok {
			res.Scores[id] = 0
		}
	}
	return res
}

// ratio is athlete games over team games, clamped to [0, 1].
func ratio(athlete, team int) float64 {
	if athlete == 0 || team == 0 {
		return 0
	}
	return min(1, float64(athlete)/float64(team))
}
