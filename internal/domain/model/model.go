// Package model contains domain models passed between layers.
package model

import "time"

// AthleteID identifies an athlete in the provider feed.
type AthleteID int64

// TeamID identifies an NBA franchise in the provider feed.
type TeamID int64

// Stat names a per-game counting statistic carried by a box score.
type Stat int

// Counting stats in box-score order.
const (
	StatPTS Stat = iota
	StatREB
	StatAST
	StatSTL
	StatBLK
	StatTOV
	StatFGM
	StatFGA
	StatFTM
	StatFTA
	StatFG3M
	numStats
)

// NumStats is the number of counting stats tracked per game.
const NumStats = int(numStats)

var statNames = [NumStats]string{"PTS", "REB", "AST", "STL", "BLK", "TOV", "FGM", "FGA", "FTM", "FTA", "FG3M"}

func (s Stat) String() string {
	if s < 0 || int(s) >= NumStats {
		return "UNKNOWN"
	}
	return statNames[s]
}

// AllStats lists every stat in box-score order.
func AllStats() []Stat {
	out := make([]Stat, NumStats)
	for i := range out {
		out[i] = Stat(i)
	}
	return out
}

// StatLine holds one value per Stat.
type StatLine [NumStats]float64

// Get returns the value of s.
func (l StatLine) Get(s Stat) float64 { return l[s] }

// AthleteGameRow is one athlete's box score for one game.
type AthleteGameRow struct {
	AthleteID AthleteID
	GameID    string
	// TeamAbbr is the athlete's team for this game. Empty when the feed only
	// carries a matchup string; see TeamAbbreviation.
	TeamAbbr string
	Matchup  string // "LAL @ BOS" or "LAL vs. BOS"
	Date     time.Time
	Stats    StatLine
}

// AthleteProfile is the per-season mean of an athlete's box scores.
type AthleteProfile struct {
	AthleteID AthleteID
	Name      string
	TeamID    TeamID
	Games     int
	Mean      StatLine
}

// RosterEntry maps an athlete to a display name and a current team.
type RosterEntry struct {
	AthleteID AthleteID
	Name      string
	TeamID    TeamID
}

// ScheduleGame is one scheduled game between two franchises.
type ScheduleGame struct {
	Date    time.Time
	Home    string
	Visitor string
}
