package model

import (
	"strings"
)

// Team is a franchise known to the provider.
type Team struct {
	ID   TeamID
	Abbr string
	Name string
}

// Teams resolves franchises by id, abbreviation, or full name.
type Teams struct {
	byID   map[TeamID]Team
	byAbbr map[string]Team
	byName map[string]Team
	all    []Team
}

// NewTeams builds a directory from the given franchises.
func NewTeams(teams []Team) *Teams {
	d := &Teams{
		byID:   make(map[TeamID]Team, len(teams)),
		byAbbr: make(map[string]Team, len(teams)),
		byName: make(map[string]Team, len(teams)),
		all:    append([]Team(nil), teams...),
	}
	for _, t := range teams {
		d.byID[t.ID] = t
		d.byAbbr[strings.ToUpper(t.Abbr)] = t
		d.byName[strings.ToLower(t.Name)] = t
	}
	return d
}

// ByID returns the team with the given id.
func (d *Teams) ByID(id TeamID) (Team, bool) {
	t, ok := d.byID[id]
	return t, ok
}

// ByAbbr returns the team with the given abbreviation (case-insensitive).
func (d *Teams) ByAbbr(abbr string) (Team, bool) {
	t, ok := d.byAbbr[strings.ToUpper(strings.TrimSpace(abbr))]
	return t, ok
}

// Resolve accepts a full name or an abbreviation, as schedules use either.
func (d *Teams) Resolve(nameOrAbbr string) (Team, bool) {
	key := strings.TrimSpace(nameOrAbbr)
	if t, ok := d.byName[strings.ToLower(key)]; ok {
		return t, true
	}
	return d.ByAbbr(key)
}

// All returns every team in declaration order.
func (d *Teams) All() []Team {
	return append([]Team(nil), d.all...)
}

// NBATeams returns the directory of the thirty NBA franchises.
func NBATeams() *Teams {
	return NewTeams([]Team{
		{ID: 1610612737, Abbr: "ATL", Name: "Atlanta Hawks"},
		{ID: 1610612738, Abbr: "BOS", Name: "Boston Celtics"},
		{ID: 1610612739, Abbr: "CLE", Name: "Cleveland Cavaliers"},
		{ID: 1610612740, Abbr: "NOP", Name: "New Orleans Pelicans"},
		{ID: 1610612741, Abbr: "CHI", Name: "Chicago Bulls"},
		{ID: 1610612742, Abbr: "DAL", Name: "Dallas Mavericks"},
		{ID: 1610612743, Abbr: "DEN", Name: "Denver Nuggets"},
		{ID: 1610612744, Abbr: "GSW", Name: "Golden State Warriors"},
		{ID: 1610612745, Abbr: "HOU", Name: "Houston Rockets"},
		{ID: 1610612746, Abbr: "LAC", Name: "Los Angeles Clippers"},
		{ID: 1610612747, Abbr: "LAL", Name: "Los Angeles Lakers"},
		{ID: 1610612748, Abbr: "MIA", Name: "Miami Heat"},
		{ID: 1610612749, Abbr: "MIL", Name: "Milwaukee Bucks"},
		{ID: 1610612750, Abbr: "MIN", Name: "Minnesota Timberwolves"},
		{ID: 1610612751, Abbr: "BKN", Name: "Brooklyn Nets"},
		{ID: 1610612752, Abbr: "NYK", Name: "New York Knicks"},
		{ID: 1610612753, Abbr: "ORL", Name: "Orlando Magic"},
		{ID: 1610612754, Abbr: "IND", Name: "Indiana Pacers"},
		{ID: 1610612755, Abbr: "PHI", Name: "Philadelphia 76ers"},
		{ID: 1610612756, Abbr: "PHX", Name: "Phoenix Suns"},
		{ID: 1610612757, Abbr: "POR", Name: "Portland Trail Blazers"},
		{ID: 1610612758, Abbr: "SAC", Name: "Sacramento Kings"},
		{ID: 1610612759, Abbr: "SAS", Name: "San Antonio Spurs"},
		{ID: 1610612760, Abbr: "OKC", Name: "Oklahoma City Thunder"},
		{ID: 1610612761, Abbr: "TOR", Name: "Toronto Raptors"},
		{ID: 1610612762, Abbr: "UTA", Name: "Utah Jazz"},
		{ID: 1610612763, Abbr: "MEM", Name: "Memphis Grizzlies"},
		{ID: 1610612764, Abbr: "WAS", Name: "Washington Wizards"},
		{ID: 1610612765, Abbr: "DET", Name: "Detroit Pistons"},
		{ID: 1610612766, Abbr: "CHA", Name: "Charlotte Hornets"},
	})
}

// TeamAbbreviation returns the row's team, falling back to the leading token
// of the matchup string ("LAL @ BOS", "LAL vs. BOS").
func (r AthleteGameRow) TeamAbbreviation() string {
	if abbr := strings.TrimSpace(r.TeamAbbr); abbr != "" {
		return strings.ToUpper(abbr)
	}
	fields := strings.Fields(r.Matchup)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(fields[0])
}
