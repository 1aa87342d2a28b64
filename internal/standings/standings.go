package standings

import (
	"sort"

	"github.com/derekprior/turnier/internal/topology"
	"github.com/derekprior/turnier/internal/tournament"
)

// Standing is one team's record within its group.
type Standing struct {
	Team         string `yaml:"team"`
	Group        string `yaml:"group,omitempty"`
	Played       int    `yaml:"played"`
	Won          int    `yaml:"won"`
	Drawn        int    `yaml:"drawn"`
	Lost         int    `yaml:"lost"`
	GoalsFor     int    `yaml:"goals_for"`
	GoalsAgainst int    `yaml:"goals_against"`
	Points       int    `yaml:"points"`
}

func (s Standing) GoalDifference() int { return s.GoalsFor - s.GoalsAgainst }

// Table is the ranked standings of one group. Group "" is the single pool.
type Table struct {
	Group string
	Rows  []Standing
}

// Tables holds one table per group, in group order.
type Tables []Table

// Group returns the ranked rows of a group.
func (ts Tables) Group(name string) ([]Standing, bool) {
	for _, t := range ts {
		if t.Group == name {
			return t.Rows, true
		}
	}
	return nil, false
}

// GroupOf returns the group a team is ranked in.
func (ts Tables) GroupOf(team string) (string, bool) {
	for _, t := range ts {
		for _, r := range t.Rows {
			if r.Team == team {
				return t.Group, true
			}
		}
	}
	return "", false
}

// Less orders standings: points, goal difference, goals scored, then
// team name ascending so fully tied records always rank the same way.
func Less(a, b Standing) bool {
	if a.Points != b.Points {
		return a.Points > b.Points
	}
	if a.GoalDifference() != b.GoalDifference() {
		return a.GoalDifference() > b.GoalDifference()
	}
	if a.GoalsFor != b.GoalsFor {
		return a.GoalsFor > b.GoalsFor
	}
	return a.Team < b.Team
}

// Sort ranks rows in place.
func Sort(rows []Standing) {
	sort.SliceStable(rows, func(i, j int) bool { return Less(rows[i], rows[j]) })
}

// Compute derives standings from scratch from the completed group fixtures.
// Grouping follows the topology for the team count: one table per group for
// 8 and 9 teams, a single table for 10. Any other count gets one table over
// all teams. Neither argument is modified.
func Compute(matches tournament.List, teams []string) Tables {
	tables := partition(teams)

	index := make(map[string]*Standing)
	for ti := range tables {
		for ri := range tables[ti].Rows {
			r := &tables[ti].Rows[ri]
			index[r.Team] = r
		}
	}

	for _, m := range matches {
		if m.Phase != tournament.PhaseGroup || m.Status != tournament.StatusCompleted || !m.Decided() {
			continue
		}
		home, away := index[m.Home.Team], index[m.Away.Team]
		if home == nil || away == nil || home.Group != away.Group {
			continue
		}
		record(home, away, *m.Score1, *m.Score2)
	}

	for i := range tables {
		Sort(tables[i].Rows)
	}
	return tables
}

func record(home, away *Standing, goalsHome, goalsAway int) {
	home.Played++
	away.Played++
	home.GoalsFor += goalsHome
	home.GoalsAgainst += goalsAway
	away.GoalsFor += goalsAway
	away.GoalsAgainst += goalsHome

	switch {
	case goalsHome > goalsAway:
		home.Won++
		home.Points += 3
		away.Lost++
	case goalsHome < goalsAway:
		away.Won++
		away.Points += 3
		home.Lost++
	default:
		home.Drawn++
		away.Drawn++
		home.Points++
		away.Points++
	}
}

func partition(teams []string) Tables {
	topo, err := topology.Lookup(len(teams), "")
	if err != nil {
		rows := make([]Standing, 0, len(teams))
		for _, team := range teams {
			rows = append(rows, Standing{Team: team})
		}
		return Tables{{Rows: rows}}
	}

	tables := make(Tables, 0, len(topo.Groups))
	for _, g := range topo.Groups {
		rows := make([]Standing, 0, len(g.Teams))
		for _, i := range g.Teams {
			rows = append(rows, Standing{Team: teams[i], Group: g.Name})
		}
		tables = append(tables, Table{Group: g.Name, Rows: rows})
	}
	return tables
}
