// Package topology holds the static bracket layouts for every supported
// participant count. Adding a format is a change to the table below.
package topology

import (
	"fmt"

	"github.com/derekprior/turnier/internal/tournament"
)

// Break lengths that do not follow the configured break duration.
const (
	GroupStageBreak = 20
	SemifinalBreak  = 10
)

// Pair is a fixture between two team indices within a group.
type Pair [2]int

// Group is a slice of the team list that plays a round robin.
type Group struct {
	Name   string // "" for the single pool of the 10-team format
	Teams  []int  // indices into the team list
	Rounds [][]Pair
}

// Entry is one knockout skeleton line: a match or a break.
type Entry struct {
	ID    string
	Round string
	Home  tournament.Ref
	Away  tournament.Ref
	Break int // minutes; non-zero marks a break entry
}

func (e Entry) IsBreak() bool { return e.Break > 0 }

// Topology describes one tournament format.
type Topology struct {
	Teams    int
	Mode     tournament.KOMode
	Groups   []Group
	Knockout []Entry
}

// Fixtures returns the group fixtures in presentation order: round r of
// every group before round r+1 of any group.
func (tp *Topology) Fixtures() []Fixture {
	var out []Fixture
	for r := 0; ; r++ {
		found := false
		for _, g := range tp.Groups {
			if r >= len(g.Rounds) {
				continue
			}
			found = true
			for _, p := range g.Rounds[r] {
				out = append(out, Fixture{
					Group: g.Name,
					Home:  g.Teams[p[0]],
					Away:  g.Teams[p[1]],
				})
			}
		}
		if !found {
			return out
		}
	}
}

// Fixture is a concrete group pairing by team index.
type Fixture struct {
	Group string
	Home  int
	Away  int
}

type key struct {
	teams int
	mode  tournament.KOMode
}

// Lookup returns the topology for a team count and KO mode. The mode only
// matters for 8 teams; an empty mode there means quarterfinals.
func Lookup(teams int, mode tournament.KOMode) (*Topology, error) {
	if teams != 8 {
		mode = ""
	} else if mode == "" {
		mode = tournament.ModeQuarterfinal
	}
	tp, ok := table[key{teams, mode}]
	if !ok {
		return nil, fmt.Errorf("%d teams with ko mode %q: %w", teams, mode, tournament.ErrUnsupportedParticipantCount)
	}
	return tp, nil
}

// Supported reports whether a topology exists for the team count.
func Supported(teams int) bool {
	_, err := Lookup(teams, "")
	return err == nil
}

func span(from, n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = from + i
	}
	return idx
}

// threeTeamRounds: every pair once, one fixture per round.
var threeTeamRounds = [][]Pair{{{0, 1}}, {{0, 2}}, {{1, 2}}}

// fourTeamRounds plays the cross pairings first, then the straight ones,
// so no team appears twice within a matchday.
var fourTeamRounds = [][]Pair{
	{{0, 3}, {1, 2}},
	{{0, 2}, {3, 1}},
	{{0, 1}, {2, 3}},
}

// poolRounds is the 10-team partial round robin: two disjoint perfect
// matchings, so every team plays exactly twice and no pair repeats.
var poolRounds = [][]Pair{
	{{0, 1}, {2, 3}, {4, 5}, {6, 7}, {8, 9}},
	{{0, 2}, {1, 3}, {4, 6}, {5, 8}, {7, 9}},
}

func brk(id string, minutes int) Entry {
	return Entry{ID: id, Round: fmt.Sprintf("%d Minute Break", minutes), Break: minutes}
}

func final() Entry {
	return Entry{ID: "F1", Round: "Final", Home: tournament.WinnerOf("HF1"), Away: tournament.WinnerOf("HF2")}
}

var table = map[key]*Topology{
	{10, ""}: {
		Teams:  10,
		Groups: []Group{{Name: "", Teams: span(0, 10), Rounds: poolRounds}},
		Knockout: []Entry{
			brk("pause1", GroupStageBreak),
			{ID: "AF1", Round: "Eighthfinal 1", Home: tournament.RankOf("", 7), Away: tournament.RankOf("", 10)},
			{ID: "AF2", Round: "Eighthfinal 2", Home: tournament.RankOf("", 8), Away: tournament.RankOf("", 9)},
			{ID: "VF1", Round: "Quarterfinal 1", Home: tournament.RankOf("", 3), Away: tournament.RankOf("", 6)},
			{ID: "VF2", Round: "Quarterfinal 2", Home: tournament.RankOf("", 4), Away: tournament.RankOf("", 5)},
			{ID: "VF3", Round: "Quarterfinal 3", Home: tournament.RankOf("", 2), Away: tournament.WinnerOf("AF1")},
			{ID: "VF4", Round: "Quarterfinal 4", Home: tournament.RankOf("", 1), Away: tournament.WinnerOf("AF2")},
			brk("pause2", SemifinalBreak),
			{ID: "HF1", Round: "Semifinal 1", Home: tournament.WinnerOf("VF3"), Away: tournament.WinnerOf("VF1")},
			{ID: "HF2", Round: "Semifinal 2", Home: tournament.WinnerOf("VF4"), Away: tournament.WinnerOf("VF2")},
			brk("pause3", SemifinalBreak),
			final(),
		},
	},
	{9, ""}: {
		Teams: 9,
		Groups: []Group{
			{Name: "A", Teams: span(0, 3), Rounds: threeTeamRounds},
			{Name: "B", Teams: span(3, 3), Rounds: threeTeamRounds},
			{Name: "C", Teams: span(6, 3), Rounds: threeTeamRounds},
		},
		Knockout: []Entry{
			brk("pause1", GroupStageBreak),
			{ID: "HF1", Round: "Semifinal 1", Home: tournament.PooledRank(1, 1), Away: tournament.PooledRank(2, 1)},
			{ID: "HF2", Round: "Semifinal 2", Home: tournament.PooledRank(1, 2), Away: tournament.PooledRank(1, 3)},
			brk("pause2", SemifinalBreak),
			final(),
		},
	},
	{8, tournament.ModeQuarterfinal}: {
		Teams: 8,
		Mode:  tournament.ModeQuarterfinal,
		Groups: []Group{
			{Name: "A", Teams: span(0, 4), Rounds: fourTeamRounds},
			{Name: "B", Teams: span(4, 4), Rounds: fourTeamRounds},
		},
		Knockout: []Entry{
			brk("pause1", GroupStageBreak),
			{ID: "VF1", Round: "Quarterfinal 1", Home: tournament.RankOf("A", 1), Away: tournament.RankOf("B", 4)},
			{ID: "VF2", Round: "Quarterfinal 2", Home: tournament.RankOf("B", 2), Away: tournament.RankOf("A", 3)},
			{ID: "VF3", Round: "Quarterfinal 3", Home: tournament.RankOf("B", 1), Away: tournament.RankOf("A", 4)},
			{ID: "VF4", Round: "Quarterfinal 4", Home: tournament.RankOf("A", 2), Away: tournament.RankOf("B", 3)},
			brk("pause2", SemifinalBreak),
			{ID: "HF1", Round: "Semifinal 1", Home: tournament.WinnerOf("VF1"), Away: tournament.WinnerOf("VF2")},
			{ID: "HF2", Round: "Semifinal 2", Home: tournament.WinnerOf("VF3"), Away: tournament.WinnerOf("VF4")},
			brk("pause3", SemifinalBreak),
			final(),
		},
	},
	{8, tournament.ModeSemifinal}: {
		Teams: 8,
		Mode:  tournament.ModeSemifinal,
		Groups: []Group{
			{Name: "A", Teams: span(0, 4), Rounds: fourTeamRounds},
			{Name: "B", Teams: span(4, 4), Rounds: fourTeamRounds},
		},
		Knockout: []Entry{
			brk("pause1", GroupStageBreak),
			{ID: "HF1", Round: "Semifinal 1", Home: tournament.RankOf("A", 1), Away: tournament.RankOf("B", 2)},
			{ID: "HF2", Round: "Semifinal 2", Home: tournament.RankOf("B", 1), Away: tournament.RankOf("A", 2)},
			brk("pause2", SemifinalBreak),
			final(),
		},
	},
}
