package standings

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/derekprior/turnier/internal/tournament"
)

func result(id, group, home, away string, s1, s2 int) tournament.Match {
	return tournament.Match{
		ID:     id,
		Phase:  tournament.PhaseGroup,
		Group:  group,
		Home:   tournament.Fixed(home),
		Away:   tournament.Fixed(away),
		Score1: tournament.Score(s1),
		Score2: tournament.Score(s2),
		Status: tournament.StatusCompleted,
	}
}

func names(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("T%d", i)
	}
	return out
}

func order(rows []Standing) []string {
	var out []string
	for _, r := range rows {
		out = append(out, r.Team)
	}
	return out
}

func TestComputePoints(t *testing.T) {
	teams := names(8)
	matches := tournament.List{
		result("v1", "A", "T0", "T3", 3, 1),
		result("v3", "A", "T1", "T2", 2, 2),
		result("v5", "A", "T0", "T2", 0, 1),
	}
	tables := Compute(matches, teams)

	rows, ok := tables.Group("A")
	if !ok {
		t.Fatal("group A missing")
	}
	byTeam := make(map[string]Standing)
	for _, r := range rows {
		byTeam[r.Team] = r
	}

	t.Run("win", func(t *testing.T) {
		s := byTeam["T2"]
		if s.Points != 4 || s.Won != 1 || s.Drawn != 1 || s.Played != 2 {
			t.Errorf("T2 = %+v, want 4 points from a win and a draw", s)
		}
	})

	t.Run("goals", func(t *testing.T) {
		s := byTeam["T0"]
		if s.GoalsFor != 3 || s.GoalsAgainst != 2 || s.GoalDifference() != 1 {
			t.Errorf("T0 = %+v, want 3:2", s)
		}
	})

	t.Run("ranking", func(t *testing.T) {
		want := []string{"T2", "T0", "T1", "T3"}
		if got := order(rows); !reflect.DeepEqual(got, want) {
			t.Errorf("order = %v, want %v", got, want)
		}
	})

	t.Run("group B untouched", func(t *testing.T) {
		b, _ := tables.Group("B")
		if len(b) != 4 {
			t.Fatalf("group B rows = %d, want 4", len(b))
		}
		for _, r := range b {
			if r.Played != 0 || r.Group != "B" {
				t.Errorf("B row = %+v", r)
			}
		}
	})
}

func TestComputeIgnoresIncomplete(t *testing.T) {
	teams := names(8)
	pending := result("v1", "A", "T0", "T3", 3, 1)
	pending.Status = tournament.StatusInProgress
	ko := result("VF1", "", "T0", "T4", 5, 0)
	ko.Phase = tournament.PhaseKnockout

	tables := Compute(tournament.List{pending, ko}, teams)
	for _, tb := range tables {
		for _, r := range tb.Rows {
			if r.Played != 0 {
				t.Errorf("%s played %d, want 0", r.Team, r.Played)
			}
		}
	}
}

func TestTieBreak(t *testing.T) {
	tests := []struct {
		name string
		rows []Standing
		want []string
	}{
		{
			name: "points first",
			rows: []Standing{{Team: "A", Points: 3}, {Team: "B", Points: 6}},
			want: []string{"B", "A"},
		},
		{
			name: "goal difference",
			rows: []Standing{{Team: "A", Points: 3, GoalsFor: 2, GoalsAgainst: 2}, {Team: "B", Points: 3, GoalsFor: 2, GoalsAgainst: 1}},
			want: []string{"B", "A"},
		},
		{
			name: "goals scored",
			rows: []Standing{{Team: "A", Points: 3, GoalsFor: 1}, {Team: "B", Points: 3, GoalsFor: 2, GoalsAgainst: 1}},
			want: []string{"B", "A"},
		},
		{
			name: "name",
			rows: []Standing{{Team: "Zebras", Points: 1}, {Team: "Ants", Points: 1}},
			want: []string{"Ants", "Zebras"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			Sort(tt.rows)
			if got := order(tt.rows); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("order = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputeDeterministic(t *testing.T) {
	teams := []string{"Rot", "Blau", "Gelb", "Grün", "Weiß", "Schwarz", "Lila", "Pink", "Grau", "Braun"}
	matches := tournament.List{
		result("v1", "", "Rot", "Blau", 1, 1),
		result("v2", "", "Gelb", "Grün", 1, 1),
	}

	first := Compute(matches, teams)
	for i := 0; i < 5; i++ {
		if again := Compute(matches, teams); !reflect.DeepEqual(again, first) {
			t.Fatalf("run %d differs: %v vs %v", i, again, first)
		}
	}

	if len(first) != 1 || first[0].Group != "" {
		t.Fatalf("10 teams should produce one pooled table, got %d", len(first))
	}
	want := []string{"Blau", "Gelb", "Grün", "Rot", "Braun", "Grau", "Lila", "Pink", "Schwarz", "Weiß"}
	if got := order(first[0].Rows); !reflect.DeepEqual(got, want) {
		t.Errorf("order = %v, want %v", got, want)
	}
}

func TestComputeUnsupported(t *testing.T) {
	tables := Compute(nil, names(5))
	if len(tables) != 1 || len(tables[0].Rows) != 5 {
		t.Errorf("tables = %+v, want one flat table of 5", tables)
	}
}

func TestComputeDoesNotModifyInput(t *testing.T) {
	teams := names(9)
	matches := tournament.List{result("v1", "A", "T0", "T1", 2, 0)}
	before := matches.Clone()
	teamsBefore := append([]string(nil), teams...)

	Compute(matches, teams)
	if !reflect.DeepEqual(matches, before) || !reflect.DeepEqual(teams, teamsBefore) {
		t.Error("Compute modified its input")
	}
}

func TestGroupOf(t *testing.T) {
	tables := Compute(nil, names(9))
	if g, ok := tables.GroupOf("T4"); !ok || g != "B" {
		t.Errorf("GroupOf(T4) = %q, %v, want B", g, ok)
	}
	if _, ok := tables.GroupOf("nobody"); ok {
		t.Error("GroupOf(nobody) found a group")
	}
}
