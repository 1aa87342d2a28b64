package validator

import (
	"fmt"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derekprior/turnier/internal/bracket"
	"github.com/derekprior/turnier/internal/excel"
	"github.com/derekprior/turnier/internal/schedule"
	"github.com/derekprior/turnier/internal/tournament"
)

func teamNames(n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("Team %d", i)
	}
	return names
}

// playedSchedule is an 8-team schedule with times, a finished group stage
// and seeded quarterfinals.
func playedSchedule(t *testing.T) (tournament.List, []string) {
	t.Helper()
	teams := teamNames(8)
	cfg := tournament.ScheduleConfig{MatchMinutes: 8, BreakMinutes: 4, Start: "14:00"}
	l, err := schedule.Generate(teams, cfg)
	if err != nil {
		t.Fatal(err)
	}
	if l, err = schedule.Recalculate(l, cfg, ""); err != nil {
		t.Fatal(err)
	}

	pos := make(map[string]int)
	for i, team := range teams {
		pos[team] = i
	}
	for _, m := range l {
		if m.Phase != tournament.PhaseGroup {
			continue
		}
		s1, s2 := 2, 1
		if pos[m.Home.Team] > pos[m.Away.Team] {
			s1, s2 = 1, 2
		}
		if l, err = tournament.SetScore(l, m.ID, tournament.Score(s1), tournament.Score(s2)); err != nil {
			t.Fatal(err)
		}
	}
	l, _ = bracket.Update(l, teams)
	return l, teams
}

func countType(violations []Violation, typ string) int {
	n := 0
	for _, v := range violations {
		if v.Type == typ {
			n++
		}
	}
	return n
}

func findViolation(violations []Violation, substr string) (Violation, bool) {
	for _, v := range violations {
		if strings.Contains(v.Message, substr) {
			return v, true
		}
	}
	return Violation{}, false
}

func TestValidateCleanSchedule(t *testing.T) {
	l, teams := playedSchedule(t)
	if violations := Validate(l, teams); len(violations) != 0 {
		t.Errorf("violations = %+v, want none", violations)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(l tournament.List) tournament.List
		typ    string
		want   string
	}{
		{
			name: "duplicate id",
			mutate: func(l tournament.List) tournament.List {
				l[1].ID = "v1"
				return l
			},
			typ: "error", want: "used more than once",
		},
		{
			name: "completed without score",
			mutate: func(l tournament.List) tournament.List {
				l[0].Score2 = nil
				return l
			},
			typ: "error", want: "without a full score",
		},
		{
			name: "score on open match",
			mutate: func(l tournament.List) tournament.List {
				l[0].Status = tournament.StatusScheduled
				return l
			},
			typ: "error", want: "has a score but is scheduled",
		},
		{
			name: "group match after knockout",
			mutate: func(l tournament.List) tournament.List {
				g := l[0]
				return append(l[1:], g)
			},
			typ: "error", want: "after the knockout stage began",
		},
		{
			name: "unknown team",
			mutate: func(l tournament.List) tournament.List {
				l[0].Home.Team = "Stranger"
				return l
			},
			typ: "error", want: `unknown team "Stranger"`,
		},
		{
			name: "knockout played without teams",
			mutate: func(l tournament.List) tournament.List {
				i := l.Index("HF1")
				l[i].Status = tournament.StatusInProgress
				return l
			},
			typ: "error", want: "participants are not known",
		},
		{
			name: "overlapping times",
			mutate: func(l tournament.List) tournament.List {
				l[1].StartTime = "14:05"
				return l
			},
			typ: "error", want: "before v1 ends",
		},
		{
			name: "knockout draw",
			mutate: func(l tournament.List) tournament.List {
				l, _ = tournament.SetScore(l, "VF1", tournament.Score(2), tournament.Score(2))
				return l
			},
			typ: "warning", want: "advances as the away side",
		},
		{
			name: "group rematch",
			mutate: func(l tournament.List) tournament.List {
				i := l.Index("VF1")
				l[i].Away.Team = "Team 1"
				return l
			},
			typ: "warning", want: "repeats group match",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, teams := playedSchedule(t)
			violations := Validate(tt.mutate(l.Clone()), teams)
			v, ok := findViolation(violations, tt.want)
			if !ok {
				t.Fatalf("no violation containing %q in %+v", tt.want, violations)
			}
			if v.Type != tt.typ {
				t.Errorf("type = %s, want %s", v.Type, tt.typ)
			}
		})
	}
}

func TestValidateErrorsFirst(t *testing.T) {
	l, teams := playedSchedule(t)
	l, _ = tournament.SetScore(l, "VF1", tournament.Score(0), tournament.Score(0))
	l[0].Score2 = nil

	violations := Validate(l, teams)
	if countType(violations, "error") == 0 || countType(violations, "warning") == 0 {
		t.Fatalf("violations = %+v, want errors and warnings", violations)
	}
	if violations[0].Type != "error" || violations[len(violations)-1].Type != "warning" {
		t.Errorf("violations not ordered errors first: %+v", violations)
	}
}

func TestValidateUnsupportedTeamCount(t *testing.T) {
	violations := Validate(nil, teamNames(4))
	if countType(violations, "error") != 1 {
		t.Errorf("violations = %+v, want one error", violations)
	}
}

func TestValidateWorkbook(t *testing.T) {
	l, teams := playedSchedule(t)
	f, err := excel.Generate("Test", l, nil, teams)
	if err != nil {
		t.Fatalf("excel.Generate: %v", err)
	}
	path := filepath.Join(t.TempDir(), "turnier.xlsx")

	t.Run("exported schedule is clean", func(t *testing.T) {
		if err := f.SaveAs(path); err != nil {
			t.Fatal(err)
		}
		violations, err := ValidateWorkbook(path, teams)
		if err != nil {
			t.Fatalf("ValidateWorkbook: %v", err)
		}
		if len(violations) != 0 {
			t.Errorf("violations = %+v, want none", violations)
		}
	})

	t.Run("edited cell is reported with its row", func(t *testing.T) {
		f.SetCellValue(excel.ScheduleSheet, "E3", "Stranger")
		if err := f.SaveAs(path); err != nil {
			t.Fatal(err)
		}
		violations, err := ValidateWorkbook(path, teams)
		if err != nil {
			t.Fatalf("ValidateWorkbook: %v", err)
		}
		v, ok := findViolation(violations, "Stranger")
		if !ok {
			t.Fatalf("no violation for the edited cell: %+v", violations)
		}
		if v.Row != 3 || v.Match != "v2" {
			t.Errorf("violation at row %d match %s, want row 3 match v2", v.Row, v.Match)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := ValidateWorkbook(filepath.Join(t.TempDir(), "nope.xlsx"), teams); err == nil {
			t.Error("expected error")
		}
	})
}

func TestParseScore(t *testing.T) {
	tests := []struct {
		in     string
		s1, s2 int
		ok     bool
	}{
		{"3:1", 3, 1, true},
		{" 0 : 0 ", 0, 0, true},
		{"", 0, 0, false},
		{"3-1", 0, 0, false},
		{"a:b", 0, 0, false},
	}
	for _, tt := range tests {
		s1, s2 := parseScore(tt.in)
		if (s1 != nil) != tt.ok {
			t.Errorf("parseScore(%q) ok = %v, want %v", tt.in, s1 != nil, tt.ok)
			continue
		}
		if tt.ok && (*s1 != tt.s1 || *s2 != tt.s2) {
			t.Errorf("parseScore(%q) = %d:%d, want %d:%d", tt.in, *s1, *s2, tt.s1, tt.s2)
		}
	}
}
