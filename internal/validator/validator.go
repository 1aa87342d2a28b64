package validator

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/turnier/internal/excel"
	"github.com/derekprior/turnier/internal/schedule"
	"github.com/derekprior/turnier/internal/topology"
	"github.com/derekprior/turnier/internal/tournament"
)

// Violation represents a consistency problem found in a match list.
type Violation struct {
	Row     int // workbook row, 0 when validating a list directly
	Match   string
	Type    string // "error" or "warning"
	Message string
}

// Validate checks a match list against the tournament rules for teams.
func Validate(matches tournament.List, teams []string) []Violation {
	var violations []Violation

	// Hard rules
	violations = append(violations, checkUniqueIDs(matches)...)
	violations = append(violations, checkScores(matches)...)
	violations = append(violations, checkPhaseOrder(matches)...)
	violations = append(violations, checkFixtureCounts(matches, teams)...)
	violations = append(violations, checkKnockoutTeams(matches)...)
	violations = append(violations, checkTimes(matches)...)

	// Guidelines
	violations = append(violations, checkKnockoutDraws(matches)...)
	violations = append(violations, checkRematches(matches)...)

	sort.SliceStable(violations, func(i, j int) bool {
		return violations[i].Type == "error" && violations[j].Type != "error"
	})
	return violations
}

// ValidateWorkbook reads the schedule sheet of an exported workbook back
// into a match list and validates it. Violations carry the sheet row.
func ValidateWorkbook(path string, teams []string) ([]Violation, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	matches, rows, err := readSchedule(f)
	if err != nil {
		return nil, fmt.Errorf("reading schedule: %w", err)
	}

	violations := Validate(matches, teams)
	for i := range violations {
		if idx := matches.Index(violations[i].Match); idx >= 0 {
			violations[i].Row = rows[idx]
		}
	}
	return violations, nil
}

func readSchedule(f *excelize.File) (tournament.List, []int, error) {
	rows, err := f.GetRows(excel.ScheduleSheet)
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", excel.ScheduleSheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("%s is empty", excel.ScheduleSheet)
	}

	col := make(map[string]int)
	for i, h := range rows[0] {
		col[h] = i
	}
	for _, h := range excel.ScheduleHeaders {
		if _, ok := col[h]; !ok {
			return nil, nil, fmt.Errorf("%s is missing the %q column", excel.ScheduleSheet, h)
		}
	}
	get := func(row []string, name string) string {
		if i := col[name]; i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	var matches tournament.List
	var rowNumbers []int
	for i, row := range rows[1:] {
		id := get(row, "Match")
		if id == "" {
			continue
		}
		m := tournament.Match{
			ID:        id,
			Round:     get(row, "Round"),
			Status:    tournament.Status(get(row, "Status")),
			StartTime: get(row, "Start"),
			EndTime:   get(row, "End"),
		}
		switch {
		case m.Status == tournament.StatusBreak:
			m.Phase = tournament.PhaseBreak
		case strings.HasPrefix(m.Round, "Group"):
			m.Phase = tournament.PhaseGroup
			m.Group = strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(m.Round, "Group"), " Stage"))
		default:
			m.Phase = tournament.PhaseKnockout
		}
		if m.Phase != tournament.PhaseBreak {
			m.Home, m.Away = readSlot(m, get(row, "Home")), readSlot(m, get(row, "Away"))
			m.Score1, m.Score2 = parseScore(get(row, "Score"))
		}
		matches = append(matches, m)
		rowNumbers = append(rowNumbers, i+2)
	}
	return matches, rowNumbers, nil
}

// readSlot treats the cell as a team name unless the match is still
// waiting for its participants, in which case it is a placeholder label.
func readSlot(m tournament.Match, cell string) tournament.Slot {
	if m.Phase == tournament.PhaseKnockout && m.Status == tournament.StatusAwaiting {
		return tournament.Slot{}
	}
	return tournament.Fixed(cell)
}

// parseScore parses "3:1". Anything else counts as no result.
func parseScore(cell string) (*int, *int) {
	a, b, ok := strings.Cut(cell, ":")
	if !ok {
		return nil, nil
	}
	s1, err1 := strconv.Atoi(strings.TrimSpace(a))
	s2, err2 := strconv.Atoi(strings.TrimSpace(b))
	if err1 != nil || err2 != nil {
		return nil, nil
	}
	return &s1, &s2
}

func checkUniqueIDs(matches tournament.List) []Violation {
	seen := make(map[string]bool)
	var violations []Violation
	for _, m := range matches {
		if seen[m.ID] {
			violations = append(violations, Violation{
				Match:   m.ID,
				Type:    "error",
				Message: fmt.Sprintf("match id %s is used more than once", m.ID),
			})
		}
		seen[m.ID] = true
	}
	return violations
}

func checkScores(matches tournament.List) []Violation {
	var violations []Violation
	for _, m := range matches {
		switch {
		case m.IsBreak() && (m.Score1 != nil || m.Score2 != nil):
			violations = append(violations, Violation{
				Match: m.ID, Type: "error",
				Message: fmt.Sprintf("break %s has a score", m.ID),
			})
		case m.Status == tournament.StatusCompleted && !m.Decided():
			violations = append(violations, Violation{
				Match: m.ID, Type: "error",
				Message: fmt.Sprintf("%s is completed without a full score", m.ID),
			})
		case m.Decided() && m.Status != tournament.StatusCompleted:
			violations = append(violations, Violation{
				Match: m.ID, Type: "error",
				Message: fmt.Sprintf("%s has a score but is %s", m.ID, m.Status),
			})
		}
	}
	return violations
}

func checkPhaseOrder(matches tournament.List) []Violation {
	var violations []Violation
	knockoutStarted := false
	for _, m := range matches {
		if m.Phase != tournament.PhaseGroup {
			knockoutStarted = true
			continue
		}
		if knockoutStarted {
			violations = append(violations, Violation{
				Match: m.ID, Type: "error",
				Message: fmt.Sprintf("group match %s is scheduled after the knockout stage began", m.ID),
			})
		}
	}
	return violations
}

func checkFixtureCounts(matches tournament.List, teams []string) []Violation {
	topo, err := topology.Lookup(len(teams), "")
	if err != nil {
		return []Violation{{Type: "error", Message: err.Error()}}
	}
	expected := make(map[string]int)
	for _, f := range topo.Fixtures() {
		expected[teams[f.Home]]++
		expected[teams[f.Away]]++
	}

	played := make(map[string]int)
	var violations []Violation
	for _, m := range matches {
		if m.Phase != tournament.PhaseGroup {
			continue
		}
		for _, team := range []string{m.Home.Team, m.Away.Team} {
			if _, ok := expected[team]; !ok {
				violations = append(violations, Violation{
					Match: m.ID, Type: "error",
					Message: fmt.Sprintf("%s lists unknown team %q", m.ID, team),
				})
				continue
			}
			played[team]++
		}
	}

	for _, team := range teams {
		if played[team] != expected[team] {
			violations = append(violations, Violation{
				Type:    "error",
				Message: fmt.Sprintf("%s has %d group matches (want %d)", team, played[team], expected[team]),
			})
		}
	}
	return violations
}

// checkKnockoutTeams flags knockout matches that are being or have been
// played without both teams. A scheduled match may lose a team again when
// an upstream result is cleared, so it is not checked.
func checkKnockoutTeams(matches tournament.List) []Violation {
	var violations []Violation
	for _, m := range matches {
		if m.Phase != tournament.PhaseKnockout {
			continue
		}
		if m.Status != tournament.StatusInProgress && m.Status != tournament.StatusCompleted {
			continue
		}
		if !m.Ready() {
			violations = append(violations, Violation{
				Match: m.ID, Type: "error",
				Message: fmt.Sprintf("%s is %s but its participants are not known", m.ID, m.Status),
			})
		}
	}
	return violations
}

func checkTimes(matches tournament.List) []Violation {
	var violations []Violation
	prevEnd, prevID := "", ""
	for _, m := range matches {
		if m.StartTime == "" {
			continue
		}
		start, err := schedule.ParseClock(m.StartTime)
		if err != nil {
			violations = append(violations, Violation{Match: m.ID, Type: "error", Message: fmt.Sprintf("%s: %v", m.ID, err)})
			continue
		}
		if m.EndTime != "" {
			end, err := schedule.ParseClock(m.EndTime)
			if err != nil || !end.After(start) {
				violations = append(violations, Violation{
					Match: m.ID, Type: "error",
					Message: fmt.Sprintf("%s ends at %s, not after its start %s", m.ID, m.EndTime, m.StartTime),
				})
			}
		}
		if prevEnd != "" {
			if end, err := schedule.ParseClock(prevEnd); err == nil && start.Before(end) {
				violations = append(violations, Violation{
					Match: m.ID, Type: "error",
					Message: fmt.Sprintf("%s starts at %s before %s ends at %s", m.ID, m.StartTime, prevID, prevEnd),
				})
			}
		}
		prevEnd, prevID = m.EndTime, m.ID
	}
	return violations
}

func checkKnockoutDraws(matches tournament.List) []Violation {
	var violations []Violation
	for _, m := range matches {
		if m.Phase != tournament.PhaseKnockout || !m.Decided() || *m.Score1 != *m.Score2 {
			continue
		}
		violations = append(violations, Violation{
			Match: m.ID, Type: "warning",
			Message: fmt.Sprintf("%s ended %d:%d; %s advances as the away side", m.ID, *m.Score1, *m.Score2, m.Away.Label()),
		})
	}
	return violations
}

// checkRematches warns when a knockout match before the final repeats a
// group-stage pairing.
func checkRematches(matches tournament.List) []Violation {
	type pairing struct{ a, b string }
	key := func(x, y string) pairing {
		if x > y {
			x, y = y, x
		}
		return pairing{x, y}
	}

	met := make(map[pairing]string)
	for _, m := range matches {
		if m.Phase == tournament.PhaseGroup && m.Ready() {
			met[key(m.Home.Team, m.Away.Team)] = m.ID
		}
	}

	var violations []Violation
	for _, m := range matches {
		if m.Phase != tournament.PhaseKnockout || m.ID == "F1" || !m.Ready() {
			continue
		}
		if first, ok := met[key(m.Home.Team, m.Away.Team)]; ok {
			violations = append(violations, Violation{
				Match: m.ID, Type: "warning",
				Message: fmt.Sprintf("%s repeats group match %s (%s v %s)", m.ID, first, m.Home.Team, m.Away.Team),
			})
		}
	}
	return violations
}
