package excel

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/derekprior/turnier/internal/standings"
	"github.com/derekprior/turnier/internal/tournament"
)

// Sheet names used by the workbook.
const (
	ScheduleSheet  = "Schedule"
	StandingsSheet = "Standings"
)

// ScheduleHeaders are the columns of the schedule sheet, in order.
var ScheduleHeaders = []string{"Start", "End", "Match", "Round", "Home", "Score", "Away", "Status"}

// Generate creates an Excel workbook with the match list, the group tables
// and one sheet per team.
func Generate(title string, matches tournament.List, tables standings.Tables, teams []string) (*excelize.File, error) {
	f := excelize.NewFile()

	f.SetDefaultFont("Arial")
	f.SetDocProps(&excelize.DocProperties{Title: title, Creator: "turnier"})

	s := newStyles(f)
	if err := writeScheduleSheet(f, s, matches); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}
	if err := writeStandingsSheet(f, s, tables); err != nil {
		return nil, fmt.Errorf("writing standings sheet: %w", err)
	}
	if err := writeTeamSheets(f, s, matches, teams); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	f.DeleteSheet("Sheet1")
	if idx, err := f.GetSheetIndex(ScheduleSheet); err == nil {
		f.SetActiveSheet(idx)
	}
	return f, nil
}

type styles struct {
	header int
	cell   int
	center int
	pause  int
	title  int
}

func newStyles(f *excelize.File) styles {
	var s styles
	s.header, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 14, Family: "Arial"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#4472C4"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.cell, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 14, Family: "Arial"},
	})
	s.center, _ = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 14, Family: "Arial"},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	s.pause, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Italic: true, Size: 14, Family: "Arial", Color: "#595959"},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9D9D9"}},
	})
	s.title, _ = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 14, Family: "Arial"},
	})
	return s
}

func writeHeaders(f *excelize.File, sheet string, row int, headers []string, style int) {
	for i, h := range headers {
		f.SetCellValue(sheet, cellRef(i+1, row), h)
	}
	if style != 0 {
		f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), style)
	}
}

// ScoreText renders a result as "2:1", or "" while either score is missing.
func ScoreText(m *tournament.Match) string {
	if !m.Decided() {
		return ""
	}
	return fmt.Sprintf("%d:%d", *m.Score1, *m.Score2)
}

func writeScheduleSheet(f *excelize.File, s styles, matches tournament.List) error {
	sheet := ScheduleSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}
	writeHeaders(f, sheet, 1, ScheduleHeaders, s.header)

	for i := range matches {
		m := &matches[i]
		row := i + 2
		f.SetCellValue(sheet, cellRef(1, row), m.StartTime)
		f.SetCellValue(sheet, cellRef(2, row), m.EndTime)
		f.SetCellValue(sheet, cellRef(3, row), m.ID)
		f.SetCellValue(sheet, cellRef(4, row), m.Round)
		f.SetCellValue(sheet, cellRef(8, row), string(m.Status))

		if m.IsBreak() {
			if s.pause != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(ScheduleHeaders), row), s.pause)
			}
			continue
		}

		f.SetCellValue(sheet, cellRef(5, row), m.Home.Label())
		f.SetCellValue(sheet, cellRef(6, row), ScoreText(m))
		f.SetCellValue(sheet, cellRef(7, row), m.Away.Label())
		if s.cell != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(ScheduleHeaders), row), s.cell)
			f.SetCellStyle(sheet, cellRef(6, row), cellRef(6, row), s.center)
		}
	}

	// Sized for Arial 14.
	widths := map[string]float64{"A": 9, "B": 9, "C": 9, "D": 20, "E": 26, "F": 9, "G": 26, "H": 22}
	for col, w := range widths {
		f.SetColWidth(sheet, col, col, w)
	}
	f.SetPanes(sheet, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	// Completed matches get a light green row.
	if len(matches) > 0 {
		lastRow := len(matches) + 1
		green, _ := f.NewConditionalStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#C6EFCE"}},
		})
		f.SetConditionalFormat(sheet, fmt.Sprintf("A2:H%d", lastRow), []excelize.ConditionalFormatOptions{
			{
				Type:     "formula",
				Criteria: fmt.Sprintf(`$H2="%s"`, tournament.StatusCompleted),
				Format:   &green,
			},
		})
	}
	return nil
}

// StandingsHeaders are the columns of every table on the standings sheet.
var StandingsHeaders = []string{"Rank", "Team", "Played", "Won", "Drawn", "Lost", "Goals", "Diff", "Points"}

func writeStandingsSheet(f *excelize.File, s styles, tables standings.Tables) error {
	sheet := StandingsSheet
	if _, err := f.NewSheet(sheet); err != nil {
		return err
	}

	row := 1
	for _, t := range tables {
		label := "Group " + t.Group
		if t.Group == "" {
			label = "Table"
		}
		f.SetCellValue(sheet, cellRef(1, row), label)
		if s.title != 0 {
			f.SetCellStyle(sheet, cellRef(1, row), cellRef(1, row), s.title)
		}
		row++
		writeHeaders(f, sheet, row, StandingsHeaders, s.header)
		row++

		for i, r := range t.Rows {
			values := []any{
				i + 1, r.Team, r.Played, r.Won, r.Drawn, r.Lost,
				fmt.Sprintf("%d:%d", r.GoalsFor, r.GoalsAgainst), r.GoalDifference(), r.Points,
			}
			for col, v := range values {
				f.SetCellValue(sheet, cellRef(col+1, row), v)
			}
			if s.center != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(values), row), s.center)
				f.SetCellStyle(sheet, cellRef(2, row), cellRef(2, row), s.cell)
			}
			row++
		}
		row++
	}

	f.SetColWidth(sheet, "A", "A", 10)
	f.SetColWidth(sheet, "B", "B", 26)
	f.SetColWidth(sheet, "C", "I", 10)
	return nil
}

// TeamHeaders are the columns of each team sheet.
var TeamHeaders = []string{"Start", "Match", "Round", "Opponent", "Home/Away", "Score", "Status"}

func writeTeamSheets(f *excelize.File, s styles, matches tournament.List, teams []string) error {
	used := map[string]bool{"sheet1": true, strings.ToLower(ScheduleSheet): true, strings.ToLower(StandingsSheet): true}
	for _, team := range teams {
		sheet := uniqueSheetName(SheetName(team), used)
		if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("sheet for %s: %w", team, err)
		}
		writeHeaders(f, sheet, 1, TeamHeaders, s.header)

		row := 2
		for i := range matches {
			m := &matches[i]
			if !m.Involves(team) {
				continue
			}
			opponent, side, score := m.Away.Label(), "Home", ScoreText(m)
			if m.Away.Team == team {
				opponent, side = m.Home.Label(), "Away"
				if m.Decided() {
					score = fmt.Sprintf("%d:%d", *m.Score2, *m.Score1)
				}
			}
			values := []string{m.StartTime, m.ID, m.Round, opponent, side, score, string(m.Status)}
			for col, v := range values {
				f.SetCellValue(sheet, cellRef(col+1, row), v)
			}
			if s.cell != 0 {
				f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(values), row), s.cell)
			}
			row++
		}

		widths := map[string]float64{"A": 9, "B": 9, "C": 20, "D": 26, "E": 14, "F": 9, "G": 22}
		for col, w := range widths {
			f.SetColWidth(sheet, col, col, w)
		}
	}
	return nil
}

// SheetName makes a team name usable as a worksheet name: at most 31
// characters, none of []:*?/\ and no leading or trailing apostrophe.
func SheetName(name string) string {
	clean := strings.Map(func(r rune) rune {
		if strings.ContainsRune(`[]:*?/\`, r) {
			return '_'
		}
		return r
	}, name)
	clean = strings.Trim(clean, "'")
	if r := []rune(clean); len(r) > 31 {
		clean = string(r[:31])
	}
	if strings.TrimSpace(clean) == "" {
		clean = "Team"
	}
	return clean
}

// uniqueSheetName appends " (2)", " (3)", ... until the name is free.
// Sheet names compare case-insensitively.
func uniqueSheetName(name string, used map[string]bool) string {
	candidate := name
	for n := 2; used[strings.ToLower(candidate)]; n++ {
		suffix := fmt.Sprintf(" (%d)", n)
		r := []rune(name)
		if len(r)+len(suffix) > 31 {
			r = r[:31-len(suffix)]
		}
		candidate = string(r) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
