package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/derekprior/turnier/internal/bracket"
	"github.com/derekprior/turnier/internal/config"
	"github.com/derekprior/turnier/internal/excel"
	"github.com/derekprior/turnier/internal/schedule"
	"github.com/derekprior/turnier/internal/standings"
	"github.com/derekprior/turnier/internal/store"
	"github.com/derekprior/turnier/internal/tournament"
	"github.com/derekprior/turnier/internal/validator"
)

// app carries what every command needs once flags are parsed.
type app struct {
	statePath string
	log       *slog.Logger
}

func (a *app) load() (*store.State, error) {
	st, err := store.Load(a.statePath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("no tournament in progress at %s; run 'turnier schedule generate' first", a.statePath)
		}
		return nil, err
	}
	a.log.Debug("loaded state", "path", a.statePath, "teams", len(st.Teams), "matches", len(st.Matches))
	return st, nil
}

// persist writes the state file and, when workbook is set, the Excel
// export side by side.
func (a *app) persist(ctx context.Context, st *store.State, workbook string) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := store.Save(a.statePath, st); err != nil {
			return fmt.Errorf("saving state: %w", err)
		}
		a.log.Debug("saved state", "path", a.statePath)
		return nil
	})
	if workbook != "" {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return a.writeWorkbook(st, workbook)
		})
	}
	return g.Wait()
}

func (a *app) writeWorkbook(st *store.State, path string) error {
	tables := standings.Compute(st.Matches, st.Teams)
	f, err := excel.Generate(st.Name, st.Matches, tables, st.Teams)
	if err != nil {
		return fmt.Errorf("generating Excel: %w", err)
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving file: %w", err)
	}
	a.log.Debug("wrote workbook", "path", path)
	return nil
}

func runInit(outputPath string) error {
	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists; remove it first or use -o to write elsewhere", outputPath)
	}

	if err := os.WriteFile(outputPath, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	fmt.Printf("✓ Created %s\n", outputPath)
	return nil
}

const configTemplate = `# Tournament Configuration
# ========================
# This file defines a one-day tournament: who plays and how long things take.

tournament:
  name: "Hallenturnier"
  date: "2026-11-14"

# 8, 9 or 10 teams. Names must be unique. The order matters: groups are
# filled in list order (8 teams: 4 + 4, 9 teams: 3 + 3 + 3; 10 teams play
# in a single pool).
teams:
  - Ajax
  - Benfica
  - Celtic
  - Dynamo
  - Eintracht
  - Fortuna
  - Galatasaray
  - Hertha

schedule:
  match_duration_minutes: 8      # Length of every match
  break_duration_minutes: 4      # Changeover between consecutive matches
  start_time: "14:00"            # First kickoff, 24-hour format

  # 8 teams only. "quarterfinal" sends all eight teams into the knockout
  # rounds; "semifinal" sends the top two of each group straight into the
  # semifinals.
  ko_mode: quarterfinal
`

func (a *app) runGenerate(ctx context.Context, configPath, workbook string, fresh bool) error {
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	a.log.Debug("loaded config", "path", configPath, "teams", len(cfg.Teams), "ko_mode", cfg.Schedule.KOMode)

	var matches tournament.List
	prev, loadErr := store.Load(a.statePath)
	if loadErr == nil && !fresh {
		if !slices.Equal(prev.Teams, cfg.Teams) {
			fmt.Fprintf(os.Stderr, "⚠ %s lists different teams than %s; results of changed pairings are dropped\n", configPath, a.statePath)
		}
		matches, err = schedule.Regenerate(prev.Matches, cfg.Teams, cfg.Schedule)
	} else {
		if loadErr != nil && !errors.Is(loadErr, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "⚠ ignoring unreadable state: %s\n", loadErr)
		}
		matches, err = schedule.Generate(cfg.Teams, cfg.Schedule)
	}
	if err != nil {
		return fmt.Errorf("generating schedule: %w", err)
	}

	matches, err = schedule.Recalculate(matches, cfg.Schedule, "")
	if err != nil {
		return fmt.Errorf("assigning times: %w", err)
	}

	group, knockout, breaks, results := 0, 0, 0, 0
	for _, m := range matches {
		switch m.Phase {
		case tournament.PhaseGroup:
			group++
		case tournament.PhaseKnockout:
			knockout++
		case tournament.PhaseBreak:
			breaks++
		}
		if m.Status == tournament.StatusCompleted {
			results++
		}
	}
	fmt.Printf("✓ %d group matches, %d knockout matches, %d breaks for %d teams\n", group, knockout, breaks, len(cfg.Teams))
	if len(matches) > 0 {
		fmt.Printf("  %s to %s\n", matches[0].StartTime, matches[len(matches)-1].EndTime)
	}
	if results > 0 {
		fmt.Printf("✓ Kept %d recorded results\n", results)
	}

	st := store.New(cfg, matches)
	if err := a.persist(ctx, st, workbook); err != nil {
		return err
	}
	fmt.Printf("\n✓ Tournament saved to %s\n", a.statePath)
	if workbook != "" {
		fmt.Printf("✓ Schedule saved to %s\n", workbook)
	}
	return nil
}

func (a *app) runValidate(workbook string) error {
	st, err := a.load()
	if err != nil {
		return err
	}

	var violations []validator.Violation
	if workbook != "" {
		violations, err = validator.ValidateWorkbook(workbook, st.Teams)
		if err != nil {
			return fmt.Errorf("validating: %w", err)
		}
	} else {
		violations = validator.Validate(st.Matches, st.Teams)
	}

	errs := 0
	warnings := 0
	for _, v := range violations {
		where := ""
		if v.Row > 0 {
			where = fmt.Sprintf("row %d: ", v.Row)
		}
		switch v.Type {
		case "error":
			errs++
			fmt.Printf("✗ %s%s\n", where, v.Message)
		case "warning":
			warnings++
			fmt.Printf("⚠ %s%s\n", where, v.Message)
		}
	}

	fmt.Printf("\nValidation complete: %d errors, %d warnings\n", errs, warnings)
	if errs > 0 {
		return fmt.Errorf("%d consistency errors found", errs)
	}
	return nil
}

func (a *app) runRetime(ctx context.Context, id, start string, pause int) error {
	st, err := a.load()
	if err != nil {
		return err
	}

	if id == "" {
		if pause > 0 {
			return fmt.Errorf("--pause needs a break id and start time")
		}
		st.Matches, err = schedule.Recalculate(st.Matches, st.Config, "")
	} else {
		st.Matches, err = schedule.Reschedule(st.Matches, st.Config, id, start, pause)
	}
	if err != nil {
		return err
	}

	if err := a.persist(ctx, st, ""); err != nil {
		return err
	}
	if id != "" {
		m, _ := st.Matches.Find(id)
		fmt.Printf("✓ %s now %s-%s\n", id, m.StartTime, m.EndTime)
	}
	if n := len(st.Matches); n > 0 {
		fmt.Printf("✓ Last entry ends at %s\n", st.Matches[n-1].EndTime)
	}
	return nil
}

func (a *app) runResult(ctx context.Context, id string, home, away *int) error {
	return a.recordResult(ctx, id, func(l tournament.List) (tournament.List, error) {
		return tournament.SetScore(l, id, home, away)
	})
}

// runSideResult records the goals of one or both sides and keeps whatever
// the other side already has.
func (a *app) runSideResult(ctx context.Context, id string, home, away *int) error {
	return a.recordResult(ctx, id, func(l tournament.List) (tournament.List, error) {
		var err error
		if home != nil {
			if l, err = tournament.SetSideScore(l, id, tournament.SideHome, home); err != nil {
				return l, err
			}
		}
		if away != nil {
			l, err = tournament.SetSideScore(l, id, tournament.SideAway, away)
		}
		return l, err
	})
}

func (a *app) recordResult(ctx context.Context, id string, update func(tournament.List) (tournament.List, error)) error {
	st, err := a.load()
	if err != nil {
		return err
	}

	before := st.Matches
	updated, err := update(st.Matches)
	if err != nil {
		return err
	}
	updated, _ = bracket.Update(updated, st.Teams)
	st.Matches = updated

	m, _ := st.Matches.Find(id)
	switch {
	case m.Decided():
		fmt.Printf("✓ %s: %s %d:%d %s\n", id, m.Home.Label(), *m.Score1, *m.Score2, m.Away.Label())
	case m.Score1 == nil && m.Score2 == nil:
		fmt.Printf("✓ Cleared %s\n", id)
	default:
		fmt.Printf("✓ %s: score saved for one side; the match stays open until both are in\n", id)
	}
	a.log.Debug("recorded result", "match", id, "status", m.Status)
	for _, line := range bracketChanges(before, st.Matches) {
		fmt.Printf("  → %s\n", line)
	}

	return a.persist(ctx, st, "")
}

// bracketChanges describes knockout slots whose team changed.
func bracketChanges(before, after tournament.List) []string {
	var lines []string
	for _, m := range after {
		if m.Phase != tournament.PhaseKnockout {
			continue
		}
		old, ok := before.Find(m.ID)
		if !ok || (old.Home.Team == m.Home.Team && old.Away.Team == m.Away.Team) {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s: %s v %s", m.ID, m.Home.Label(), m.Away.Label()))
	}
	return lines
}

func (a *app) runKickoff(ctx context.Context, id string) error {
	st, err := a.load()
	if err != nil {
		return err
	}
	st.Matches, err = tournament.Kickoff(st.Matches, id)
	if err != nil {
		return err
	}
	m, _ := st.Matches.Find(id)
	fmt.Printf("✓ %s under way: %s v %s\n", id, m.Home.Label(), m.Away.Label())
	return a.persist(ctx, st, "")
}

func (a *app) runStandings() error {
	st, err := a.load()
	if err != nil {
		return err
	}

	for _, t := range standings.Compute(st.Matches, st.Teams) {
		if t.Group == "" {
			fmt.Println("\nTable:")
		} else {
			fmt.Printf("\nGroup %s:\n", t.Group)
		}
		fmt.Printf("  %-3s %-20s %3s %3s %3s %3s %7s %4s %4s\n", "#", "Team", "P", "W", "D", "L", "Goals", "Diff", "Pts")
		for i, r := range t.Rows {
			fmt.Printf("  %-3d %-20s %3d %3d %3d %3d %7s %+4d %4d\n",
				i+1, r.Team, r.Played, r.Won, r.Drawn, r.Lost,
				fmt.Sprintf("%d:%d", r.GoalsFor, r.GoalsAgainst), r.GoalDifference(), r.Points)
		}
	}
	return nil
}

func (a *app) runExport(path string) error {
	st, err := a.load()
	if err != nil {
		return err
	}
	if err := a.writeWorkbook(st, path); err != nil {
		return err
	}
	fmt.Printf("✓ Schedule saved to %s\n", path)
	return nil
}

// runRename renames a team in the saved tournament and, when configPath is
// set, in the config file so the next generate sees the same roster.
func (a *app) runRename(ctx context.Context, configPath, oldName, newName string) error {
	st, err := a.load()
	if err != nil {
		return err
	}

	idx := slices.Index(st.Teams, oldName)
	if idx < 0 {
		return fmt.Errorf("no team named %q", oldName)
	}
	if newName == "" || slices.Contains(st.Teams, newName) {
		return fmt.Errorf("%q is empty or already taken", newName)
	}

	if configPath != "" {
		if err := config.RenameTeam(configPath, oldName, newName); err != nil {
			return fmt.Errorf("updating config: %w", err)
		}
		a.log.Debug("renamed team in config", "path", configPath)
	}

	st.Teams[idx] = newName
	st.Matches = tournament.RenameTeam(st.Matches, oldName, newName)
	if err := a.persist(ctx, st, ""); err != nil {
		return err
	}
	fmt.Printf("✓ Renamed %s to %s\n", oldName, newName)
	if configPath == "" {
		fmt.Printf("⚠ No config file found; rename %s there before the next generate\n", oldName)
	}
	return nil
}
