package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/derekprior/turnier/internal/store"
	"github.com/derekprior/turnier/internal/tournament"
)

func newTestApp(t *testing.T) (*app, string) {
	t.Helper()
	dir := t.TempDir()
	return &app{
		statePath: filepath.Join(dir, "state.yaml"),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
	}, dir
}

func loadState(t *testing.T, a *app) *store.State {
	t.Helper()
	st, err := store.Load(a.statePath)
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	return st
}

func TestRunInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "turnier.yaml")
	if err := runInit(path); err != nil {
		t.Fatalf("runInit: %v", err)
	}
	if err := runInit(path); err == nil || !strings.Contains(err.Error(), "already exists") {
		t.Errorf("second runInit err = %v, want already exists", err)
	}
}

func TestTournamentDay(t *testing.T) {
	a, dir := newTestApp(t)
	ctx := context.Background()
	configPath := filepath.Join(dir, "turnier.yaml")
	if err := runInit(configPath); err != nil {
		t.Fatal(err)
	}
	workbook := filepath.Join(dir, "turnier.xlsx")

	t.Run("generate", func(t *testing.T) {
		if err := a.runGenerate(ctx, configPath, workbook, false); err != nil {
			t.Fatalf("runGenerate: %v", err)
		}
		st := loadState(t, a)
		if st.Name != "Hallenturnier" || len(st.Teams) != 8 {
			t.Errorf("state = %q with %d teams", st.Name, len(st.Teams))
		}
		if st.Matches[0].StartTime != "14:00" || st.Matches[0].EndTime != "14:08" {
			t.Errorf("v1 = %s-%s, want 14:00-14:08", st.Matches[0].StartTime, st.Matches[0].EndTime)
		}
		if _, err := os.Stat(workbook); err != nil {
			t.Errorf("workbook not written: %v", err)
		}
	})

	t.Run("result", func(t *testing.T) {
		home, away := 2, 1
		if err := a.runResult(ctx, "v1", &home, &away); err != nil {
			t.Fatalf("runResult: %v", err)
		}
		m, _ := loadState(t, a).Matches.Find("v1")
		if m.Status != tournament.StatusCompleted {
			t.Errorf("v1 status = %s, want completed", m.Status)
		}
		if err := a.runResult(ctx, "nope", &home, &away); err == nil {
			t.Error("expected error for unknown match")
		}
	})

	t.Run("knockout result needs both teams", func(t *testing.T) {
		home, away := 1, 0
		err := a.runResult(ctx, "VF1", &home, &away)
		if !errors.Is(err, tournament.ErrParticipantsUnknown) {
			t.Fatalf("err = %v, want ErrParticipantsUnknown", err)
		}
		m, _ := loadState(t, a).Matches.Find("VF1")
		if m.Score1 != nil || m.Status != tournament.StatusAwaiting {
			t.Errorf("VF1 = %+v, want untouched", m)
		}
	})

	t.Run("one side at a time", func(t *testing.T) {
		home, away := 1, 1
		if err := a.runSideResult(ctx, "v3", &home, nil); err != nil {
			t.Fatalf("runSideResult: %v", err)
		}
		m, _ := loadState(t, a).Matches.Find("v3")
		if m.Status == tournament.StatusCompleted {
			t.Errorf("v3 completed with one score")
		}
		if err := a.runSideResult(ctx, "v3", nil, &away); err != nil {
			t.Fatalf("runSideResult: %v", err)
		}
		m, _ = loadState(t, a).Matches.Find("v3")
		if m.Status != tournament.StatusCompleted || *m.Score1 != 1 || *m.Score2 != 1 {
			t.Errorf("v3 = %+v, want completed 1:1", m)
		}
	})

	t.Run("regenerate keeps results", func(t *testing.T) {
		if err := a.runGenerate(ctx, configPath, "", false); err != nil {
			t.Fatalf("runGenerate: %v", err)
		}
		m, _ := loadState(t, a).Matches.Find("v1")
		if !m.Decided() {
			t.Error("v1 result lost on regenerate")
		}
	})

	t.Run("kickoff", func(t *testing.T) {
		if err := a.runKickoff(ctx, "v2"); err != nil {
			t.Fatalf("runKickoff: %v", err)
		}
		m, _ := loadState(t, a).Matches.Find("v2")
		if m.Status != tournament.StatusInProgress {
			t.Errorf("v2 status = %s, want in-progress", m.Status)
		}
	})

	t.Run("retime", func(t *testing.T) {
		if err := a.runRetime(ctx, "pause1", "17:00", 30); err != nil {
			t.Fatalf("runRetime: %v", err)
		}
		m, _ := loadState(t, a).Matches.Find("pause1")
		if m.StartTime != "17:00" || m.EndTime != "17:30" {
			t.Errorf("pause1 = %s-%s, want 17:00-17:30", m.StartTime, m.EndTime)
		}
		if err := a.runRetime(ctx, "", "", 5); err == nil {
			t.Error("expected error for --pause without a break")
		}
	})

	t.Run("rename", func(t *testing.T) {
		if err := a.runRename(ctx, configPath, "Ajax", "AFC Ajax"); err != nil {
			t.Fatalf("runRename: %v", err)
		}
		st := loadState(t, a)
		if st.Teams[0] != "AFC Ajax" {
			t.Errorf("teams[0] = %q", st.Teams[0])
		}
		m, _ := st.Matches.Find("v1")
		if m.Home.Team != "AFC Ajax" {
			t.Errorf("v1 home = %q", m.Home.Team)
		}
		if err := a.runRename(ctx, configPath, "Nobody", "X"); err == nil {
			t.Error("expected error for unknown team")
		}
		if err := a.runRename(ctx, configPath, "Benfica", "AFC Ajax"); err == nil {
			t.Error("expected error for taken name")
		}
	})

	t.Run("generate after rename keeps results", func(t *testing.T) {
		if err := a.runGenerate(ctx, configPath, "", false); err != nil {
			t.Fatalf("runGenerate: %v", err)
		}
		st := loadState(t, a)
		if st.Teams[0] != "AFC Ajax" {
			t.Errorf("teams[0] = %q, want AFC Ajax", st.Teams[0])
		}
		m, _ := st.Matches.Find("v1")
		if m.Home.Team != "AFC Ajax" || !m.Decided() {
			t.Errorf("v1 = %+v, want AFC Ajax with its result", m)
		}
	})

	t.Run("validate and export", func(t *testing.T) {
		if err := a.runValidate(""); err != nil {
			t.Errorf("runValidate: %v", err)
		}
		if err := a.runExport(workbook); err != nil {
			t.Fatalf("runExport: %v", err)
		}
		if err := a.runValidate(workbook); err != nil {
			t.Errorf("runValidate(workbook): %v", err)
		}
		if err := a.runStandings(); err != nil {
			t.Errorf("runStandings: %v", err)
		}
	})
}

func TestCommandsNeedState(t *testing.T) {
	a, _ := newTestApp(t)
	err := a.runStandings()
	if err == nil || !strings.Contains(err.Error(), "schedule generate") {
		t.Errorf("err = %v, want hint to generate first", err)
	}
}

func TestResolveStatePath(t *testing.T) {
	t.Setenv("TURNIER_STATE", "from-env.yaml")
	if got := resolveStatePath(""); got != "from-env.yaml" {
		t.Errorf("resolveStatePath() = %q, want from-env.yaml", got)
	}
	if got := resolveStatePath("flag.yaml"); got != "flag.yaml" {
		t.Errorf("resolveStatePath(flag) = %q, want flag.yaml", got)
	}
}

func TestParseGoals(t *testing.T) {
	if n, err := parseGoals("3"); err != nil || n != 3 {
		t.Errorf("parseGoals(3) = %d, %v", n, err)
	}
	for _, bad := range []string{"-1", "x", ""} {
		if _, err := parseGoals(bad); err == nil {
			t.Errorf("parseGoals(%q) expected error", bad)
		}
	}
}
