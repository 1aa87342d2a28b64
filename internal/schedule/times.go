package schedule

import (
	"fmt"
	"time"

	"github.com/derekprior/turnier/internal/tournament"
)

// clockLayout is the wall-clock format used for start and end times.
const clockLayout = "15:04"

// ParseClock parses an "HH:MM" wall-clock time.
func ParseClock(s string) (time.Time, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t, nil
}

// Recalculate assigns start and end times by walking the list in order.
//
// Without an anchor the walk starts at cfg.Start. With an anchor, entries
// before it keep their times, the anchor keeps its own start time and
// everything after it is pushed along. An anchor that is not in the list
// falls back to a full recompute. Times are wall-clock times of a single
// day; a list that would run past midnight is an error.
func Recalculate(matches tournament.List, cfg tournament.ScheduleConfig, anchorID string) (tournament.List, error) {
	from, start, err := walkStart(matches, cfg, anchorID)
	if err != nil {
		return matches, err
	}

	out := matches.Clone()
	matchLen := time.Duration(cfg.MatchMinutes) * time.Minute
	gap := time.Duration(cfg.BreakMinutes) * time.Minute

	current := start
	for i := from; i < len(out); i++ {
		m := &out[i]
		m.StartTime = current.Format(clockLayout)

		if m.IsBreak() {
			current = current.Add(breakLength(m, cfg))
		} else {
			current = current.Add(matchLen)
		}
		if current.YearDay() != start.YearDay() {
			return matches, fmt.Errorf("%s would end after midnight", m.ID)
		}
		m.EndTime = current.Format(clockLayout)

		// No configured gap before an explicit break or after the last entry.
		if m.IsBreak() || i == len(out)-1 || out[i+1].IsBreak() {
			continue
		}
		current = current.Add(gap)
	}

	return out, nil
}

// walkStart returns where a recompute begins: the anchor with its own start
// time, or the first entry at cfg.Start.
func walkStart(matches tournament.List, cfg tournament.ScheduleConfig, anchorID string) (int, time.Time, error) {
	if idx := matches.Index(anchorID); anchorID != "" && idx >= 0 {
		start, err := ParseClock(matches[idx].StartTime)
		if err != nil {
			return 0, time.Time{}, fmt.Errorf("anchor %s: %w", anchorID, err)
		}
		return idx, start, nil
	}
	start, err := ParseClock(cfg.Start)
	if err != nil {
		return 0, time.Time{}, fmt.Errorf("tournament start: %w", err)
	}
	return 0, start, nil
}

func breakLength(m *tournament.Match, cfg tournament.ScheduleConfig) time.Duration {
	minutes := m.PauseMinutes
	if minutes <= 0 {
		minutes = cfg.BreakMinutes
	}
	return time.Duration(minutes) * time.Minute
}

// Reschedule applies a manual start time to one entry and pushes every later
// entry back (or forward) accordingly. A positive pauseMinutes also changes
// the length of a break entry.
func Reschedule(matches tournament.List, cfg tournament.ScheduleConfig, id, startTime string, pauseMinutes int) (tournament.List, error) {
	idx := matches.Index(id)
	if idx < 0 {
		return matches, fmt.Errorf("rescheduling %s: %w", id, tournament.ErrMatchNotFound)
	}
	if _, err := ParseClock(startTime); err != nil {
		return matches, err
	}
	if pauseMinutes > 0 && !matches[idx].IsBreak() {
		return matches, fmt.Errorf("match %s is not a break; only breaks take a duration", id)
	}

	edited := matches.Clone()
	edited[idx].StartTime = startTime
	if pauseMinutes > 0 {
		edited[idx].PauseMinutes = pauseMinutes
	}
	return Recalculate(edited, cfg, id)
}
