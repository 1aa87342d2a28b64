package tournament

import (
	"errors"
	"fmt"

	"github.com/tiendc/go-deepcopy"
)

var (
	// ErrUnsupportedParticipantCount is returned when no topology exists for
	// the number of teams. Callers get an empty schedule alongside it.
	ErrUnsupportedParticipantCount = errors.New("unsupported participant count")

	// ErrMatchNotFound is returned when an operation names an id that is not
	// in the match list. The list is left unchanged.
	ErrMatchNotFound = errors.New("match not found")

	// ErrParticipantsUnknown is returned when a result is recorded for a
	// knockout match before both of its teams are known.
	ErrParticipantsUnknown = errors.New("participants are not known yet")
)

type Phase string

const (
	PhaseGroup    Phase = "group"
	PhaseKnockout Phase = "knockout"
	PhaseBreak    Phase = "break"
)

type Status string

const (
	StatusScheduled  Status = "scheduled"
	StatusAwaiting   Status = "awaiting-participants"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusBreak      Status = "break"
)

// KOMode selects the knockout topology for the 8-team format.
type KOMode string

const (
	ModeQuarterfinal KOMode = "quarterfinal"
	ModeSemifinal    KOMode = "semifinal"
)

// ScheduleConfig carries the settings every engine call needs.
type ScheduleConfig struct {
	MatchMinutes int    `yaml:"match_duration_minutes"`
	BreakMinutes int    `yaml:"break_duration_minutes"`
	Start        string `yaml:"start_time"` // "14:00"
	KOMode       KOMode `yaml:"ko_mode,omitempty"`
}

// Match is one entry of the ordered match list: a group fixture, a
// knockout match or a break.
type Match struct {
	ID           string `yaml:"id"`
	Phase        Phase  `yaml:"phase"`
	Round        string `yaml:"round"`
	Group        string `yaml:"group,omitempty"`
	Home         Slot   `yaml:"home,omitempty"`
	Away         Slot   `yaml:"away,omitempty"`
	Score1       *int   `yaml:"score1,omitempty"`
	Score2       *int   `yaml:"score2,omitempty"`
	Status       Status `yaml:"status"`
	StartTime    string `yaml:"start_time,omitempty"`
	EndTime      string `yaml:"end_time,omitempty"`
	PauseMinutes int    `yaml:"pause_minutes,omitempty"`
}

func (m *Match) IsBreak() bool { return m.Phase == PhaseBreak }

// Decided reports whether both scores are set.
func (m *Match) Decided() bool { return m.Score1 != nil && m.Score2 != nil }

// Ready reports whether both sides name concrete teams.
func (m *Match) Ready() bool { return m.Home.Resolved() && m.Away.Resolved() }

// Winner returns the winning team of a completed match. A draw goes to the
// away side, matching how knockout results have always been read.
func (m *Match) Winner() (string, bool) {
	if m.Status != StatusCompleted || !m.Decided() {
		return "", false
	}
	if *m.Score1 > *m.Score2 {
		return m.Home.Team, m.Home.Resolved()
	}
	return m.Away.Team, m.Away.Resolved()
}

// Involves reports whether team plays in m.
func (m *Match) Involves(team string) bool {
	return team != "" && (m.Home.Team == team || m.Away.Team == team)
}

// settle recomputes the status from scores and slots. Completed follows the
// scores; a knockout match only leaves awaiting once both slots resolve.
func (m *Match) settle() {
	switch {
	case m.IsBreak():
		m.Status = StatusBreak
	case m.Decided():
		m.Status = StatusCompleted
	case m.Status == StatusInProgress && m.Ready():
	case m.Ready():
		m.Status = StatusScheduled
	default:
		m.Status = StatusAwaiting
	}
}

// List is the ordered match list of one tournament.
type List []Match

// Clone returns a deep copy; engine operations work on the copy so the
// caller's list is never left half-updated.
func (l List) Clone() List {
	if l == nil {
		return nil
	}
	out := make(List, 0, len(l))
	if err := deepcopy.Copy(&out, l); err != nil {
		panic(fmt.Sprintf("copying match list: %v", err))
	}
	return out
}

// Index returns the position of id in the list, or -1.
func (l List) Index(id string) int {
	for i := range l {
		if l[i].ID == id {
			return i
		}
	}
	return -1
}

// Find returns a pointer into l for id.
func (l List) Find(id string) (*Match, bool) {
	i := l.Index(id)
	if i < 0 {
		return nil, false
	}
	return &l[i], true
}

// Groups returns group names in order of first appearance among group fixtures.
func (l List) Groups() []string {
	seen := make(map[string]bool)
	var groups []string
	for _, m := range l {
		if m.Phase != PhaseGroup || seen[m.Group] {
			continue
		}
		seen[m.Group] = true
		groups = append(groups, m.Group)
	}
	return groups
}

// GroupComplete reports whether group has fixtures and all of them are completed.
func (l List) GroupComplete(group string) bool {
	found := false
	for _, m := range l {
		if m.Phase != PhaseGroup || m.Group != group {
			continue
		}
		found = true
		if m.Status != StatusCompleted {
			return false
		}
	}
	return found
}

// Side selects a match side for single-score updates.
type Side int

const (
	SideHome Side = 1
	SideAway Side = 2
)

// SetScore records (or with nil values clears) a result.
func SetScore(l List, id string, score1, score2 *int) (List, error) {
	if l.Index(id) < 0 {
		return l, fmt.Errorf("setting score of %s: %w", id, ErrMatchNotFound)
	}
	out := l.Clone()
	m, _ := out.Find(id)
	if m.IsBreak() {
		return l, fmt.Errorf("match %s is a break and takes no score", id)
	}
	if m.Phase == PhaseKnockout && !m.Ready() && (score1 != nil || score2 != nil) {
		return l, fmt.Errorf("match %s: %w", id, ErrParticipantsUnknown)
	}
	m.Score1, m.Score2 = copyInt(score1), copyInt(score2)
	m.settle()
	return out, nil
}

// SetSideScore records the score of one side, leaving the other untouched.
func SetSideScore(l List, id string, side Side, score *int) (List, error) {
	m, ok := l.Find(id)
	if !ok {
		return l, fmt.Errorf("setting score of %s: %w", id, ErrMatchNotFound)
	}
	switch side {
	case SideHome:
		return SetScore(l, id, score, m.Score2)
	case SideAway:
		return SetScore(l, id, m.Score1, score)
	default:
		return l, fmt.Errorf("invalid side %d", side)
	}
}

// Kickoff marks a scheduled match with both teams known as in progress.
func Kickoff(l List, id string) (List, error) {
	m, ok := l.Find(id)
	if !ok {
		return l, fmt.Errorf("kicking off %s: %w", id, ErrMatchNotFound)
	}
	if m.Status != StatusScheduled || !m.Ready() {
		return l, fmt.Errorf("match %s cannot start while %s", id, m.Status)
	}
	out := l.Clone()
	out[out.Index(id)].Status = StatusInProgress
	return out, nil
}

// RenameTeam replaces every concrete occurrence of oldName. Symbolic
// sources are left alone.
func RenameTeam(l List, oldName, newName string) List {
	out := l.Clone()
	for i := range out {
		for _, s := range []*Slot{&out[i].Home, &out[i].Away} {
			if s.Team == oldName {
				s.Team = newName
			}
			if s.Source.Kind == RefTeam && s.Source.Team == oldName {
				s.Source.Team = newName
			}
		}
	}
	return out
}

func copyInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Score is a convenience for building score pointers.
func Score(v int) *int { return &v }
