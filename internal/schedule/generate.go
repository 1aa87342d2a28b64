package schedule

import (
	"fmt"

	"github.com/derekprior/turnier/internal/bracket"
	"github.com/derekprior/turnier/internal/topology"
	"github.com/derekprior/turnier/internal/tournament"
)

// Generate builds the full match list for teams: group fixtures first, then
// the knockout skeleton with its breaks. Times are not assigned.
//
// An unsupported team count yields an empty list together with
// tournament.ErrUnsupportedParticipantCount.
func Generate(teams []string, cfg tournament.ScheduleConfig) (tournament.List, error) {
	topo, err := topology.Lookup(len(teams), cfg.KOMode)
	if err != nil {
		return tournament.List{}, err
	}

	var matches tournament.List
	for i, f := range topo.Fixtures() {
		matches = append(matches, tournament.Match{
			ID:     fmt.Sprintf("v%d", i+1),
			Phase:  tournament.PhaseGroup,
			Round:  groupRound(f.Group),
			Group:  f.Group,
			Home:   tournament.Fixed(teams[f.Home]),
			Away:   tournament.Fixed(teams[f.Away]),
			Status: tournament.StatusScheduled,
		})
	}

	for _, e := range topo.Knockout {
		if e.IsBreak() {
			matches = append(matches, tournament.Match{
				ID:           e.ID,
				Phase:        tournament.PhaseBreak,
				Round:        e.Round,
				Status:       tournament.StatusBreak,
				PauseMinutes: e.Break,
			})
			continue
		}
		matches = append(matches, tournament.Match{
			ID:     e.ID,
			Phase:  tournament.PhaseKnockout,
			Round:  e.Round,
			Home:   tournament.Pending(e.Home),
			Away:   tournament.Pending(e.Away),
			Status: tournament.StatusAwaiting,
		})
	}

	return matches, nil
}

func groupRound(group string) string {
	if group == "" {
		return "Group Stage"
	}
	return "Group " + group
}

// Regenerate rebuilds the list after a settings change. Results of matches
// whose id survives with the same participants are carried over, then the
// bracket is brought up to date so seeded and propagated teams reappear.
//
// Group results go first. A knockout result is only kept when the rebuilt
// bracket, fed with the results kept so far, puts the same two teams into
// the match.
func Regenerate(prev tournament.List, teams []string, cfg tournament.ScheduleConfig) (tournament.List, error) {
	next, err := Generate(teams, cfg)
	if err != nil {
		return next, err
	}

	for _, id := range matchIDs(next, tournament.PhaseGroup) {
		if next, err = carryOver(next, prev, id); err != nil {
			return next, err
		}
	}
	for _, id := range matchIDs(next, tournament.PhaseKnockout) {
		next, _ = bracket.Update(next, teams)
		if next, err = carryOver(next, prev, id); err != nil {
			return next, err
		}
	}

	next, _ = bracket.Update(next, teams)
	return next, nil
}

func matchIDs(l tournament.List, phase tournament.Phase) []string {
	var ids []string
	for _, m := range l {
		if m.Phase == phase {
			ids = append(ids, m.ID)
		}
	}
	return ids
}

// carryOver copies the result of id from prev into next when both describe
// the same match.
func carryOver(next, prev tournament.List, id string) (tournament.List, error) {
	m, _ := next.Find(id)
	old, ok := prev.Find(id)
	if !ok || !old.Decided() || !sameParticipants(m, old) {
		return next, nil
	}
	out, err := tournament.SetScore(next, id, old.Score1, old.Score2)
	if err != nil {
		return next, fmt.Errorf("carrying over %s: %w", id, err)
	}
	return out, nil
}

// sameParticipants reports whether a match has the same two teams as
// before. Knockout entries must also be fed from the same sources.
func sameParticipants(a, b *tournament.Match) bool {
	if a.Phase != b.Phase || !a.Ready() {
		return false
	}
	if a.Home.Team != b.Home.Team || a.Away.Team != b.Away.Team {
		return false
	}
	return a.Phase == tournament.PhaseGroup ||
		a.Home.Source == b.Home.Source && a.Away.Source == b.Away.Source
}
