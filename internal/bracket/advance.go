package bracket

import "github.com/derekprior/turnier/internal/tournament"

// Advance re-derives every "winner of" slot from the current results.
//
// Knockout entries are walked in list order, which the topology keeps as
// eighthfinals, quarterfinals, semifinals, final, so an upstream match is
// always settled before anything that depends on it. A slot whose source
// match is not completed shows its symbolic source again. Completed matches
// are left alone, and a match that once became scheduled never goes back
// to awaiting on its own.
func Advance(matches tournament.List) tournament.List {
	out := matches.Clone()
	for i := range out {
		m := &out[i]
		if m.Phase != tournament.PhaseKnockout || m.Status == tournament.StatusCompleted {
			continue
		}
		for _, s := range []*tournament.Slot{&m.Home, &m.Away} {
			if s.Source.Kind != tournament.RefWinner {
				continue
			}
			upstream, ok := out.Find(s.Source.Match)
			if !ok {
				continue
			}
			s.Team, _ = upstream.Winner()
		}
		if m.Status == tournament.StatusAwaiting && m.Ready() {
			m.Status = tournament.StatusScheduled
		}
	}
	return out
}
