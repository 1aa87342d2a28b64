package bracket

import (
	"github.com/derekprior/turnier/internal/standings"
	"github.com/derekprior/turnier/internal/tournament"
)

// Seed fills knockout slots that depend on group standings.
//
// A rank slot resolves once every fixture of its group is completed; a
// pooled slot (best runner-up and the like) once every group is. Slots that
// already name a team and completed matches are never touched, so calling
// Seed after every single result is always safe. Seed works on a copy.
func Seed(matches tournament.List, tables standings.Tables) tournament.List {
	out := matches.Clone()

	complete := make(map[string]bool)
	allComplete := true
	groups := out.Groups()
	for _, g := range groups {
		complete[g] = out.GroupComplete(g)
		allComplete = allComplete && complete[g]
	}
	allComplete = allComplete && len(groups) > 0

	var pooled []int
	for i := range out {
		m := &out[i]
		if m.Phase != tournament.PhaseKnockout || m.Status == tournament.StatusCompleted {
			continue
		}

		changed, pooledSides := false, 0
		for _, s := range []*tournament.Slot{&m.Home, &m.Away} {
			if s.Resolved() {
				continue
			}
			team, ok := resolve(s.Source, tables, complete, allComplete)
			if !ok {
				continue
			}
			s.Team = team
			changed = true
			if s.Source.Kind == tournament.RefPooled {
				pooledSides++
			}
		}

		if pooledSides == 2 {
			pooled = append(pooled, i)
		}
		if changed && m.Status == tournament.StatusAwaiting && m.Ready() {
			m.Status = tournament.StatusScheduled
		}
	}

	avoidGroupRematches(out, pooled, tables)
	return out
}

func resolve(ref tournament.Ref, tables standings.Tables, complete map[string]bool, allComplete bool) (string, bool) {
	switch ref.Kind {
	case tournament.RefRank:
		if !complete[ref.Group] {
			return "", false
		}
		rows, ok := tables.Group(ref.Group)
		if !ok || ref.Rank < 1 || ref.Rank > len(rows) {
			return "", false
		}
		return rows[ref.Rank-1].Team, true

	case tournament.RefPooled:
		if !allComplete {
			return "", false
		}
		var candidates []standings.Standing
		for _, t := range tables {
			if ref.Rank >= 1 && ref.Rank <= len(t.Rows) {
				candidates = append(candidates, t.Rows[ref.Rank-1])
			}
		}
		standings.Sort(candidates)
		if ref.Place < 1 || ref.Place > len(candidates) {
			return "", false
		}
		return candidates[ref.Place-1].Team, true
	}
	return "", false
}

// avoidGroupRematches swaps away sides between freshly seeded cross-group
// matches so that no knockout match pairs two teams from the same group,
// when a swap can achieve that without creating another such pairing.
func avoidGroupRematches(matches tournament.List, idx []int, tables standings.Tables) {
	group := func(team string) string {
		g, _ := tables.GroupOf(team)
		return g
	}
	clash := func(m *tournament.Match) bool {
		return group(m.Home.Team) == group(m.Away.Team)
	}

	for _, i := range idx {
		a := &matches[i]
		if !clash(a) {
			continue
		}
		for _, j := range idx {
			b := &matches[j]
			if i == j {
				continue
			}
			if group(a.Home.Team) != group(b.Away.Team) && group(b.Home.Team) != group(a.Away.Team) {
				a.Away.Team, b.Away.Team = b.Away.Team, a.Away.Team
				break
			}
		}
	}
}
