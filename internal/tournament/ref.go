package tournament

import "fmt"

// RefKind tags what a Ref points at.
type RefKind string

const (
	RefNone   RefKind = ""
	RefTeam   RefKind = "team"
	RefRank   RefKind = "rank"
	RefPooled RefKind = "pooled"
	RefWinner RefKind = "winner"
)

// Ref is a match participant expressed either as a concrete team or as a
// rule that resolves to one later.
//
//	team:   Team
//	rank:   Rank-th of Group (Group "" is the single pool)
//	pooled: Place-th best among every group's Rank-th finisher
//	winner: winner of Match
type Ref struct {
	Kind  RefKind `yaml:"kind,omitempty"`
	Team  string  `yaml:"team,omitempty"`
	Group string  `yaml:"group,omitempty"`
	Rank  int     `yaml:"rank,omitempty"`
	Place int     `yaml:"place,omitempty"`
	Match string  `yaml:"match,omitempty"`
}

func TeamRef(name string) Ref { return Ref{Kind: RefTeam, Team: name} }

func RankOf(group string, rank int) Ref { return Ref{Kind: RefRank, Group: group, Rank: rank} }

func PooledRank(rank, place int) Ref { return Ref{Kind: RefPooled, Rank: rank, Place: place} }

func WinnerOf(matchID string) Ref { return Ref{Kind: RefWinner, Match: matchID} }

// IsZero reports whether r is the empty reference carried by break entries.
func (r Ref) IsZero() bool { return r.Kind == RefNone }

// Label renders r for display. The engine never parses it back.
func (r Ref) Label() string {
	switch r.Kind {
	case RefTeam:
		return r.Team
	case RefRank:
		if r.Group == "" {
			return fmt.Sprintf("Rank %d", r.Rank)
		}
		return fmt.Sprintf("%s of Group %s", ordinal(r.Rank), r.Group)
	case RefPooled:
		if r.Place == 1 {
			return "Best " + finisher(r.Rank)
		}
		return fmt.Sprintf("%s best %s", ordinal(r.Place), finisher(r.Rank))
	case RefWinner:
		return "Winner of " + r.Match
	default:
		return ""
	}
}

func finisher(rank int) string {
	switch rank {
	case 1:
		return "group winner"
	case 2:
		return "runner-up"
	default:
		return ordinal(rank) + "-placed team"
	}
}

func ordinal(n int) string {
	suffix := "th"
	switch n % 10 {
	case 1:
		if n%100 != 11 {
			suffix = "st"
		}
	case 2:
		if n%100 != 12 {
			suffix = "nd"
		}
	case 3:
		if n%100 != 13 {
			suffix = "rd"
		}
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// Slot is one side of a match. Source is the rule the side was generated
// from and never changes; Team is the concrete team once known.
type Slot struct {
	Source Ref    `yaml:"source,omitempty"`
	Team   string `yaml:"team,omitempty"`
}

// Fixed returns a slot holding a concrete team from generation on.
func Fixed(team string) Slot { return Slot{Team: team} }

// Pending returns an unresolved slot for the given rule.
func Pending(source Ref) Slot { return Slot{Source: source} }

// Resolved reports whether the slot names a concrete team.
func (s Slot) Resolved() bool { return s.Team != "" }

// Label is the team name, or the symbolic label while unresolved.
func (s Slot) Label() string {
	if s.Team != "" {
		return s.Team
	}
	return s.Source.Label()
}
