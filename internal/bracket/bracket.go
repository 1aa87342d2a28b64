// Package bracket moves teams from the group stage into the knockout
// rounds and through them as results come in.
package bracket

import (
	"github.com/derekprior/turnier/internal/standings"
	"github.com/derekprior/turnier/internal/tournament"
)

// Update runs the full progression pipeline after a result change:
// standings, then seeding, then propagation.
func Update(matches tournament.List, teams []string) (tournament.List, standings.Tables) {
	tables := standings.Compute(matches, teams)
	return Advance(Seed(matches, tables)), tables
}
