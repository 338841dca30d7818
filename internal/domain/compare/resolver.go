// Package compare orders a candidate set of courses from pairwise
// preference judgments.
package compare

import (
	"github.com/fairwaylabs/fairway/internal/domain/model"
)

// Resolve linearizes the preference graph built from edges over the
// existing course ids plus candidateID. An edge (preferred, other) means
// "preferred ranks above other". The result is a reverse-postorder
// topological order containing every id that participates in at least one
// edge; ids with no edges do not appear.
//
// Contradictory judgments (cycles) are not detected; the traversal still
// terminates and yields one consistent linearization. Determinism comes
// from seeding the walk with the stored position order rather than map
// iteration.
func Resolve(existing []string, candidateID string, edges []model.Comparison) []string {
	if len(edges) == 0 {
		return nil
	}

	succ := make(map[string][]string, len(edges))
	inGraph := make(map[string]bool, len(edges)*2)
	for _, e := range edges {
		if e.PreferredID == "" || e.OtherID == "" || e.PreferredID == e.OtherID {
			continue
		}
		succ[e.PreferredID] = append(succ[e.PreferredID], e.OtherID)
		inGraph[e.PreferredID] = true
		inGraph[e.OtherID] = true
	}
	if len(inGraph) == 0 {
		return nil
	}

	var order []string
	visited := make(map[string]bool, len(inGraph))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		for _, next := range succ[id] {
			visit(next)
		}
		// Prepend on completion: nodes with no unvisited successors sink
		// to the back, preferred nodes surface to the front.
		order = append([]string{id}, order...)
	}

	for _, id := range existing {
		if inGraph[id] {
			visit(id)
		}
	}
	if inGraph[candidateID] {
		visit(candidateID)
	}

	return order
}

// TargetPosition returns the 1-based position candidateID should take
// within a tier of len(existing) courses, given the supplied comparison
// edges. A candidate absent from the resolved order (no judgments) is
// placed last.
func TargetPosition(existing []string, candidateID string, edges []model.Comparison) int {
	order := Resolve(existing, candidateID, edges)
	for i, id := range order {
		if id == candidateID {
			return i + 1
		}
	}
	return len(existing) + 1
}
