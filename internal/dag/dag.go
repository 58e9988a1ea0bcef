// Package dag implements the WBS-to-DAG flattener (C3): it reduces a
// Project's task tree into a leaf-only precedence graph, resolving
// container-addressed dependencies to the set of leaves they actually
// reach, and detects cycles. Organizational hierarchy (the WBS tree) is
// kept entirely separate from precedence (the graph produced here).
package dag

import (
	"fmt"
	"sort"
	"time"

	"projectplan/model"
)

// Edge is one precedence relation between two leaves.
type Edge struct {
	From string // predecessor leaf id
	To   string // successor leaf id
	Kind model.DependencyKind
	Lag  time.Duration
}

// OrphanContainerDependency records a (container, child) pair where the
// container declares an outgoing dependency that the named child does not
// repeat itself — the source of a W014 diagnostic. A container's own
// dependency is never implicitly inherited by its children; this is
// metadata only until a child repeats it explicitly.
type OrphanContainerDependency struct {
	ContainerID string
	ChildID     string
	Dependency  model.Dependency
}

// LeafDAG is the flattened, leaf-only view of a Project: a reproducible
// pre-order leaf sequence, the precedence edges between leaves, and a
// container -> descendant-leaves index.
type LeafDAG struct {
	// LeafOrder is the pre-order traversal of leaves, stable across equal
	// inputs (project.Walk order, filtered to leaves).
	LeafOrder []string

	Leaves map[string]*model.Task // qualified id -> leaf task

	// ContainerLeaves maps every container's qualified id to the qualified
	// ids of all leaf descendants, in pre-order.
	ContainerLeaves map[string][]string

	// ContainerDependencies records each container's own outgoing
	// dependencies, kept as metadata only — they never produce edges.
	ContainerDependencies map[string][]model.Dependency

	// Parent maps every qualified id (leaf or container) to its immediate
	// parent's qualified id, empty string for top-level tasks.
	Parent map[string]string

	// Children maps every container's qualified id to its immediate
	// children's qualified ids, in declaration order.
	Children map[string][]string

	Edges []Edge

	// predIndex/succIndex index Edges by successor/predecessor id so
	// Predecessors/Successors are O(1) amortized instead of O(E) per call.
	predIndex map[string][]Edge
	succIndex map[string][]Edge

	// TopoOrder is the canonical leaf processing order: topological rank,
	// then task priority descending, then qualified id ascending — see
	// Order().
	TopoOrder []string
}

func (g *LeafDAG) indexEdges() {
	g.predIndex = make(map[string][]Edge, len(g.Edges))
	g.succIndex = make(map[string][]Edge, len(g.Edges))
	for _, e := range g.Edges {
		g.predIndex[e.To] = append(g.predIndex[e.To], e)
		g.succIndex[e.From] = append(g.succIndex[e.From], e)
	}
}

// Flatten walks the project tree and produces a LeafDAG. It returns a plain
// error (never a diagnostic) if a dependency names an id that does not
// resolve anywhere in the tree — reference resolution is a validation-layer
// concern, and by the time Flatten runs it has already passed.
func Flatten(p *model.Project) (*LeafDAG, error) {
	g := &LeafDAG{
		Leaves:                make(map[string]*model.Task),
		ContainerLeaves:       make(map[string][]string),
		ContainerDependencies: make(map[string][]model.Dependency),
		Parent:                make(map[string]string),
		Children:              make(map[string][]string),
	}

	idToTask := make(map[string]*model.Task)

	p.Walk(func(ancestors []string, t *model.Task) {
		qid := model.QualifiedID(ancestors, t.ID)
		idToTask[qid] = t

		parent := ""
		if len(ancestors) > 0 {
			parent = model.QualifiedID(ancestors[:len(ancestors)-1], ancestors[len(ancestors)-1])
		}
		g.Parent[qid] = parent
		if parent != "" {
			g.Children[parent] = append(g.Children[parent], qid)
		}

		if t.IsLeaf() {
			g.LeafOrder = append(g.LeafOrder, qid)
			g.Leaves[qid] = t
		} else {
			g.ContainerDependencies[qid] = t.Dependencies
		}
	})

	// Build container -> descendant leaves index by re-walking with each
	// container's own ancestor-qualified id as the root of accumulation.
	for qid, t := range idToTask {
		if t.IsContainer() {
			g.ContainerLeaves[qid] = collectDescendantLeaves(qid, g)
		}
	}

	for _, leafID := range g.LeafOrder {
		leaf := g.Leaves[leafID]
		for _, dep := range leaf.Dependencies {
			edges, err := resolveDependencyEdges(idToTask, g, leafID, dep)
			if err != nil {
				return nil, err
			}
			g.Edges = append(g.Edges, edges...)
		}
	}

	g.indexEdges()

	return g, nil
}

func collectDescendantLeaves(containerID string, g *LeafDAG) []string {
	var out []string
	var walk func(id string)
	walk = func(id string) {
		for _, childID := range g.Children[id] {
			if _, isLeaf := g.Leaves[childID]; isLeaf {
				out = append(out, childID)
			} else {
				walk(childID)
			}
		}
	}
	walk(containerID)
	return out
}

func resolveDependencyEdges(idToTask map[string]*model.Task, g *LeafDAG, successor string, dep model.Dependency) ([]Edge, error) {
	target, ok := idToTask[dep.PredecessorID]
	if !ok {
		return nil, fmt.Errorf("unresolved dependency reference %q on task %q", dep.PredecessorID, successor)
	}

	kind := dep.EffectiveKind()

	if target.IsLeaf() {
		return []Edge{{From: dep.PredecessorID, To: successor, Kind: kind, Lag: dep.Lag}}, nil
	}

	leaves := g.ContainerLeaves[dep.PredecessorID]
	edges := make([]Edge, 0, len(leaves))
	for _, leafID := range leaves {
		edges = append(edges, Edge{From: leafID, To: successor, Kind: kind, Lag: dep.Lag})
	}
	return edges, nil
}

// OrphanContainerDependencies computes the W014 source data: for every
// container that declares its own outgoing dependency, every immediate
// child that does not repeat an equivalent dependency (same predecessor id
// and kind) is reported as an orphan. Results are sorted by
// (container id, child id) for deterministic emission.
func (g *LeafDAG) OrphanContainerDependencies() []OrphanContainerDependency {
	var out []OrphanContainerDependency

	for containerID, deps := range g.ContainerDependencies {
		if len(deps) == 0 {
			continue
		}
		for _, childID := range g.Children[containerID] {
			childDeps := g.dependenciesOf(childID)
			for _, dep := range deps {
				if !hasEquivalentDependency(childDeps, dep) {
					out = append(out, OrphanContainerDependency{
						ContainerID: containerID,
						ChildID:     childID,
						Dependency:  dep,
					})
				}
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].ContainerID != out[j].ContainerID {
			return out[i].ContainerID < out[j].ContainerID
		}
		return out[i].ChildID < out[j].ChildID
	})

	return out
}

func (g *LeafDAG) dependenciesOf(id string) []model.Dependency {
	if leaf, ok := g.Leaves[id]; ok {
		return leaf.Dependencies
	}
	return g.ContainerDependencies[id]
}

func hasEquivalentDependency(deps []model.Dependency, want model.Dependency) bool {
	for _, d := range deps {
		if d.PredecessorID == want.PredecessorID && d.EffectiveKind() == want.EffectiveKind() {
			return true
		}
	}
	return false
}
