package dag

import (
	"testing"

	"projectplan/model"
)

func leaf(id string, deps ...model.Dependency) *model.Task {
	return &model.Task{ID: id, Dependencies: deps}
}

func TestFlattenPreOrderAndLeafIndex(t *testing.T) {
	p := &model.Project{
		Tasks: []*model.Task{
			leaf("design"),
			{
				ID: "development",
				Children: []*model.Task{
					leaf("feature_x"),
					leaf("feature_y"),
				},
			},
		},
	}

	g, err := Flatten(p)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	wantOrder := []string{"design", "development.feature_x", "development.feature_y"}
	if len(g.LeafOrder) != len(wantOrder) {
		t.Fatalf("LeafOrder = %v, want %v", g.LeafOrder, wantOrder)
	}
	for i, id := range wantOrder {
		if g.LeafOrder[i] != id {
			t.Errorf("LeafOrder[%d] = %q, want %q", i, g.LeafOrder[i], id)
		}
	}

	leaves := g.ContainerLeaves["development"]
	if len(leaves) != 2 || leaves[0] != "development.feature_x" || leaves[1] != "development.feature_y" {
		t.Errorf("ContainerLeaves[development] = %v, want [development.feature_x development.feature_y]", leaves)
	}
}

func TestContainerAddressedDependencyExpandsToLeaves(t *testing.T) {
	p := &model.Project{
		Tasks: []*model.Task{
			leaf("design"),
			{
				ID: "development",
				Children: []*model.Task{
					leaf("feature_x", model.Dependency{PredecessorID: "design"}),
					leaf("feature_y"),
				},
			},
			leaf("integration", model.Dependency{PredecessorID: "development"}),
		},
	}

	g, err := Flatten(p)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	preds := g.Predecessors("integration")
	if len(preds) != 2 {
		t.Fatalf("Predecessors(integration) = %v, want 2 edges (one per leaf of development)", preds)
	}
}

func TestContainerDependencyDoesNotPropagateToChildren(t *testing.T) {
	// S5: container `development` depends on `design`; its child `feature_x`
	// does not repeat the dependency and must NOT gain an edge from design.
	p := &model.Project{
		Tasks: []*model.Task{
			leaf("design"),
			{
				ID:           "development",
				Dependencies: []model.Dependency{{PredecessorID: "design"}},
				Children: []*model.Task{
					leaf("feature_x"),
				},
			},
		},
	}

	g, err := Flatten(p)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if preds := g.Predecessors("development.feature_x"); len(preds) != 0 {
		t.Errorf("feature_x has %d predecessor edges, want 0 (container dependency must not propagate)", len(preds))
	}

	orphans := g.OrphanContainerDependencies()
	if len(orphans) != 1 {
		t.Fatalf("OrphanContainerDependencies() = %v, want exactly 1", orphans)
	}
	if orphans[0].ContainerID != "development" || orphans[0].ChildID != "development.feature_x" {
		t.Errorf("unexpected orphan: %+v", orphans[0])
	}
}

func TestContainerDependencyExplicitlyRepeatedIsNotOrphan(t *testing.T) {
	p := &model.Project{
		Tasks: []*model.Task{
			leaf("design"),
			{
				ID:           "development",
				Dependencies: []model.Dependency{{PredecessorID: "design"}},
				Children: []*model.Task{
					leaf("feature_x", model.Dependency{PredecessorID: "design"}),
				},
			},
		},
	}

	g, err := Flatten(p)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	if preds := g.Predecessors("development.feature_x"); len(preds) != 1 {
		t.Errorf("feature_x has %d predecessor edges, want 1", len(preds))
	}
	if orphans := g.OrphanContainerDependencies(); len(orphans) != 0 {
		t.Errorf("OrphanContainerDependencies() = %v, want none", orphans)
	}
}

func TestDetectCyclesFindsSimpleCycle(t *testing.T) {
	p := &model.Project{
		Tasks: []*model.Task{
			leaf("a", model.Dependency{PredecessorID: "b"}),
			leaf("b", model.Dependency{PredecessorID: "a"}),
		},
	}

	g, err := Flatten(p)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	cycles := g.DetectCycles()
	if len(cycles) != 1 {
		t.Fatalf("DetectCycles() = %v, want 1 cycle", cycles)
	}
	if len(cycles[0].Members) != 2 {
		t.Errorf("cycle members = %v, want 2", cycles[0].Members)
	}
}

func TestOrderRespectsTopologyAndPriority(t *testing.T) {
	p := &model.Project{
		Tasks: []*model.Task{
			leaf("a"),
			leaf("b"),
			leaf("c", model.Dependency{PredecessorID: "a"}, model.Dependency{PredecessorID: "b"}),
		},
	}
	p.Tasks[0].Priority = 100
	p.Tasks[1].Priority = 900

	g, err := Flatten(p)
	if err != nil {
		t.Fatalf("Flatten: %v", err)
	}

	priority := func(id string) int {
		if leaf, ok := g.Leaves[id]; ok {
			return leaf.EffectivePriority()
		}
		return model.DefaultPriority
	}

	order := g.Order(priority)
	if order[0] != "b" { // higher priority (900) goes first among ready nodes
		t.Errorf("order[0] = %q, want %q", order[0], "b")
	}
	if order[len(order)-1] != "c" {
		t.Errorf("order[last] = %q, want %q (must come after both predecessors)", order[len(order)-1], "c")
	}
}
