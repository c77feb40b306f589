package layout

import (
	"math"
	"testing"
)

func testTuning() Tuning {
	return Tuning{
		SpringLength: 100,
		SpringK:      0.02,
		Repulsion:    3000,
		Damping:      0.85,
		LabelMargin:  8,
		Padding:      20,
		AlphaMin:     0.005,
		AlphaDecay:   0.02,
		AlphaNudge:   0.1,
	}
}

func TestStep_KeepsNodesInsideViewport(t *testing.T) {
	t.Parallel()

	e := New(400, 300, testTuning())
	nodes := []*Node{
		{ID: "a", X: -50, Y: -50, Radius: 10},
		{ID: "b", X: 450, Y: 350, Radius: 10},
		{ID: "c", X: 200, Y: 150, Radius: 10},
		{ID: "d", X: 210, Y: 150, Radius: 10},
	}
	links := []Link{{Source: nodes[0], Target: nodes[1]}, {Source: nodes[2], Target: nodes[3]}}
	e.Install(nodes, links)
	e.Reheat()

	for i := 0; i < 300; i++ {
		e.Step()
		for _, n := range nodes {
			lo := n.Radius + 20
			if n.X < lo || n.X > 400-lo || n.Y < lo || n.Y > 300-lo {
				t.Fatalf("step %d: node %s out of bounds at (%.1f,%.1f)", i, n.ID, n.X, n.Y)
			}
		}
	}
}

func TestStep_PinnedNodeHoldsPosition(t *testing.T) {
	t.Parallel()

	e := New(400, 300, testTuning())
	pinned := &Node{ID: "self", X: 200, Y: 150, Radius: 12}
	free := &Node{ID: "peer", X: 210, Y: 160, Radius: 10}
	e.Install([]*Node{pinned, free}, []Link{{Source: pinned, Target: free}})
	e.Pin("self", 200, 150)
	e.Reheat()

	for i := 0; i < 50; i++ {
		e.Step()
	}
	if pinned.X != 200 || pinned.Y != 150 {
		t.Fatalf("pinned moved to (%.1f,%.1f)", pinned.X, pinned.Y)
	}
	if free.X == 210 && free.Y == 160 {
		t.Fatal("free node never moved")
	}
}

func TestStep_SettlesBelowAlphaMin(t *testing.T) {
	t.Parallel()

	e := New(400, 300, testTuning())
	a := &Node{ID: "a", X: 100, Y: 100, Radius: 10}
	b := &Node{ID: "b", X: 300, Y: 200, Radius: 10}
	e.Install([]*Node{a, b}, []Link{{Source: a, Target: b}})
	e.Reheat()

	steps := 0
	for e.Step() {
		steps++
		if steps > 1000 {
			t.Fatal("simulation never settled")
		}
	}
	if !e.Settled() {
		t.Fatalf("alpha=%v", e.Alpha())
	}
	if e.Step() {
		t.Fatal("settled engine still advanced")
	}
}

func TestStep_CoincidentNodesStayFinite(t *testing.T) {
	t.Parallel()

	e := New(400, 300, testTuning())
	a := &Node{ID: "a", X: 200, Y: 150, Radius: 10}
	b := &Node{ID: "b", X: 200, Y: 150, Radius: 10}
	e.Install([]*Node{a, b}, []Link{{Source: a, Target: b}})
	e.Reheat()

	for i := 0; i < 100; i++ {
		e.Step()
	}
	for _, n := range []*Node{a, b} {
		if math.IsNaN(n.X) || math.IsNaN(n.Y) || math.IsInf(n.X, 0) || math.IsInf(n.Y, 0) {
			t.Fatalf("node %s at (%v,%v)", n.ID, n.X, n.Y)
		}
	}
}

func TestStep_SpringPullsLinkedNodesTogether(t *testing.T) {
	t.Parallel()

	tuning := testTuning()
	tuning.Repulsion = 0
	e := New(1000, 1000, tuning)
	a := &Node{ID: "a", X: 100, Y: 500, Radius: 10}
	b := &Node{ID: "b", X: 900, Y: 500, Radius: 10}
	e.Install([]*Node{a, b}, []Link{{Source: a, Target: b}})
	e.Reheat()

	before := math.Hypot(b.X-a.X, b.Y-a.Y)
	for i := 0; i < 100; i++ {
		e.Step()
	}
	after := math.Hypot(b.X-a.X, b.Y-a.Y)
	if after >= before {
		t.Fatalf("distance grew: %.1f -> %.1f", before, after)
	}
}

func TestStep_RepulsionPushesUnlinkedNodesApart(t *testing.T) {
	t.Parallel()

	e := New(1000, 1000, testTuning())
	a := &Node{ID: "a", X: 495, Y: 500, Radius: 10}
	b := &Node{ID: "b", X: 505, Y: 500, Radius: 10}
	e.Install([]*Node{a, b}, nil)
	e.Reheat()

	before := math.Hypot(b.X-a.X, b.Y-a.Y)
	for i := 0; i < 100; i++ {
		e.Step()
	}
	after := math.Hypot(b.X-a.X, b.Y-a.Y)
	if after <= before {
		t.Fatalf("distance shrank: %.1f -> %.1f", before, after)
	}
	min := a.Radius + b.Radius + 8
	if after < min {
		t.Fatalf("still overlapping: %.1f < %.1f", after, min)
	}
}

func TestNudge_NeverCoolsAHotSimulation(t *testing.T) {
	t.Parallel()

	e := New(400, 300, testTuning())
	e.Install([]*Node{{ID: "a", X: 200, Y: 150, Radius: 10}}, nil)
	e.Reheat()
	e.Nudge()
	if e.Alpha() != 1 {
		t.Fatalf("alpha=%v", e.Alpha())
	}

	for e.Step() {
	}
	e.Nudge()
	if e.Alpha() != 0.1 {
		t.Fatalf("alpha=%v", e.Alpha())
	}
}

func TestPositions_ReflectsLiveState(t *testing.T) {
	t.Parallel()

	e := New(400, 300, testTuning())
	a := &Node{ID: "a", X: 100, Y: 100, Radius: 10}
	b := &Node{ID: "b", X: 300, Y: 200, Radius: 10}
	e.Install([]*Node{a, b}, []Link{{Source: a, Target: b}})
	e.Reheat()
	for i := 0; i < 10; i++ {
		e.Step()
	}

	got := e.Positions()
	if len(got) != 2 {
		t.Fatalf("positions=%d", len(got))
	}
	if m := got["a"]; m.X != a.X || m.Y != a.Y || m.VX != a.VX || m.VY != a.VY {
		t.Fatalf("a=%+v node=%+v", m, a)
	}
}

func TestPin_UnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	e := New(400, 300, testTuning())
	e.Install([]*Node{{ID: "a", X: 10, Y: 10}}, nil)
	if e.Pin("ghost", 0, 0) {
		t.Fatal("pinned a ghost")
	}
	if e.Unpin("ghost") {
		t.Fatal("unpinned a ghost")
	}
}

func TestClamp_DegenerateViewportParksAtCenter(t *testing.T) {
	t.Parallel()

	e := New(30, 30, testTuning())
	n := &Node{ID: "a", X: 500, Y: 500, Radius: 10}
	e.Install([]*Node{n}, nil)
	e.Reheat()
	e.Step()

	// Radius+padding exceeds the viewport on both axes.
	if n.X != 15 || n.Y != 15 {
		t.Fatalf("parked at (%.1f,%.1f)", n.X, n.Y)
	}
}
